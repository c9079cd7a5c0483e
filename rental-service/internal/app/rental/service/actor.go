package service

import "context"

// SystemActor - автор записей журнала, когда пользователь неизвестен
const SystemActor = "system"

type actorKey struct{}

// WithActor кладёт имя текущего пользователя в контекст запроса
func WithActor(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, actorKey{}, username)
}

func ActorFrom(ctx context.Context) string {
	if username, ok := ctx.Value(actorKey{}).(string); ok && username != "" {
		return username
	}
	return SystemActor
}
