package service

import (
	"context"
	"fmt"
	"time"

	"rentaldesk/pkg/logger"
	"rentaldesk/rental-service/internal/app/rental/entity"
	"rentaldesk/rental-service/internal/app/rental/repository"
)

const defaultActivityLimit = 10

// ActivityService ведёт журнал действий
type ActivityService struct {
	activityRepo repository.ActivityRepository
	now          func() time.Time
}

func NewActivityService(activityRepo repository.ActivityRepository) *ActivityService {
	return &ActivityService{
		activityRepo: activityRepo,
		now:          time.Now,
	}
}

// CreateActivity сохраняет запись; пустой user заменяется текущим пользователем
func (s *ActivityService) CreateActivity(ctx context.Context, req *entity.CreateActivityRequest) (*entity.Activity, error) {
	activity := &entity.Activity{
		Action: req.Action,
		User:   req.User,
	}
	if activity.User == "" {
		activity.User = ActorFrom(ctx)
	}
	if req.Timestamp != nil {
		activity.Timestamp = req.Timestamp.UTC()
	} else {
		activity.Timestamp = s.now().UTC()
	}

	if err := s.activityRepo.Create(ctx, activity); err != nil {
		domainErr := fromStore(err, "creating activity")
		logger.Error().Err(err).Str("action", req.Action).Msg("Failed to create activity")
		return nil, domainErr
	}

	return activity, nil
}

// GetActivities возвращает последние записи в виде {id, action, user, time}.
// limit <= 0 заменяется на 10.
func (s *ActivityService) GetActivities(ctx context.Context, limit int) ([]entity.ActivityView, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}

	activities, err := s.activityRepo.ListRecent(ctx, limit)
	if err != nil {
		logger.Error().Err(err).Int("limit", limit).Msg("Failed to fetch activities")
		return nil, fromStore(err, "fetching activities")
	}

	now := s.now()
	views := make([]entity.ActivityView, 0, len(activities))
	for _, a := range activities {
		views = append(views, entity.ActivityView{
			ID:     a.ID.Hex(),
			Action: a.Action,
			User:   a.User,
			Time:   TimeAgo(a.Timestamp, now),
		})
	}
	return views, nil
}

// Record пишет действие от имени текущего пользователя. Сбой только логируется.
func (s *ActivityService) Record(ctx context.Context, action string) {
	activity := &entity.Activity{
		Action:    action,
		User:      ActorFrom(ctx),
		Timestamp: s.now().UTC(),
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		logger.Warn().Err(err).Str("action", action).Msg("Failed to record activity")
	}
}

// TimeAgo - относительная метка: дни, иначе часы, иначе минуты.
// Единственное число только для 1; будущее время считается как "0 minutes ago".
func TimeAgo(ts, now time.Time) string {
	age := now.Sub(ts)
	if age < 0 {
		age = 0
	}

	switch {
	case age >= 24*time.Hour:
		return plural(int(age/(24*time.Hour)), "day")
	case age >= time.Hour:
		return plural(int(age/time.Hour), "hour")
	default:
		return plural(int(age/time.Minute), "minute")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
