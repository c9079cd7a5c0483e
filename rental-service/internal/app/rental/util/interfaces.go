package util

import (
	"context"
	"time"

	"rentaldesk/rental-service/internal/app/rental/entity"
)

// ReportCache - кеш сводного отчёта (Redis)
type ReportCache interface {
	SetSummary(ctx context.Context, summary *entity.ReportSummary, ttl time.Duration) error
	GetSummary(ctx context.Context) (*entity.ReportSummary, error)
	DeleteSummary(ctx context.Context) error
}

// MessagePublisher интерфейс для отправки доменных событий (Kafka)
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}
