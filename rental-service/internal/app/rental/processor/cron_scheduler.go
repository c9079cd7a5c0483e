package processor

import (
	"context"

	"rentaldesk/pkg/logger"
	"rentaldesk/rental-service/internal/app/rental/entity"

	"github.com/robfig/cron/v3"
)

// SummaryRefresher пересчитывает сводный отчёт и кладёт его в кеш
type SummaryRefresher interface {
	RefreshSummary(ctx context.Context) (*entity.ReportSummary, error)
}

// CronScheduler периодически прогревает кеш сводного отчёта
type CronScheduler struct {
	cron    *cron.Cron
	reports SummaryRefresher
}

func NewCronScheduler(reports SummaryRefresher) *CronScheduler {
	cronLog := logger.Component("cron")
	c := cron.New(cron.WithLogger(cron.PrintfLogger(&cronLog)))

	return &CronScheduler{
		cron:    c,
		reports: reports,
	}
}

// Start регистрирует задачу, запускает планировщик и сразу выполняет первый пересчёт
func (s *CronScheduler) Start(ctx context.Context, schedule string) error {
	logger.Info().Str("schedule", schedule).Msg("Starting cron scheduler")

	_, err := s.cron.AddFunc(schedule, func() {
		s.refresh(ctx, "scheduled")
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	logger.Info().Msg("Cron scheduler started")

	s.refresh(ctx, "initial")
	return nil
}

func (s *CronScheduler) Stop() {
	logger.Info().Msg("Stopping cron scheduler...")
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info().Msg("Cron scheduler stopped")
}

func (s *CronScheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

func (s *CronScheduler) refresh(ctx context.Context, trigger string) {
	summary, err := s.reports.RefreshSummary(ctx)
	if err != nil {
		logger.Warn().Err(err).Str("trigger", trigger).Msg("Report summary refresh failed")
		return
	}
	logger.Info().
		Str("trigger", trigger).
		Int64("products", summary.TotalProducts).
		Int64("bookings", summary.TotalBookings).
		Msg("Report summary refreshed")
}
