package service

import (
	"context"
	"time"

	"rentaldesk/pkg/logger"
	"rentaldesk/pkg/metrics"
	"rentaldesk/rental-service/internal/app/rental/entity"
	"rentaldesk/rental-service/internal/app/rental/repository"
	"rentaldesk/rental-service/internal/app/rental/util"
)

// ReportService строит сводку и выручку по месяцам.
// Сводка кешируется в Redis; без кеша считается напрямую.
type ReportService struct {
	productRepo repository.ProductRepository
	bookingRepo repository.BookingRepository
	cache       util.ReportCache
	ttl         time.Duration
	now         func() time.Time
}

func NewReportService(
	productRepo repository.ProductRepository,
	bookingRepo repository.BookingRepository,
	cache util.ReportCache,
	ttl time.Duration,
) *ReportService {
	return &ReportService{
		productRepo: productRepo,
		bookingRepo: bookingRepo,
		cache:       cache,
		ttl:         ttl,
		now:         time.Now,
	}
}

// GetSummary отдаёт сводку из кеша или пересчитывает её
func (s *ReportService) GetSummary(ctx context.Context) (*entity.ReportSummary, error) {
	if s.cache != nil {
		cached, err := s.cache.GetSummary(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("Report cache read failed, computing summary")
		} else if cached != nil {
			return cached, nil
		}
	}

	return s.RefreshSummary(ctx)
}

// RefreshSummary пересчитывает сводку и перезаписывает кеш
func (s *ReportService) RefreshSummary(ctx context.Context) (*entity.ReportSummary, error) {
	summary, err := s.computeSummary(ctx)
	if err != nil {
		metrics.ReportRefreshes.WithLabelValues("failed").Inc()
		logger.Error().Err(err).Msg("Failed to compute report summary")
		return nil, fromStore(err, "building report")
	}
	metrics.ReportRefreshes.WithLabelValues("success").Inc()

	if s.cache != nil {
		if err := s.cache.SetSummary(ctx, summary, s.ttl); err != nil {
			logger.Warn().Err(err).Msg("Failed to cache report summary")
		}
	}
	return summary, nil
}

// InvalidateSummary удаляет сводку из кеша; следующий запрос пересчитает её
func (s *ReportService) InvalidateSummary(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteSummary(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to invalidate report summary")
	}
}

// GetMonthlyRevenue возвращает 12 месяцев года, включая пустые
func (s *ReportService) GetMonthlyRevenue(ctx context.Context, year int) ([]entity.MonthlyRevenue, error) {
	rows, err := s.bookingRepo.MonthlyRevenue(ctx, year)
	if err != nil {
		logger.Error().Err(err).Int("year", year).Msg("Failed to compute monthly revenue")
		return nil, fromStore(err, "building revenue report")
	}

	months := make([]entity.MonthlyRevenue, 12)
	for i := range months {
		months[i].Month = i + 1
	}
	for _, row := range rows {
		if row.Month >= 1 && row.Month <= 12 {
			months[row.Month-1] = row
		}
	}
	return months, nil
}

// SummaryPDF рендерит сводку и выручку за год в PDF
func (s *ReportService) SummaryPDF(ctx context.Context, year int) ([]byte, error) {
	summary, err := s.GetSummary(ctx)
	if err != nil {
		return nil, err
	}
	revenue, err := s.GetMonthlyRevenue(ctx, year)
	if err != nil {
		return nil, err
	}

	data, err := util.RenderSummaryPDF(summary, revenue, year)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to render report pdf")
		return nil, newError(ErrPersistence, "Error rendering report", err)
	}
	return data, nil
}

func (s *ReportService) computeSummary(ctx context.Context) (*entity.ReportSummary, error) {
	totalProducts, err := s.productRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	byCategory, err := s.productRepo.CountByCategory(ctx)
	if err != nil {
		return nil, err
	}
	totalBookings, err := s.bookingRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.bookingRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	revenue, err := s.bookingRepo.TotalRevenue(ctx)
	if err != nil {
		return nil, err
	}

	return &entity.ReportSummary{
		TotalProducts:      totalProducts,
		TotalBookings:      totalBookings,
		TotalRevenue:       revenue,
		BookingsByStatus:   byStatus,
		ProductsByCategory: byCategory,
		GeneratedAt:        s.now().UTC(),
	}, nil
}
