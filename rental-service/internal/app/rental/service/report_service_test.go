package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"rentaldesk/rental-service/internal/app/rental/entity"
	"rentaldesk/rental-service/internal/app/rental/repository"
	"rentaldesk/rental-service/internal/app/rental/repository/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type reportServiceMocks struct {
	products *mocks.MockProductRepository
	bookings *mocks.MockBookingRepository
	cache    *mocks.MockReportCache
}

func newReportServiceWithMocks() (*ReportService, *reportServiceMocks) {
	m := &reportServiceMocks{
		products: new(mocks.MockProductRepository),
		bookings: new(mocks.MockBookingRepository),
		cache:    new(mocks.MockReportCache),
	}
	svc := NewReportService(m.products, m.bookings, m.cache, 5*time.Minute)
	svc.now = func() time.Time { return fixedNow }
	return svc, m
}

func (m *reportServiceMocks) expectAggregates(ctx context.Context) {
	m.products.On("Count", ctx).Return(int64(4), nil)
	m.products.On("CountByCategory", ctx).Return(map[string]int64{"photo": 3, "camping": 1}, nil)
	m.bookings.On("Count", ctx).Return(int64(6), nil)
	m.bookings.On("CountByStatus", ctx).Return(map[string]int64{"pending": 2, "completed": 3, "cancelled": 1}, nil)
	m.bookings.On("TotalRevenue", ctx).Return(410.0, nil)
}

func TestGetSummary_CacheHit(t *testing.T) {
	svc, m := newReportServiceWithMocks()
	ctx := context.Background()
	cached := &entity.ReportSummary{TotalProducts: 1}
	m.cache.On("GetSummary", ctx).Return(cached, nil)

	summary, err := svc.GetSummary(ctx)

	assert.NoError(t, err)
	assert.Same(t, cached, summary)
	m.products.AssertNotCalled(t, "Count", mock.Anything)
}

func TestGetSummary_CacheMissComputesAndStores(t *testing.T) {
	svc, m := newReportServiceWithMocks()
	ctx := context.Background()
	m.cache.On("GetSummary", ctx).Return(nil, nil)
	m.expectAggregates(ctx)
	m.cache.On("SetSummary", ctx, mock.AnythingOfType("*entity.ReportSummary"), 5*time.Minute).Return(nil)

	summary, err := svc.GetSummary(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(4), summary.TotalProducts)
	assert.Equal(t, int64(6), summary.TotalBookings)
	assert.Equal(t, 410.0, summary.TotalRevenue)
	assert.Equal(t, int64(3), summary.ProductsByCategory["photo"])
	assert.Equal(t, fixedNow, summary.GeneratedAt)
	m.cache.AssertExpectations(t)
}

func TestGetSummary_CacheErrorDegrades(t *testing.T) {
	svc, m := newReportServiceWithMocks()
	ctx := context.Background()
	m.cache.On("GetSummary", ctx).Return(nil, errors.New("redis down"))
	m.expectAggregates(ctx)
	m.cache.On("SetSummary", ctx, mock.Anything, mock.Anything).Return(errors.New("redis down"))

	summary, err := svc.GetSummary(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(4), summary.TotalProducts)
}

func TestGetSummary_WithoutCache(t *testing.T) {
	products := new(mocks.MockProductRepository)
	bookings := new(mocks.MockBookingRepository)
	svc := NewReportService(products, bookings, nil, time.Minute)
	ctx := context.Background()
	m := &reportServiceMocks{products: products, bookings: bookings}
	m.expectAggregates(ctx)

	summary, err := svc.GetSummary(ctx)

	require.NoError(t, err)
	assert.Equal(t, int64(6), summary.TotalBookings)
	assert.NotPanics(t, func() { svc.InvalidateSummary(ctx) })
}

func TestRefreshSummary_StoreFailure(t *testing.T) {
	svc, m := newReportServiceWithMocks()
	ctx := context.Background()
	m.products.On("Count", ctx).Return(int64(0), &repository.StoreError{Kind: repository.FaultConnection})

	_, err := svc.RefreshSummary(ctx)

	assert.ErrorIs(t, err, ErrPersistence)
	m.cache.AssertNotCalled(t, "SetSummary", mock.Anything, mock.Anything, mock.Anything)
}

func TestInvalidateSummary(t *testing.T) {
	svc, m := newReportServiceWithMocks()
	ctx := context.Background()
	m.cache.On("DeleteSummary", ctx).Return(errors.New("redis down"))

	assert.NotPanics(t, func() { svc.InvalidateSummary(ctx) })
	m.cache.AssertCalled(t, "DeleteSummary", ctx)
}

func TestGetMonthlyRevenue_FillsAllMonths(t *testing.T) {
	svc, m := newReportServiceWithMocks()
	ctx := context.Background()
	m.bookings.On("MonthlyRevenue", ctx, 2024).Return([]entity.MonthlyRevenue{
		{Month: 2, Bookings: 3, Revenue: 150},
		{Month: 11, Bookings: 1, Revenue: 40},
	}, nil)

	months, err := svc.GetMonthlyRevenue(ctx, 2024)

	require.NoError(t, err)
	require.Len(t, months, 12)
	assert.Equal(t, entity.MonthlyRevenue{Month: 1}, months[0])
	assert.Equal(t, entity.MonthlyRevenue{Month: 2, Bookings: 3, Revenue: 150}, months[1])
	assert.Equal(t, 40.0, months[10].Revenue)
	assert.Equal(t, 12, months[11].Month)
}

func TestSummaryPDF(t *testing.T) {
	svc, m := newReportServiceWithMocks()
	ctx := context.Background()
	m.cache.On("GetSummary", ctx).Return(&entity.ReportSummary{
		TotalProducts:    2,
		BookingsByStatus: map[string]int64{"pending": 1},
		GeneratedAt:      fixedNow,
	}, nil)
	m.bookings.On("MonthlyRevenue", ctx, 2024).Return([]entity.MonthlyRevenue{}, nil)

	data, err := svc.SummaryPDF(ctx, 2024)

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}
