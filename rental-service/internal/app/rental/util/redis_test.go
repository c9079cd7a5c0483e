package util

import (
	"context"
	"testing"
	"time"

	"rentaldesk/rental-service/internal/app/rental/entity"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// RedisClientTestSuite проверяет кеш отчёта на miniredis
type RedisClientTestSuite struct {
	suite.Suite
	miniRedis *miniredis.Miniredis
	cache     *RedisClient
}

func TestRedisClientSuite(t *testing.T) {
	suite.Run(t, new(RedisClientTestSuite))
}

func (s *RedisClientTestSuite) SetupSuite() {
	var err error
	s.miniRedis, err = miniredis.Run()
	require.NoError(s.T(), err)

	s.cache, err = NewRedisClient(s.miniRedis.Addr(), "", 0)
	require.NoError(s.T(), err)
}

func (s *RedisClientTestSuite) SetupTest() {
	s.miniRedis.FlushAll()
}

func (s *RedisClientTestSuite) TearDownSuite() {
	s.cache.Close()
	s.miniRedis.Close()
}

func sampleSummary() *entity.ReportSummary {
	return &entity.ReportSummary{
		TotalProducts:      3,
		TotalBookings:      5,
		TotalRevenue:       420.5,
		BookingsByStatus:   map[string]int64{"pending": 2, "completed": 3},
		ProductsByCategory: map[string]int64{"photo": 3},
		GeneratedAt:        time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (s *RedisClientTestSuite) TestSetAndGetSummary() {
	ctx := context.Background()

	s.NoError(s.cache.SetSummary(ctx, sampleSummary(), time.Minute))

	result, err := s.cache.GetSummary(ctx)
	s.NoError(err)
	s.Require().NotNil(result)
	s.Equal(int64(5), result.TotalBookings)
	s.Equal(420.5, result.TotalRevenue)
	s.Equal(int64(3), result.BookingsByStatus["completed"])
	s.True(result.GeneratedAt.Equal(sampleSummary().GeneratedAt))
}

func (s *RedisClientTestSuite) TestGetSummary_Miss() {
	result, err := s.cache.GetSummary(context.Background())

	s.NoError(err)
	s.Nil(result)
}

func (s *RedisClientTestSuite) TestSummaryExpires() {
	ctx := context.Background()
	s.NoError(s.cache.SetSummary(ctx, sampleSummary(), time.Minute))

	s.miniRedis.FastForward(2 * time.Minute)

	result, err := s.cache.GetSummary(ctx)
	s.NoError(err)
	s.Nil(result)
}

func (s *RedisClientTestSuite) TestDeleteSummary() {
	ctx := context.Background()
	s.NoError(s.cache.SetSummary(ctx, sampleSummary(), time.Minute))

	s.NoError(s.cache.DeleteSummary(ctx))

	s.False(s.miniRedis.Exists(summaryCacheKey))
}

func (s *RedisClientTestSuite) TestGetSummary_CorruptedValue() {
	s.NoError(s.miniRedis.Set(summaryCacheKey, "{not json"))

	result, err := s.cache.GetSummary(context.Background())

	s.Error(err)
	s.Nil(result)
}

func (s *RedisClientTestSuite) TestPing() {
	s.NoError(s.cache.Ping(context.Background()))
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = NewRedisClient(addr, "", 0)
	require.Error(t, err)
}
