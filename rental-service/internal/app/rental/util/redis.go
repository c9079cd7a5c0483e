package util

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"rentaldesk/pkg/metrics"
	"rentaldesk/rental-service/internal/app/rental/entity"

	"github.com/redis/go-redis/v9"
)

const (
	metricsService  = "rental-service"
	summaryCacheKey = "reports:summary"
	summaryPrefix   = "reports"
)

type RedisClient struct {
	client *redis.Client
}

func NewRedisClient(addr, password string, db int) (*RedisClient, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisClient{client: client}, nil
}

func (r *RedisClient) SetSummary(ctx context.Context, summary *entity.ReportSummary, ttl time.Duration) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal report summary: %w", err)
	}

	timer := metrics.NewRedisTimer(metricsService, metrics.RedisOpSet)
	defer timer.ObserveDuration()

	if err := r.client.Set(ctx, summaryCacheKey, data, ttl).Err(); err != nil {
		metrics.RecordRedisError(metricsService, metrics.RedisOpSet)
		return fmt.Errorf("failed to set report summary in cache: %w", err)
	}

	return nil
}

// GetSummary возвращает (nil, nil) при промахе
func (r *RedisClient) GetSummary(ctx context.Context) (*entity.ReportSummary, error) {
	timer := metrics.NewRedisTimer(metricsService, metrics.RedisOpGet)
	defer timer.ObserveDuration()

	data, err := r.client.Get(ctx, summaryCacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.RecordCacheMiss(metricsService, summaryPrefix)
			return nil, nil
		}
		metrics.RecordRedisError(metricsService, metrics.RedisOpGet)
		return nil, fmt.Errorf("failed to get report summary from cache: %w", err)
	}

	var summary entity.ReportSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report summary: %w", err)
	}

	metrics.RecordCacheHit(metricsService, summaryPrefix)
	return &summary, nil
}

func (r *RedisClient) DeleteSummary(ctx context.Context) error {
	timer := metrics.NewRedisTimer(metricsService, metrics.RedisOpDel)
	defer timer.ObserveDuration()

	if err := r.client.Del(ctx, summaryCacheKey).Err(); err != nil {
		metrics.RecordRedisError(metricsService, metrics.RedisOpDel)
		return fmt.Errorf("failed to delete report summary from cache: %w", err)
	}
	return nil
}

func (r *RedisClient) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}
