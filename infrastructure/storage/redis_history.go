package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"workflow_automation/domain/entities"
	"workflow_automation/domain/interfaces"

	"github.com/go-redis/redis/v8"
)

const reportsKey = "workflow_automation:reports"

// RedisOptions configures the Redis-backed history
type RedisOptions struct {
	Addr       string
	Password   string
	DB         int
	MaxReports int
}

// RedisHistory keeps run reports in a capped Redis list, newest at the head
type RedisHistory struct {
	client     *redis.Client
	maxReports int
}

// NewRedisHistory - connects to Redis and returns a run history backed by it
func NewRedisHistory(opts RedisOptions) (*RedisHistory, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisHistory{client: client, maxReports: opts.MaxReports}, nil
}

// SaveReport - pushes a report and trims the list to the configured size
func (s *RedisHistory) SaveReport(ctx context.Context, report entities.RunReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report %s: %w", report.ID, err)
	}

	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, reportsKey, data)
	if s.maxReports > 0 {
		pipe.LTrim(ctx, reportsKey, 0, int64(s.maxReports-1))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save report %s: %w", report.ID, err)
	}
	return nil
}

// ListReports - returns up to limit reports, newest first
func (s *RedisHistory) ListReports(ctx context.Context, limit int) ([]entities.RunReport, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}

	items, err := s.client.LRange(ctx, reportsKey, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	reports := make([]entities.RunReport, 0, len(items))
	for _, item := range items {
		var report entities.RunReport
		if err := json.Unmarshal([]byte(item), &report); err != nil {
			return nil, fmt.Errorf("failed to unmarshal report: %w", err)
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// Clear removes every stored report
func (s *RedisHistory) Clear(ctx context.Context) error {
	return s.client.Del(ctx, reportsKey).Err()
}

// Close closes the Redis client
func (s *RedisHistory) Close() error {
	return s.client.Close()
}

var _ interfaces.RunHistory = (*RedisHistory)(nil)
