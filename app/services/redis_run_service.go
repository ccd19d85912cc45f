package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/donor-resolver/app/models"
)

// RedisRunRegistry publishes live run status and remembers input
// fingerprints. Entries expire; the durable record of a finished run lives
// in the result store's run collection.
type RedisRunRegistry struct {
	client *redis.Client
	logger *zap.Logger
	prefix string
	ttl    time.Duration
}

// NewRedisRunRegistry connects and pings the Redis instance.
func NewRedisRunRegistry(redisURL string, logger *zap.Logger) (*RedisRunRegistry, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	return &RedisRunRegistry{
		client: client,
		logger: logger,
		prefix: "donor_match:",
		ttl:    72 * time.Hour,
	}, nil
}

func (rrr *RedisRunRegistry) runKey(runID string) string {
	return rrr.prefix + "run:" + runID
}

func (rrr *RedisRunRegistry) fpKey(fingerprint string) string {
	return rrr.prefix + "fp:" + fingerprint
}

// SetStatus publishes the run state.
func (rrr *RedisRunRegistry) SetStatus(ctx context.Context, run *models.MatchRun) error {
	payload, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshal run status: %w", err)
	}
	if err := rrr.client.Set(ctx, rrr.runKey(run.RunID), payload, rrr.ttl).Err(); err != nil {
		return fmt.Errorf("set run status: %w", err)
	}
	return nil
}

// GetStatus fetches the current state of a run.
func (rrr *RedisRunRegistry) GetStatus(ctx context.Context, runID string) (*models.MatchRun, bool, error) {
	val, err := rrr.client.Get(ctx, rrr.runKey(runID)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get run status: %w", err)
	}
	var run models.MatchRun
	if err := json.Unmarshal([]byte(val), &run); err != nil {
		return nil, false, fmt.Errorf("unmarshal run status: %w", err)
	}
	return &run, true, nil
}

// RecordFingerprint remembers which run last processed an input snapshot
// pair.
func (rrr *RedisRunRegistry) RecordFingerprint(ctx context.Context, fingerprint, runID string) error {
	if err := rrr.client.Set(ctx, rrr.fpKey(fingerprint), runID, rrr.ttl).Err(); err != nil {
		return fmt.Errorf("record fingerprint: %w", err)
	}
	return nil
}

// LookupFingerprint returns the run that last processed a fingerprint. A
// hit tells the operator the incoming snapshots are byte-identical to a
// prior run, whose output fingerprint the new run must reproduce.
func (rrr *RedisRunRegistry) LookupFingerprint(ctx context.Context, fingerprint string) (string, bool, error) {
	runID, err := rrr.client.Get(ctx, rrr.fpKey(fingerprint)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup fingerprint: %w", err)
	}
	return runID, true, nil
}

// Close closes the Redis connection.
func (rrr *RedisRunRegistry) Close() error {
	return rrr.client.Close()
}
