package repository

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/dedirosandiaj/problem-log-new/internal/domain"
)

// ActivityLogKey is the Redis list holding activity entries, newest first.
const ActivityLogKey = "problem_log_activity"

// ActivityRepository appends to and reads the capped activity log.
type ActivityRepository interface {
	Append(ctx context.Context, entry domain.ActivityLog) error
	List(ctx context.Context) ([]domain.ActivityLog, error)
}

type activityRepository struct {
	client   *redis.Client
	capacity int64
}

// NewActivityRepository returns a Redis-backed log retaining domain.ActivityLogCapacity entries.
func NewActivityRepository(client *redis.Client) ActivityRepository {
	return &activityRepository{client: client, capacity: domain.ActivityLogCapacity}
}

func (r *activityRepository) Append(ctx context.Context, entry domain.ActivityLog) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, ActivityLogKey, raw)
	pipe.LTrim(ctx, ActivityLogKey, 0, r.capacity-1)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *activityRepository) List(ctx context.Context) ([]domain.ActivityLog, error) {
	raw, err := r.client.LRange(ctx, ActivityLogKey, 0, r.capacity-1).Result()
	if err != nil {
		return nil, err
	}
	entries := make([]domain.ActivityLog, 0, len(raw))
	for _, item := range raw {
		var entry domain.ActivityLog
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
