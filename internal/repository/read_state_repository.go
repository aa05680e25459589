package repository

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const readStateKeyPrefix = "complaint_comment_views:"

// ReadStateRepository remembers, per viewer, how many comments of each complaint
// were present the last time the thread was opened.
type ReadStateRepository interface {
	LastSeen(ctx context.Context, userID string) (map[string]int, error)
	MarkSeen(ctx context.Context, userID, complaintID string, count int) error
}

type readStateRepository struct {
	client *redis.Client
}

// NewReadStateRepository returns a Redis-backed tracker.
func NewReadStateRepository(client *redis.Client) ReadStateRepository {
	return &readStateRepository{client: client}
}

func readStateKey(userID string) string {
	return readStateKeyPrefix + userID
}

// LastSeen returns complaint id to seen comment count. Complaints the viewer never
// opened are absent from the map.
func (r *readStateRepository) LastSeen(ctx context.Context, userID string) (map[string]int, error) {
	raw, err := r.client.HGetAll(ctx, readStateKey(userID)).Result()
	if err != nil {
		return nil, err
	}
	seen := make(map[string]int, len(raw))
	for complaintID, value := range raw {
		n, err := strconv.Atoi(value)
		if err != nil {
			continue
		}
		seen[complaintID] = n
	}
	return seen, nil
}

func (r *readStateRepository) MarkSeen(ctx context.Context, userID, complaintID string, count int) error {
	return r.client.HSet(ctx, readStateKey(userID), complaintID, count).Err()
}
