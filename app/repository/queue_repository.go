package repository

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/alfredflix/alfredflix/internal/pkg/cache"
)

// Key layout of the provisioning queue in Redis. Kept in sync with
// internal/pkg/jobqueue, which owns the writes.
const (
	jobKeyPrefix     = "job:"
	jobQueueKey      = "job_queue"
	jobProcessingKey = "job_processing"
)

// queueRepository inspects provisioning job state for the admin back office.
// It talks to Redis directly; the queue does not live in the database.
type queueRepository struct{}

// NewQueueRepository creates a new queue repository instance
func NewQueueRepository() QueueRepository {
	return &queueRepository{}
}

// ListJobKeys returns every persisted provisioning job key, sorted.
func (r *queueRepository) ListJobKeys() ([]string, error) {
	redisClient := cache.GetClient()
	ctx := context.Background()

	unique := make(map[string]struct{})
	var cursor uint64
	for {
		keys, nextCursor, err := redisClient.Scan(ctx, cursor, jobKeyPrefix+"*", 500).Result()
		if err != nil {
			return nil, err
		}
		for _, key := range keys {
			unique[key] = struct{}{}
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	keys := make([]string, 0, len(unique))
	for key := range unique {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// GetJobData returns the serialized job stored under the key.
func (r *queueRepository) GetJobData(key string) (string, error) {
	return cache.GetClient().Get(context.Background(), key).Result()
}

// GetJobTTL returns how long the job record remains before Redis expires it.
func (r *queueRepository) GetJobTTL(key string) (time.Duration, error) {
	return cache.GetClient().TTL(context.Background(), key).Result()
}

// DeleteJobs removes job records in batches and returns the number deleted.
// Keys outside the job namespace are skipped so an admin request cannot
// clear sessions or cached statistics.
func (r *queueRepository) DeleteJobs(keys []string) (int64, error) {
	jobKeys := make([]string, 0, len(keys))
	for _, key := range keys {
		if strings.HasPrefix(key, jobKeyPrefix) {
			jobKeys = append(jobKeys, key)
		}
	}
	if len(jobKeys) == 0 {
		return 0, nil
	}

	redisClient := cache.GetClient()
	ctx := context.Background()

	const batchSize = 500
	var totalDeleted int64

	for i := 0; i < len(jobKeys); i += batchSize {
		end := i + batchSize
		if end > len(jobKeys) {
			end = len(jobKeys)
		}

		deleted, err := redisClient.Del(ctx, jobKeys[i:end]...).Result()
		if err != nil {
			return totalDeleted, err
		}
		totalDeleted += deleted
	}

	return totalDeleted, nil
}

// QueueDepths returns the lengths of the pending and processing lists.
func (r *queueRepository) QueueDepths() (pending int64, processing int64, err error) {
	redisClient := cache.GetClient()
	ctx := context.Background()

	pending, err = redisClient.LLen(ctx, jobQueueKey).Result()
	if err != nil {
		return 0, 0, err
	}
	processing, err = redisClient.LLen(ctx, jobProcessingKey).Result()
	if err != nil {
		return 0, 0, err
	}
	return pending, processing, nil
}
