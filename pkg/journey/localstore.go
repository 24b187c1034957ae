package journey

import (
	"context"
	"encoding/json"

	"github.com/journeyboard/platform/pkg/common/logger"
	"github.com/redis/go-redis/v9"
)

const (
	bucketKeyPrefix = "journey:bucket:"
	migratedKey     = "journey:migrated"
	noteKeyPrefix   = "journey:note:"
)

// LocalStore is the best-effort local backend: one JSON blob per bucket
// plus the one-time migration flag. Every operation swallows its error and
// degrades to a safe default so the tracker never fails on cache trouble.
type LocalStore struct {
	client *redis.Client
}

func NewLocalStore(client *redis.Client) *LocalStore {
	return &LocalStore{client: client}
}

func bucketKey(b Bucket) string {
	return bucketKeyPrefix + string(b)
}

// LoadState reads all four bucket blobs. Missing or corrupt blobs load as
// empty collections.
func (s *LocalStore) LoadState(ctx context.Context) TrackerState {
	var state TrackerState
	for _, b := range Buckets() {
		raw, err := s.client.Get(ctx, bucketKey(b)).Bytes()
		if err != nil {
			if err != redis.Nil {
				logger.Log.WithError(err).WithField("bucket", b).Warn("local store read failed")
			}
			continue
		}

		var records []JourneyRecord
		if err := json.Unmarshal(raw, &records); err != nil {
			logger.Log.WithError(err).WithField("bucket", b).Warn("corrupt local bucket blob, loading empty")
			continue
		}
		for i := range records {
			records[i].Bucket = b
			if !records[i].JourneyState.Valid() {
				records[i].JourneyState = DefaultState(b)
			}
		}
		state.SetCollection(b, records)
	}
	return state
}

func (s *LocalStore) SaveBucket(ctx context.Context, b Bucket, records []JourneyRecord) {
	raw, err := json.Marshal(records)
	if err != nil {
		logger.Log.WithError(err).WithField("bucket", b).Warn("failed to encode bucket blob")
		return
	}
	if err := s.client.Set(ctx, bucketKey(b), raw, 0).Err(); err != nil {
		logger.Log.WithError(err).WithField("bucket", b).Warn("local store write failed")
	}
}

// ClearBuckets drops the four bucket blobs after a successful migration so
// the stale local copies cannot diverge from the remote store.
func (s *LocalStore) ClearBuckets(ctx context.Context) {
	for _, b := range Buckets() {
		if err := s.client.Del(ctx, bucketKey(b)).Err(); err != nil {
			logger.Log.WithError(err).WithField("bucket", b).Warn("failed to clear bucket blob")
		}
	}
}

func (s *LocalStore) Migrated(ctx context.Context) bool {
	value, err := s.client.Get(ctx, migratedKey).Result()
	if err != nil {
		return false
	}
	return value == "1"
}

func (s *LocalStore) SetMigrated(ctx context.Context) {
	if err := s.client.Set(ctx, migratedKey, "1", 0).Err(); err != nil {
		logger.Log.WithError(err).Warn("failed to set migration flag")
	}
}

func (s *LocalStore) GetNote(ctx context.Context, key string) string {
	content, err := s.client.Get(ctx, noteKeyPrefix+key).Result()
	if err != nil {
		return ""
	}
	return content
}

func (s *LocalStore) SetNote(ctx context.Context, key, content string) {
	if err := s.client.Set(ctx, noteKeyPrefix+key, content, 0).Err(); err != nil {
		logger.Log.WithError(err).WithField("note", key).Warn("failed to save note")
	}
}
