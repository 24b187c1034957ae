package journey

import (
	"context"
	"errors"
	"time"

	"github.com/journeyboard/platform/pkg/common/logger"
)

// RemoteStore is the asynchronous authoritative backend, present only when
// configured. *Repository implements it.
type RemoteStore interface {
	FetchAll(ctx context.Context) ([]CustomerRow, error)
	UpsertAll(ctx context.Context, rows []CustomerRow) error
	Delete(ctx context.Context, id string) error
	GetNote(ctx context.Context, key string) (string, error)
	SetNote(ctx context.Context, key, content string) error
}

// CacheStore is the always-available best-effort local backend.
// *LocalStore implements it.
type CacheStore interface {
	LoadState(ctx context.Context) TrackerState
	SaveBucket(ctx context.Context, b Bucket, records []JourneyRecord)
	ClearBuckets(ctx context.Context)
	Migrated(ctx context.Context) bool
	SetMigrated(ctx context.Context)
	GetNote(ctx context.Context, key string) string
	SetNote(ctx context.Context, key, content string)
}

// PersistenceConfig captures the backend-selection decision once at
// construction instead of re-reading the environment at call sites.
type PersistenceConfig struct {
	RemoteConfigured bool
}

// Coordinator decides which backend is authoritative at startup and routes
// writes on every mutation. Once the remote store is configured it is the
// only store kept in sync; the local blobs go stale by design and are
// cleared by the one-time migration.
type Coordinator struct {
	cfg    PersistenceConfig
	remote RemoteStore
	local  CacheStore
}

func NewCoordinator(cfg PersistenceConfig, remote RemoteStore, local CacheStore) *Coordinator {
	if remote == nil {
		cfg.RemoteConfigured = false
	}
	return &Coordinator{cfg: cfg, remote: remote, local: local}
}

func (c *Coordinator) RemoteConfigured() bool {
	return c.cfg.RemoteConfigured
}

// Load reconstructs the in-memory state at startup. A non-empty remote
// store wins outright. An empty remote store falls back to the local
// blobs and pushes them up exactly once, guarded by the persisted
// migration flag; afterwards the local copies are cleared. Failures on
// either backend degrade to empty collections, never a startup error.
func (c *Coordinator) Load(ctx context.Context) TrackerState {
	if !c.cfg.RemoteConfigured {
		return c.local.LoadState(ctx)
	}

	rows, err := c.remote.FetchAll(ctx)
	if err != nil {
		logger.Log.WithError(err).Warn("remote fetch failed at startup, using local state")
		return c.local.LoadState(ctx)
	}
	if len(rows) > 0 {
		return RowsToState(rows)
	}

	// Remote is empty: carry forward any pre-existing local-only data.
	state := c.local.LoadState(ctx)
	if state.IsEmpty() || c.local.Migrated(ctx) {
		return state
	}

	if err := c.remote.UpsertAll(ctx, StateToRows(state, time.Now())); err != nil {
		logger.Log.WithError(err).Error("one-time migration push failed, will retry next startup")
		return state
	}
	c.local.SetMigrated(ctx)
	c.local.ClearBuckets(ctx)
	logger.Log.WithField("records", state.Len()).Info("migrated local journey data to remote store")
	return state
}

// Persist mirrors a mutation: changed buckets go to the local store only
// when no remote is configured; the full flattened row-set goes to the
// remote store whenever one is configured. Remote failures are logged and
// swallowed — the in-memory state is never rolled back, and the next
// mutation's write is the de facto retry.
func (c *Coordinator) Persist(ctx context.Context, state TrackerState, changed ...Bucket) {
	if !c.cfg.RemoteConfigured {
		for _, b := range changed {
			c.local.SaveBucket(ctx, b, state.Collection(b))
		}
		return
	}

	if err := c.remote.UpsertAll(ctx, StateToRows(state, time.Now())); err != nil {
		logger.Log.WithError(err).Error("remote upsert failed, change not durably recorded")
	}
}

// Delete removes the record from the configured backend. The in-memory
// removal has already happened; as with Persist, remote failure is logged
// and swallowed.
func (c *Coordinator) Delete(ctx context.Context, state TrackerState, id string, from Bucket) {
	if !c.cfg.RemoteConfigured {
		c.local.SaveBucket(ctx, from, state.Collection(from))
		return
	}

	if err := c.remote.Delete(ctx, id); err != nil {
		logger.Log.WithError(err).WithField("record_id", id).Error("remote delete failed")
	}
}

// GetNote reads a shared touchpoint note, remote first when configured.
func (c *Coordinator) GetNote(ctx context.Context, key string) string {
	if c.cfg.RemoteConfigured {
		content, err := c.remote.GetNote(ctx, key)
		if err == nil {
			return content
		}
		if !errors.Is(err, ErrNoteNotFound) {
			logger.Log.WithError(err).WithField("note", key).Warn("remote note read failed")
		}
		return ""
	}
	return c.local.GetNote(ctx, key)
}

func (c *Coordinator) SetNote(ctx context.Context, key, content string) {
	if c.cfg.RemoteConfigured {
		if err := c.remote.SetNote(ctx, key, content); err != nil {
			logger.Log.WithError(err).WithField("note", key).Warn("remote note write failed")
		}
		return
	}
	c.local.SetNote(ctx, key, content)
}
