// Package cache holds the per student, per course notes list cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"lesson-notes-server/internal/config"
	"lesson-notes-server/internal/domain"
	"lesson-notes-server/pkg/logger"
)

type LoadFunc func(ctx context.Context) ([]*domain.Note, error)

// NoteListCache caches the notes list of a student within a course.
type NoteListCache interface {
	GetOrLoad(ctx context.Context, studentID, courseID int64, load LoadFunc) ([]*domain.Note, error)
	Invalidate(ctx context.Context, studentID, courseID int64)
}

func Key(studentID, courseID int64) string {
	return fmt.Sprintf("notes_by_student_%d_course_%d", studentID, courseID)
}

type RedisNoteListCache struct {
	log   *logger.Logger
	rdb   *goredis.Client
	ttl   time.Duration
	group singleflight.Group

	// gens counts invalidations per key so a load that overlaps one is not
	// written back.
	mu   sync.Mutex
	gens map[string]uint64
}

// NewRedis connects to Redis and verifies the connection with a ping.
func NewRedis(cfg config.RedisConfig, log *logger.Logger) (*RedisNoteListCache, error) {
	if cfg.Addr == "" {
		return nil, errors.New("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return NewRedisWithClient(rdb, cfg.TTL, log), nil
}

func NewRedisWithClient(rdb *goredis.Client, ttl time.Duration, log *logger.Logger) *RedisNoteListCache {
	return &RedisNoteListCache{
		log:  log.With("service", "NoteListCache"),
		rdb:  rdb,
		ttl:  ttl,
		gens: make(map[string]uint64),
	}
}

// GetOrLoad serves the cached list when present. On a miss the loader runs
// once per key even under concurrent callers. Redis failures fall through
// to the loader.
func (c *RedisNoteListCache) GetOrLoad(ctx context.Context, studentID, courseID int64, load LoadFunc) ([]*domain.Note, error) {
	key := Key(studentID, courseID)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var notes []*domain.Note
		if jerr := json.Unmarshal(raw, &notes); jerr == nil {
			return notes, nil
		}
		c.log.Warn("discarding unreadable cache entry", "key", key)
	case !errors.Is(err, goredis.Nil):
		c.log.Warn("cache read failed", "key", key, "error", err)
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		gen := c.generation(key)
		notes, err := load(ctx)
		if err != nil {
			return nil, err
		}

		c.store(ctx, key, gen, notes)
		return notes, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]*domain.Note), nil
}

// store writes notes under key unless the key was invalidated after gen was
// read. It reports whether a write was attempted.
func (c *RedisNoteListCache) store(ctx context.Context, key string, gen uint64, notes []*domain.Note) bool {
	if c.generation(key) != gen {
		c.log.Debug("skipping stale cache write", "key", key)
		return false
	}

	payload, err := json.Marshal(notes)
	if err != nil {
		return false
	}
	if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.log.Warn("cache write failed", "key", key, "error", err)
	}
	return true
}

func (c *RedisNoteListCache) generation(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[key]
}

// Invalidate drops the cached list. A load already in flight for the key
// will not write its result back, and later callers start a fresh load.
func (c *RedisNoteListCache) Invalidate(ctx context.Context, studentID, courseID int64) {
	key := Key(studentID, courseID)

	c.mu.Lock()
	c.gens[key]++
	c.mu.Unlock()
	c.group.Forget(key)

	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		c.log.Warn("cache invalidation failed", "key", key, "error", err)
	}
}

func (c *RedisNoteListCache) Close() error {
	return c.rdb.Close()
}

// NoopNoteListCache always calls the loader. Used when Redis is not configured.
type NoopNoteListCache struct{}

func (NoopNoteListCache) GetOrLoad(ctx context.Context, studentID, courseID int64, load LoadFunc) ([]*domain.Note, error) {
	return load(ctx)
}

func (NoopNoteListCache) Invalidate(ctx context.Context, studentID, courseID int64) {}
