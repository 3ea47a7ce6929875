// Package cache provides a Redis read-through decorator for DocumentDAO.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/julienreichel/oc-provider-backend/internal/domain/dao"
	"github.com/julienreichel/oc-provider-backend/internal/domain/entity"
	"github.com/julienreichel/oc-provider-backend/pkg/cursor"
)

const (
	keyPrefix     = "doc:"
	genPrefix     = "docgen:"
	epochKey      = "docepoch"
	generationTTL = 24 * time.Hour
	scanBatch     = 100
	DefaultTTL    = 5 * time.Minute
)

// errStaleRead aborts a cache fill that raced with a write
var errStaleRead = errors.New("document changed during read")

// HitRecorder observes cache effectiveness
type HitRecorder interface {
	RecordCacheHit(ctx context.Context, cacheName string)
	RecordCacheMiss(ctx context.Context, cacheName string)
}

type nopRecorder struct{}

func (nopRecorder) RecordCacheHit(context.Context, string)  {}
func (nopRecorder) RecordCacheMiss(context.Context, string) {}

// Option configures the cache decorator
type Option func(*documentDAO)

// WithRecorder reports hits and misses to r
func WithRecorder(r HitRecorder) Option {
	return func(d *documentDAO) {
		if r != nil {
			d.recorder = r
		}
	}
}

const cacheName = "documents"

// documentDAO caches FindByID results and invalidates on every write.
// Redis failures are logged and the call falls through to the inner DAO.
//
// Every write bumps a per-document generation (DeleteAll bumps a global
// epoch) before evicting. A read-through fill only lands when the
// generation it observed before reading the inner DAO is still current,
// so a slow reader never reinstates a row that a concurrent write replaced.
type documentDAO struct {
	inner    dao.DocumentDAO
	redis    redis.UniversalClient
	ttl      time.Duration
	logger   *zap.Logger
	recorder HitRecorder
}

// NewDocumentDAO wraps inner with a Redis cache.
func NewDocumentDAO(inner dao.DocumentDAO, client redis.UniversalClient, ttl time.Duration, logger *zap.Logger, opts ...Option) dao.DocumentDAO {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	d := &documentDAO{
		inner:    inner,
		redis:    client,
		ttl:      ttl,
		logger:   logger.With(zap.String("component", "document_cache")),
		recorder: nopRecorder{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func key(id string) string {
	return keyPrefix + id
}

func genKey(id string) string {
	return genPrefix + id
}

type multiGetter interface {
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
}

// generation returns the token a cache fill for id must still match
func generation(ctx context.Context, c multiGetter, id string) (string, error) {
	vals, err := c.MGet(ctx, epochKey, genKey(id)).Result()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%v/%v", vals[0], vals[1]), nil
}

func (d *documentDAO) FindByID(ctx context.Context, id string) (*entity.Document, error) {
	raw, err := d.redis.Get(ctx, key(id)).Bytes()
	switch {
	case err == nil:
		var doc entity.Document
		if uerr := json.Unmarshal(raw, &doc); uerr == nil {
			d.recorder.RecordCacheHit(ctx, cacheName)
			return &doc, nil
		}
		d.logger.Warn("Discarding corrupt cache entry", zap.String("document_id", id))
		d.evict(ctx, id)
	case !errors.Is(err, redis.Nil):
		d.logger.Warn("Cache read failed", zap.String("document_id", id), zap.Error(err))
	}

	d.recorder.RecordCacheMiss(ctx, cacheName)
	gen, genErr := generation(ctx, d.redis, id)
	doc, err := d.inner.FindByID(ctx, id)
	if err != nil || doc == nil || genErr != nil {
		return doc, err
	}
	d.fill(ctx, doc, gen)
	return doc, nil
}

// fill stores doc unless its generation moved past gen
func (d *documentDAO) fill(ctx context.Context, doc *entity.Document, gen string) {
	payload, err := json.Marshal(doc)
	if err != nil {
		return
	}

	err = d.redis.Watch(ctx, func(tx *redis.Tx) error {
		current, err := generation(ctx, tx, doc.ID)
		if err != nil {
			return err
		}
		if current != gen {
			return errStaleRead
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key(doc.ID), payload, d.ttl)
			return nil
		})
		return err
	}, epochKey, genKey(doc.ID))

	switch {
	case err == nil:
	case errors.Is(err, errStaleRead), errors.Is(err, redis.TxFailedErr):
		d.logger.Debug("Skipping cache fill for concurrently modified document", zap.String("document_id", doc.ID))
	default:
		d.logger.Warn("Cache write failed", zap.String("document_id", doc.ID), zap.Error(err))
	}
}

func (d *documentDAO) Save(ctx context.Context, doc *entity.Document) (*entity.Document, error) {
	saved, err := d.inner.Save(ctx, doc)
	if err != nil {
		return nil, err
	}
	d.invalidate(ctx, doc.ID)
	return saved, nil
}

func (d *documentDAO) Delete(ctx context.Context, id string) error {
	if err := d.inner.Delete(ctx, id); err != nil {
		return err
	}
	d.invalidate(ctx, id)
	return nil
}

func (d *documentDAO) DeleteAll(ctx context.Context) error {
	if err := d.inner.DeleteAll(ctx); err != nil {
		return err
	}
	if err := d.redis.Incr(ctx, epochKey).Err(); err != nil {
		d.logger.Warn("Cache epoch bump failed", zap.Error(err))
	}

	iter := d.redis.Scan(ctx, 0, keyPrefix+"*", scanBatch).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		d.logger.Warn("Cache scan failed", zap.Error(err))
		return nil
	}
	if len(keys) > 0 {
		if err := d.redis.Del(ctx, keys...).Err(); err != nil {
			d.logger.Warn("Cache flush failed", zap.Error(err))
		}
	}
	return nil
}

func (d *documentDAO) FindAll(ctx context.Context) ([]*entity.Document, error) {
	return d.inner.FindAll(ctx)
}

func (d *documentDAO) FindAfter(ctx context.Context, after *cursor.Position, limit int) ([]*entity.Document, error) {
	return d.inner.FindAfter(ctx, after, limit)
}

func (d *documentDAO) Count(ctx context.Context) (int64, error) {
	return d.inner.Count(ctx)
}

// invalidate bumps the generation of id, then drops its entry
func (d *documentDAO) invalidate(ctx context.Context, id string) {
	_, err := d.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey(id))
		pipe.Expire(ctx, genKey(id), generationTTL)
		pipe.Del(ctx, key(id))
		return nil
	})
	if err != nil {
		d.logger.Warn("Cache invalidation failed", zap.String("document_id", id), zap.Error(err))
	}
}

func (d *documentDAO) evict(ctx context.Context, id string) {
	if err := d.redis.Del(ctx, key(id)).Err(); err != nil {
		d.logger.Warn("Cache eviction failed", zap.String("document_id", id), zap.Error(err))
	}
}
