package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"doctor-registry/internal/domain"

	"go.uber.org/zap"
)

const (
	doctorKeyPrefix = "doctor:"
	pageKeyPattern  = "doctors:page:*"
)

func doctorKey(id int64) string {
	return fmt.Sprintf("%s%d", doctorKeyPrefix, id)
}

func pageKey(skip, limit int) string {
	return fmt.Sprintf("doctors:page:%d:%d", skip, limit)
}

// DoctorCache 医生档案和列表分页缓存
type DoctorCache struct {
	kv     KV
	ttl    time.Duration
	logger *zap.Logger
}

func NewDoctorCache(kv KV, ttl time.Duration, logger *zap.Logger) *DoctorCache {
	return &DoctorCache{kv: kv, ttl: ttl, logger: logger}
}

// GetDoctor 读取缓存的档案，不存在时返回 ErrMiss
func (c *DoctorCache) GetDoctor(ctx context.Context, id int64) (*domain.Doctor, error) {
	raw, err := c.kv.Get(ctx, doctorKey(id))
	if err != nil {
		return nil, err
	}
	var d domain.Doctor
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, fmt.Errorf("failed to decode cached doctor %d: %w", id, err)
	}
	return &d, nil
}

func (c *DoctorCache) PutDoctor(ctx context.Context, d *domain.Doctor) error {
	b, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return c.kv.Set(ctx, doctorKey(d.ID), string(b), c.ttl)
}

// GetPage 读取缓存的列表页，不存在时返回 ErrMiss
func (c *DoctorCache) GetPage(ctx context.Context, skip, limit int) (*domain.DoctorPage, error) {
	raw, err := c.kv.Get(ctx, pageKey(skip, limit))
	if err != nil {
		return nil, err
	}
	var page domain.DoctorPage
	if err := json.Unmarshal([]byte(raw), &page); err != nil {
		return nil, fmt.Errorf("failed to decode cached page: %w", err)
	}
	return &page, nil
}

func (c *DoctorCache) PutPage(ctx context.Context, skip, limit int, page *domain.DoctorPage) error {
	b, err := json.Marshal(page)
	if err != nil {
		return err
	}
	return c.kv.Set(ctx, pageKey(skip, limit), string(b), c.ttl)
}

// Invalidate 档案变更后删除该档案及所有列表页
func (c *DoctorCache) Invalidate(ctx context.Context, id int64) error {
	pages, err := c.kv.DeleteMatching(ctx, pageKeyPattern)
	if err != nil {
		return fmt.Errorf("failed to delete cached pages: %w", err)
	}
	if err := c.kv.Del(ctx, doctorKey(id)); err != nil {
		return fmt.Errorf("failed to delete cached doctor %d: %w", id, err)
	}
	c.logger.Debug("Doctor cache invalidated", zap.Int64("doctor_id", id), zap.Int("pages", pages))
	return nil
}

// DoctorReader 档案读取接口（client.Client 实现）
type DoctorReader interface {
	GetDoctor(ctx context.Context, id int64) (*domain.Doctor, error)
	ListDoctors(ctx context.Context, skip, limit int) (*domain.DoctorPage, error)
}

// CachedReader 先读缓存，未命中时读后端并回填
type CachedReader struct {
	next   DoctorReader
	cache  *DoctorCache
	logger *zap.Logger
}

func NewCachedReader(next DoctorReader, cache *DoctorCache, logger *zap.Logger) *CachedReader {
	return &CachedReader{next: next, cache: cache, logger: logger}
}

func (r *CachedReader) GetDoctor(ctx context.Context, id int64) (*domain.Doctor, error) {
	d, err := r.cache.GetDoctor(ctx, id)
	if err == nil {
		return d, nil
	}
	if !errors.Is(err, ErrMiss) {
		r.logger.Warn("Doctor cache read failed", zap.Int64("doctor_id", id), zap.Error(err))
	}

	d, err = r.next.GetDoctor(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.cache.PutDoctor(ctx, d); err != nil {
		r.logger.Warn("Doctor cache write failed", zap.Int64("doctor_id", id), zap.Error(err))
	}
	return d, nil
}

func (r *CachedReader) ListDoctors(ctx context.Context, skip, limit int) (*domain.DoctorPage, error) {
	page, err := r.cache.GetPage(ctx, skip, limit)
	if err == nil {
		return page, nil
	}
	if !errors.Is(err, ErrMiss) {
		r.logger.Warn("Doctor page cache read failed", zap.Error(err))
	}

	page, err = r.next.ListDoctors(ctx, skip, limit)
	if err != nil {
		return nil, err
	}
	if err := r.cache.PutPage(ctx, skip, limit, page); err != nil {
		r.logger.Warn("Doctor page cache write failed", zap.Error(err))
	}
	return page, nil
}
