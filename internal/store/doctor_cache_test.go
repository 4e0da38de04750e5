package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"doctor-registry/internal/domain"
	"doctor-registry/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingReader struct {
	gets  int
	lists int
	err   error
}

func (r *countingReader) GetDoctor(ctx context.Context, id int64) (*domain.Doctor, error) {
	r.gets++
	if r.err != nil {
		return nil, r.err
	}
	return &domain.Doctor{ID: id, NombreCompleto: domain.StringPtr("Dr. Ruiz")}, nil
}

func (r *countingReader) ListDoctors(ctx context.Context, skip, limit int) (*domain.DoctorPage, error) {
	r.lists++
	if r.err != nil {
		return nil, r.err
	}
	return &domain.DoctorPage{TotalCount: 1, Doctores: []domain.Doctor{{ID: 1}}}, nil
}

func TestDoctorCache_GetMiss(t *testing.T) {
	cache := store.NewDoctorCache(newFakeKVStore(), time.Minute, zap.NewNop())

	_, err := cache.GetDoctor(context.Background(), 1)

	assert.ErrorIs(t, err, store.ErrMiss)
}

func TestCachedReader_ReadThrough(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKVStore()
	next := &countingReader{}
	reader := store.NewCachedReader(next, store.NewDoctorCache(kv, time.Minute, zap.NewNop()), zap.NewNop())

	d, err := reader.GetDoctor(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "Dr. Ruiz", *d.NombreCompleto)
	d, err = reader.GetDoctor(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), d.ID)
	assert.Equal(t, 1, next.gets)

	_, err = reader.ListDoctors(ctx, 0, 20)
	require.NoError(t, err)
	page, err := reader.ListDoctors(ctx, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalCount)
	assert.Equal(t, 1, next.lists)
	assert.True(t, kv.has("doctors:page:0:20"))
}

func TestCachedReader_BackendErrorIsNotCached(t *testing.T) {
	kv := newFakeKVStore()
	next := &countingReader{err: errors.New("boom")}
	reader := store.NewCachedReader(next, store.NewDoctorCache(kv, time.Minute, zap.NewNop()), zap.NewNop())

	_, err := reader.GetDoctor(context.Background(), 5)

	assert.Error(t, err)
	assert.False(t, kv.has("doctor:5"))
}

func TestDoctorCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	kv := newFakeKVStore()
	cache := store.NewDoctorCache(kv, time.Minute, zap.NewNop())

	require.NoError(t, cache.PutDoctor(ctx, &domain.Doctor{ID: 5}))
	require.NoError(t, cache.PutDoctor(ctx, &domain.Doctor{ID: 6}))
	require.NoError(t, cache.PutPage(ctx, 0, 20, &domain.DoctorPage{}))
	require.NoError(t, cache.PutPage(ctx, 20, 20, &domain.DoctorPage{}))

	require.NoError(t, cache.Invalidate(ctx, 5))

	assert.False(t, kv.has("doctor:5"))
	assert.True(t, kv.has("doctor:6"))
	assert.False(t, kv.has("doctors:page:0:20"))
	assert.False(t, kv.has("doctors:page:20:20"))
}
