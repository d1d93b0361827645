package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tier struct {
	Key   string `json:"key"`
	Quota int    `json:"count"`
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var got []tier
	ok, err := s.Get(ctx, KeyAwards, &got)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)

	want := []tier{{Key: "first", Quota: 1}, {Key: "second", Quota: 3}}
	require.NoError(t, s.Set(ctx, KeyAwards, want))
	ok, err = s.Get(ctx, KeyAwards, &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, got)
	assert.ElementsMatch(t, []string{KeyAwards}, s.Keys())

	require.NoError(t, s.Remove(ctx, KeyAwards))
	ok, err = s.Get(ctx, KeyAwards, &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryStore_QuotaExceeded(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.MaxBytes = 32

	require.NoError(t, s.Set(ctx, KeySelectAward, "first"))
	err := s.Set(ctx, KeyLotteryData, []string{"a rather long candidate name", "and another one"})
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	var sel string
	ok, err := s.Get(ctx, KeySelectAward, &sel)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "first", sel, "earlier values survive a refused write")

	require.NoError(t, s.Set(ctx, KeySelectAward, "second"), "overwriting a key reuses its space")
}

func TestMemoryStore_DecodeError(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Set(ctx, KeyAwardLog, "not a map"))
	var remaining map[string]int
	_, err := s.Get(ctx, KeyAwardLog, &remaining)
	assert.Error(t, err)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	s, closeFn, err := Open(ctx, Options{})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)
	assert.NoError(t, closeFn())

	_, _, err = Open(ctx, Options{Backend: BackendPostgres})
	assert.Error(t, err)

	_, _, err = Open(ctx, Options{Backend: "etcd"})
	assert.Error(t, err)
}
