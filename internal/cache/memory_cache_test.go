package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedItem struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "item", cachedItem{Name: "a", Count: 2}, time.Minute))

	var got cachedItem
	require.NoError(t, c.Get(ctx, "item", &got))
	assert.Equal(t, cachedItem{Name: "a", Count: 2}, got)

	assert.ErrorIs(t, c.Get(ctx, "missing", &got), ErrCacheMiss)
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", 1, time.Second))
	now = now.Add(2 * time.Second)

	var v int
	assert.ErrorIs(t, c.Get(ctx, "k", &v), ErrCacheMiss)
}

func TestMemoryCache_DeletePattern(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()
	id := uuid.New()

	require.NoError(t, c.Set(ctx, QuestionnaireKey(id), 1, 0))
	require.NoError(t, c.Set(ctx, "template:x", 2, 0))

	require.NoError(t, c.DeletePattern(ctx, QuestionnairePattern()))

	var v int
	assert.ErrorIs(t, c.Get(ctx, QuestionnaireKey(id), &v), ErrCacheMiss)
	assert.NoError(t, c.Get(ctx, "template:x", &v))
	assert.Equal(t, 2, v)
}
