//go:build unit
// +build unit

package core

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewResultHandle(t *testing.T) {
	h1 := NewResultHandle("")
	h2 := NewResultHandle("")
	assert.NotEqual(t, h1.Tag, h2.Tag)
	assert.Equal(t, "null", h1.PostProcess)

	h3 := NewResultHandle(`{"bits":2}`)
	assert.Equal(t, `{"bits":2}`, h3.PostProcess)
}

func TestJobCacheLookup(t *testing.T) {
	cache := NewJobCache()
	h := NewResultHandle("")
	cache.Register(h, []int{0, 2})

	e, err := cache.Lookup(h)
	assert.NoError(t, err)
	assert.Equal(t, []int{0, 2}, e.BitIndices)

	foreign := ResultHandle{Tag: uuid.New()}
	_, err = cache.Lookup(foreign)
	assert.ErrorIs(t, err, ErrHandleNotFound)
}

func TestJobCacheStoreResultAtMostOnce(t *testing.T) {
	cache := NewJobCache()
	h := NewResultHandle("")
	cache.Register(h, nil)

	_, err := cache.Result(h)
	assert.ErrorIs(t, err, ErrResultUnavailable)

	first := EmptyResult(3)
	assert.NoError(t, cache.StoreResult(h, first))
	second := EmptyResult(7)
	assert.NoError(t, cache.StoreResult(h, second))

	got, err := cache.Result(h)
	assert.NoError(t, err)
	assert.Equal(t, 3, got.Shots.Rows)

	again, err := cache.Result(h)
	assert.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestJobCacheStoreResultUnknownHandle(t *testing.T) {
	cache := NewJobCache()
	err := cache.StoreResult(NewResultHandle(""), EmptyResult(1))
	assert.ErrorIs(t, err, ErrHandleNotFound)
}

func TestJobCacheDelete(t *testing.T) {
	cache := NewJobCache()
	h := NewResultHandle("")
	cache.Register(h, nil)
	assert.Equal(t, 1, cache.Len())
	cache.Delete(h)
	assert.Equal(t, 0, cache.Len())
	_, err := cache.Lookup(h)
	assert.ErrorIs(t, err, ErrHandleNotFound)
}
