package core

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ResultHandle identifies a submitted circuit. The tag is random so handles
// issued by different processes never collide. PostProcess carries the
// serialized correction circuit to replay on the readouts, or the JSON null
// literal when there is none.
type ResultHandle struct {
	Tag         uuid.UUID
	PostProcess string
}

func NewResultHandle(postProcess string) ResultHandle {
	if postProcess == "" {
		postProcess = "null"
	}
	return ResultHandle{
		Tag:         uuid.New(),
		PostProcess: postProcess,
	}
}

func (h ResultHandle) String() string {
	return fmt.Sprintf("(%s, %s)", h.Tag, h.PostProcess)
}

// JobCacheEntry is the per-handle record kept from submission until the
// result is fetched or the entry is dropped.
type JobCacheEntry struct {
	Handle     ResultHandle
	BitIndices []int
	TargetID   string
	Result     *BackendResult
	Submitted  strfmt.DateTime
}

// JobCache is the handle registry. Handles are registered at submission,
// results are stored at most once, and lookups of foreign handles fail with
// ErrHandleNotFound.
type JobCache struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*JobCacheEntry
}

func NewJobCache() *JobCache {
	return &JobCache{
		entries: make(map[uuid.UUID]*JobCacheEntry),
	}
}

func (c *JobCache) Register(h ResultHandle, bitIndices []int) *JobCacheEntry {
	e := &JobCacheEntry{
		Handle:     h,
		BitIndices: append([]int(nil), bitIndices...),
		Submitted:  strfmt.DateTime(time.Now()),
	}
	c.mu.Lock()
	c.entries[h.Tag] = e
	c.mu.Unlock()
	return e
}

func (c *JobCache) Lookup(h ResultHandle) (*JobCacheEntry, error) {
	c.mu.RLock()
	e, ok := c.entries[h.Tag]
	c.mu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(ErrHandleNotFound, "handle %s", h.Tag)
	}
	return e, nil
}

// SetTargetID records the target-side job identifier for status polling.
func (c *JobCache) SetTargetID(h ResultHandle, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[h.Tag]
	if !ok {
		return errors.Wrapf(ErrHandleNotFound, "handle %s", h.Tag)
	}
	e.TargetID = id
	return nil
}

// StoreResult attaches a result to a registered handle. A result already in
// place wins: the store is at most once, so repeated fetches are idempotent.
func (c *JobCache) StoreResult(h ResultHandle, r *BackendResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[h.Tag]
	if !ok {
		return errors.Wrapf(ErrHandleNotFound, "handle %s", h.Tag)
	}
	if e.Result != nil {
		zap.L().Debug(fmt.Sprintf("result for handle %s already stored", h.Tag))
		return nil
	}
	e.Result = r
	return nil
}

// Result returns the cached result for a handle, or ErrResultUnavailable
// when the job is known but not finished.
func (c *JobCache) Result(h ResultHandle) (*BackendResult, error) {
	e, err := c.Lookup(h)
	if err != nil {
		return nil, err
	}
	c.mu.RLock()
	r := e.Result
	c.mu.RUnlock()
	if r == nil {
		return nil, errors.Wrapf(ErrResultUnavailable, "handle %s", h.Tag)
	}
	return r, nil
}

func (c *JobCache) Delete(h ResultHandle) {
	c.mu.Lock()
	delete(c.entries, h.Tag)
	c.mu.Unlock()
}

func (c *JobCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
