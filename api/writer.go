package api

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/qbridge-team/qbridge-engine/core"
)

const ResultWriterName = "result_writer"

// ResultWriterImpl drains the cache channel, logging every finished job.
// The channel closes on system teardown, which ends the drain loop.
type ResultWriterImpl struct {
	sc *core.SystemComponents

	mu        sync.Mutex
	completed int
	failed    int
}

func (r *ResultWriterImpl) GetEmptyParams() interface{} {
	return r
}

func (r *ResultWriterImpl) SetParams(interface{}) error {
	return nil
}

func (r *ResultWriterImpl) Setup() error {
	r.sc = core.GetSystemComponents()
	if r.sc == nil {
		return fmt.Errorf("system components are not set up")
	}
	if err := r.sc.Check(); err != nil {
		return err
	}
	return nil
}

func (r *ResultWriterImpl) Start() error {
	go func() {
		for update := range r.sc.CacheChan {
			r.record(update)
		}
	}()
	return nil
}

func (r *ResultWriterImpl) record(update core.CacheUpdate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if update.Err != nil {
		r.failed++
		zap.L().Warn(fmt.Sprintf("job failed/handle:%s/reason:%s", update.Handle.Tag, update.Err))
		return
	}
	r.completed++
	zap.L().Info(fmt.Sprintf("job completed/handle:%s/counts:%s",
		update.Handle.Tag, update.Result.Counts()))
}

// Stats reports how many updates the writer has seen.
func (r *ResultWriterImpl) Stats() (completed, failed int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.completed, r.failed
}

func (r *ResultWriterImpl) Cleanup() {
	completed, failed := r.Stats()
	zap.L().Info(fmt.Sprintf("result writer stopping/completed:%d/failed:%d", completed, failed))
}
