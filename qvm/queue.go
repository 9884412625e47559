package qvm

import (
	"context"
	"fmt"
	"sync"

	conq "github.com/enriquebris/goconcurrentqueue"
	"go.uber.org/zap"

	"github.com/qbridge-team/qbridge-engine/core"
)

type fifo interface {
	Enqueue(*qvmJob) error
	Dequeue() (*qvmJob, error)
	DequeueOrWaitForNextElement() (*qvmJob, error)
	GetLen() int
}

type conqFIFO struct {
	conq.FIFO
}

func newConqFIFO() *conqFIFO {
	return &conqFIFO{
		FIFO: *conq.NewFIFO(),
	}
}

func (c *conqFIFO) Enqueue(j *qvmJob) error {
	return c.FIFO.Enqueue(j)
}

func (c *conqFIFO) Dequeue() (*qvmJob, error) {
	tmp, err := c.FIFO.Dequeue()
	if err != nil {
		return nil, err
	}
	return tmp.(*qvmJob), nil
}

func (c *conqFIFO) DequeueOrWaitForNextElement() (*qvmJob, error) {
	tmp, err := c.FIFO.DequeueOrWaitForNextElement()
	if err != nil {
		return nil, err
	}
	return tmp.(*qvmJob), nil
}

func (c *conqFIFO) GetLen() int {
	return c.FIFO.GetLen()
}

// qvmJob is a program waiting on, or finished with, the local run queue.
type qvmJob struct {
	id      string
	program *core.Program

	mu       sync.Mutex
	status   string
	readouts [][]int
	err      error
	done     chan struct{}
}

func newQVMJob(id string, p *core.Program) *qvmJob {
	return &qvmJob{
		id:      id,
		program: p,
		status:  "loaded",
		done:    make(chan struct{}),
	}
}

func (j *qvmJob) ID() string { return j.id }

func (j *qvmJob) Status(context.Context) (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.status, nil
}

func (j *qvmJob) Readouts(ctx context.Context) ([][]int, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-j.done:
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.readouts, j.err
}

func (j *qvmJob) setStatus(s string) {
	j.mu.Lock()
	j.status = s
	j.mu.Unlock()
}

func (j *qvmJob) finish(readouts [][]int, err error) {
	j.mu.Lock()
	j.readouts = readouts
	j.err = err
	if err != nil {
		j.status = "failed"
	} else {
		j.status = "done"
	}
	j.mu.Unlock()
	close(j.done)
}

// runQueue feeds submitted jobs to a single executor goroutine in FIFO
// order.
type runQueue struct {
	fifo       fifo
	maxSize    int
	cancelChan chan struct{}
	execute    func(*core.Program) ([][]int, error)
}

func newRunQueue(maxSize int, execute func(*core.Program) ([][]int, error)) *runQueue {
	if maxSize <= 0 {
		maxSize = 100
	}
	return &runQueue{
		fifo:       newConqFIFO(),
		maxSize:    maxSize,
		cancelChan: make(chan struct{}),
		execute:    execute,
	}
}

func (q *runQueue) Start() {
	go func() {
		for {
			job, err := q.fifo.DequeueOrWaitForNextElement()
			if err != nil {
				select {
				case <-q.cancelChan:
					return
				default:
				}
				zap.L().Error(fmt.Sprintf("failed to dequeue from run queue/reason:%s", err))
				continue
			}
			if job == nil { // teardown sentinel
				return
			}
			job.setStatus("running")
			zap.L().Debug(fmt.Sprintf("running job %s", job.id))
			readouts, err := q.execute(job.program)
			if err != nil {
				zap.L().Error(fmt.Sprintf("failed to run job %s/reason:%s", job.id, err))
			}
			job.finish(readouts, err)
		}
	}()
}

func (q *runQueue) TearDown() {
	close(q.cancelChan)
	q.fifo.Enqueue(nil)
}

func (q *runQueue) Put(job *qvmJob) error {
	if q.fifo.GetLen() >= q.maxSize {
		return fmt.Errorf("run queue is full (max %d)", q.maxSize)
	}
	return q.fifo.Enqueue(job)
}

func (q *runQueue) Len() int {
	return q.fifo.GetLen()
}
