package worker

import (
	"errors"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

var (
	ErrPoolClosed = errors.New("pool is closed")
)

// WorkerPool 限制同时执行的后台任务数，用于牌桌存档等异步写入
type WorkerPool struct {
	limit   int
	tickets chan int
	num     atomic.Int32
	failed  atomic.Int64
}

// NewWorkerPool limit <= 0 时取 10
func NewWorkerPool(limit int) *WorkerPool {
	if limit <= 0 {
		limit = 10
	}

	wp := &WorkerPool{
		limit:   limit,
		tickets: make(chan int, limit),
	}
	for i := range limit {
		wp.tickets <- i
	}
	return wp
}

// Do 等到有空闲位置后执行 job，job 中的 panic 会被记录而不会扩散
func (wp *WorkerPool) Do(job func()) (ticket int, err error) {
	return wp.Submit("", func() error {
		if job != nil {
			job()
		}
		return nil
	})
}

// Submit 与 Do 相同，job 返回的错误按 name 记录日志
func (wp *WorkerPool) Submit(name string, job func() error) (ticket int, err error) {
	ticket, ok := <-wp.tickets
	if !ok {
		return -1, ErrPoolClosed
	}

	wp.num.Add(1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				wp.failed.Add(1)
				log.Error().Str("job", name).Interface("panic", r).Msg("worker job panicked")
			}
			wp.num.Add(-1)
			wp.tickets <- ticket
		}()

		if job == nil {
			return
		}
		if err := job(); err != nil {
			wp.failed.Add(1)
			log.Warn().Err(err).Str("job", name).Msg("worker job failed")
		}
	}()

	return ticket, nil
}

// Wait 等待所有任务结束并关闭，之后的 Do 返回 ErrPoolClosed
func (wp *WorkerPool) Wait() {
	for range wp.limit {
		<-wp.tickets
	}
	close(wp.tickets)
}

// Num 正在执行的任务数
func (wp *WorkerPool) Num() int {
	return int(wp.num.Load())
}

// Failed 返回错误或 panic 的任务总数
func (wp *WorkerPool) Failed() int64 {
	return wp.failed.Load()
}
