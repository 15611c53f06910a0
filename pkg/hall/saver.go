package hall

import (
	"context"
	"sync"

	"github.com/play/guandan/pkg/store"
	"github.com/play/guandan/pkg/worker"
	"github.com/rs/zerolog/log"
)

// pending 一张牌桌等待写入的最新存档
type pending struct {
	ctx  context.Context
	rev  int64
	data []byte
}

// saver 在线程池里写存档。同一牌桌同时只有一个任务，
// 任务执行期间到来的新存档覆盖旧的，保证 redis 里最终是最新的一份
type saver struct {
	pool      *worker.WorkerPool
	snapshots *store.SnapshotStore

	mu      sync.Mutex
	cond    *sync.Cond
	pending map[string]*pending
}

func newSaver(limit int, snapshots *store.SnapshotStore) *saver {
	w := &saver{
		pool:      worker.NewWorkerPool(limit),
		snapshots: snapshots,
		pending:   make(map[string]*pending),
	}
	w.cond = sync.NewCond(&w.mu)
	return w
}

func (w *saver) save(ctx context.Context, id string, rev int64, data []byte) {
	w.mu.Lock()
	if p, ok := w.pending[id]; ok {
		p.ctx, p.rev, p.data = ctx, rev, data
		w.mu.Unlock()
		return
	}
	w.pending[id] = &pending{ctx: ctx, rev: rev, data: data}
	w.mu.Unlock()

	if _, err := w.pool.Submit("save:"+id, func() error { return w.flush(id) }); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("table", id).Msg("pool closed, saving inline")
		if err := w.flush(id); err != nil {
			log.Ctx(ctx).Error().Err(err).Str("table", id).Msg("snapshot lost")
		}
	}
}

// flush 写到没有新存档为止
func (w *saver) flush(id string) (err error) {
	for {
		w.mu.Lock()
		p := w.pending[id]
		if p.data == nil {
			delete(w.pending, id)
			w.cond.Broadcast()
			w.mu.Unlock()
			return err
		}
		ctx, rev, data := p.ctx, p.rev, p.data
		p.data = nil
		w.mu.Unlock()

		err = w.snapshots.SaveRaw(ctx, id, rev, data)
	}
}

// wait 等待牌桌的存档写完
func (w *saver) wait(id string) {
	w.mu.Lock()
	for w.pending[id] != nil {
		w.cond.Wait()
	}
	w.mu.Unlock()
}

func (w *saver) close() {
	w.pool.Wait()
}
