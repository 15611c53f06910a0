package hall

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/play/guandan/pkg/config"
	"github.com/play/guandan/pkg/guandan"
	"github.com/play/guandan/pkg/redlock"
	"github.com/play/guandan/pkg/store"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var (
	ErrTableNotFound = store.ErrNotFound
	ErrClosed        = errors.New("hall is closed")
	ErrStale         = errors.New("snapshot behind latest revision")
)

// 等待其他进程写完存档的重试参数
const (
	reloadRetries = 20
	reloadDelay   = 25 * time.Millisecond
)

// Action 在持有牌桌锁时执行的一次操作
type Action func(m *guandan.Match) (guandan.Events, error)

type table struct {
	mu    sync.Mutex
	match *guandan.Match
	rev   int64 // 与 redis 中的修订号比较，不一致说明其他进程改过
}

// Hall 管理所有牌桌：本地 LRU 缓存比赛，redis 保存存档与事件，
// 同一牌桌的操作通过分布式锁串行执行，缓存按修订号校验
type Hall struct {
	rules     guandan.Options
	tables    *expirable.LRU[string, *table]
	snapshots *store.SnapshotStore
	events    *store.EventLog
	locks     *redlock.RedisLocker
	saver     *saver

	closed atomic.Bool
}

// New 按配置创建 Hall
func New(rdb redis.Cmdable, cfg *config.Config) *Hall {
	rc, hc := cfg.Redis(), cfg.Hall()
	h := &Hall{
		rules:     cfg.Rules(),
		snapshots: store.NewSnapshotStore(rdb, store.WithPrefix(rc.Prefix)),
		events:    store.NewEventLog(rdb, store.WithPrefix(rc.Prefix)),
		locks:     redlock.NewRedLock(rdb, rc.Prefix),
	}
	h.saver = newSaver(hc.Workers, h.snapshots)
	h.tables = expirable.NewLRU[string, *table](hc.Size, func(id string, _ *table) {
		log.Debug().Str("table", id).Msg("table evicted")
	}, hc.TTL)
	return h
}

// Open 创建一张新牌桌并立即保存，返回的比赛只能在 Do 中修改
func (h *Hall) Open(ctx context.Context) (string, *guandan.Match, error) {
	if h.closed.Load() {
		return "", nil, ErrClosed
	}
	id := uuid.NewString()
	m := guandan.NewMatch(h.rules)
	snap := m.Snapshot()
	rev, err := h.snapshots.Save(ctx, id, &snap)
	if err != nil {
		return "", nil, err
	}
	h.tables.Add(id, &table{match: m, rev: rev})
	log.Ctx(ctx).Info().Str("table", id).Msg("table opened")
	return id, m, nil
}

// Do 锁住牌桌后执行 fn。fn 成功时领取修订号、追加事件并异步保存存档；
// fn 返回错误时丢弃缓存，下次访问从最近的存档恢复
func (h *Hall) Do(ctx context.Context, id string, fn Action) (events guandan.Events, err error) {
	if h.closed.Load() {
		return nil, ErrClosed
	}
	err = h.locks.WithLock(ctx, "table:"+id, func(ctx context.Context) error {
		t, err := h.table(ctx, id)
		if err != nil {
			return err
		}

		t.mu.Lock()
		defer t.mu.Unlock()

		if events, err = fn(t.match); err != nil {
			h.tables.Remove(id)
			return err
		}
		snap := t.match.Snapshot()
		data, err := snap.MarshalBinary()
		if err != nil {
			h.tables.Remove(id)
			return fmt.Errorf("marshal snapshot %s: %w", id, err)
		}
		rev, err := h.snapshots.NextRev(ctx, id)
		if err != nil {
			h.tables.Remove(id)
			return err
		}
		t.rev = rev
		// 事件只做回放用，写入失败不影响比赛
		if err := h.events.Append(ctx, id, events...); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("table", id).Msg("events dropped")
		}
		h.saver.save(context.WithoutCancel(ctx), id, rev, data)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// table 缓存的修订号与 redis 一致时直接使用，否则等待本进程未完成的保存后从 redis 恢复。
// 其他进程领取了修订号但存档还没写到时，短暂重试
func (h *Hall) table(ctx context.Context, id string) (*table, error) {
	cur, err := h.snapshots.Rev(ctx, id)
	if err != nil {
		return nil, err
	}
	if t, ok := h.tables.Get(id); ok && t.rev == cur {
		return t, nil
	}
	h.saver.wait(id)

	for attempt := 0; ; attempt++ {
		m, rev, err := h.snapshots.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		if rev >= cur {
			t := &table{match: m, rev: rev}
			h.tables.Add(id, t)
			log.Ctx(ctx).Debug().Str("table", id).Int64("rev", rev).Msg("table restored")
			return t, nil
		}
		if attempt >= reloadRetries {
			log.Ctx(ctx).Warn().Str("table", id).Int64("rev", rev).Int64("want", cur).Msg("snapshot behind rev")
			return nil, fmt.Errorf("%w: table %s at rev %d, want %d", ErrStale, id, rev, cur)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(reloadDelay):
		}
	}
}

// Events 读取牌桌事件，下标规则与 LRANGE 相同
func (h *Hall) Events(ctx context.Context, id string, from, to int64) (guandan.Events, error) {
	return h.events.Range(ctx, id, from, to)
}

// Delete 删除牌桌的缓存、存档和事件
func (h *Hall) Delete(ctx context.Context, id string) error {
	return h.locks.WithLock(ctx, "table:"+id, func(ctx context.Context) error {
		h.tables.Remove(id)
		h.saver.wait(id)
		if err := h.snapshots.Delete(ctx, id); err != nil {
			return err
		}
		return h.events.Delete(ctx, id)
	})
}

// Len 缓存中的牌桌数
func (h *Hall) Len() int {
	return h.tables.Len()
}

// Close 等待所有存档写完并清空缓存
func (h *Hall) Close() {
	if !h.closed.CompareAndSwap(false, true) {
		return
	}
	h.saver.close()
	h.tables.Purge()
}
