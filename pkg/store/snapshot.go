package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/play/guandan/pkg/guandan"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var ErrNotFound = errors.New("table not found")

// 存档以 hash 保存 rev 与 data，只接受不小于当前 rev 的写入，乱序到达的旧存档被丢弃
var saveScript = redis.NewScript(`
local cur = tonumber(redis.call("HGET", KEYS[1], "rev") or "0")
if tonumber(ARGV[1]) < cur then
    return 0
end
redis.call("HSET", KEYS[1], "rev", ARGV[1], "data", ARGV[2])
redis.call("PEXPIRE", KEYS[1], ARGV[3])
redis.call("SADD", KEYS[2], ARGV[4])
return 1
`)

// SnapshotStore 保存每张牌桌的存档，另有一个 set 记录所有牌桌
// 每次修改前用 NextRev 领取修订号，NextRev 是同一把锁下的进程之间判断缓存是否过期的依据
type SnapshotStore struct {
	rdb      redis.Cmdable
	opts     *options
	indexKey string
}

func NewSnapshotStore(rdb redis.Cmdable, opts ...Option) *SnapshotStore {
	o := new(options)
	o.apply(opts...).setDefault()

	return &SnapshotStore{
		rdb:      rdb,
		opts:     o,
		indexKey: o.prefix + ":table:index",
	}
}

func (s *SnapshotStore) key(id string) string {
	return s.opts.prefix + ":table:snapshot:" + id
}

func (s *SnapshotStore) revKey(id string) string {
	return s.opts.prefix + ":table:rev:" + id
}

// NextRev 领取下一个修订号并刷新过期时间
func (s *SnapshotStore) NextRev(ctx context.Context, id string) (int64, error) {
	var incr *redis.IntCmd
	_, err := s.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, s.revKey(id))
		pipe.Expire(ctx, s.revKey(id), s.opts.expires)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("next rev %s: %w", id, err)
	}
	return incr.Val(), nil
}

// Rev 最近领取的修订号，从未领取过时为 0
func (s *SnapshotStore) Rev(ctx context.Context, id string) (int64, error) {
	rev, err := s.rdb.Get(ctx, s.revKey(id)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("get rev %s: %w", id, err)
	}
	return rev, nil
}

// Save 领取修订号后保存存档，返回本次的修订号
func (s *SnapshotStore) Save(ctx context.Context, id string, snap *guandan.Snapshot) (int64, error) {
	data, err := snap.MarshalBinary()
	if err != nil {
		return 0, fmt.Errorf("marshal snapshot %s: %w", id, err)
	}
	rev, err := s.NextRev(ctx, id)
	if err != nil {
		return 0, err
	}
	return rev, s.SaveRaw(ctx, id, rev, data)
}

// SaveRaw 以 rev 保存已编码的存档，data 需来自 Snapshot.MarshalBinary
// 已有更新修订号的存档时不写入
func (s *SnapshotStore) SaveRaw(ctx context.Context, id string, rev int64, data []byte) error {
	keys := []string{s.key(id), s.indexKey}
	ok, err := saveScript.Run(ctx, s.rdb, keys, rev, data, s.opts.expires.Milliseconds(), id).Int64()
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("table", id).Msg("failed to save snapshot")
		return fmt.Errorf("save snapshot %s: %w", id, err)
	}
	if ok == 0 {
		log.Ctx(ctx).Debug().Str("table", id).Int64("rev", rev).Msg("stale snapshot skipped")
	}
	return nil
}

// Load 读取存档并恢复比赛，同时返回存档的修订号，不存在时返回 ErrNotFound
func (s *SnapshotStore) Load(ctx context.Context, id string) (*guandan.Match, int64, error) {
	vals, err := s.rdb.HMGet(ctx, s.key(id), "rev", "data").Result()
	if err != nil {
		return nil, 0, fmt.Errorf("load snapshot %s: %w", id, err)
	}
	revText, _ := vals[0].(string)
	data, _ := vals[1].(string)
	if data == "" {
		return nil, 0, ErrNotFound
	}
	rev, err := strconv.ParseInt(revText, 10, 64)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: rev %q", guandan.ErrCorruptSnapshot, revText)
	}

	m, err := guandan.Restore([]byte(data))
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("table", id).Msg("corrupt snapshot")
		return nil, 0, err
	}
	return m, rev, nil
}

// Delete 删除存档和修订号
func (s *SnapshotStore) Delete(ctx context.Context, id string) (err error) {
	_, err = s.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key(id), s.revKey(id))
		pipe.SRem(ctx, s.indexKey, id)
		return nil
	})
	return
}

// IDs 所有保存过的牌桌，已过期的存档在 Load 时返回 ErrNotFound
func (s *SnapshotStore) IDs(ctx context.Context) ([]string, error) {
	return s.rdb.SMembers(ctx, s.indexKey).Result()
}
