package store

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/play/guandan/pkg/guandan"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// EventLog 每张牌桌一个 redis list，按发生顺序追加事件，超过上限时丢掉最早的
type EventLog struct {
	rdb  redis.Cmdable
	opts *options
}

func NewEventLog(rdb redis.Cmdable, opts ...Option) *EventLog {
	o := new(options)
	o.apply(opts...).setDefault()
	return &EventLog{rdb: rdb, opts: o}
}

func (l *EventLog) key(id string) string {
	return l.opts.prefix + ":table:events:" + id
}

// Append 追加事件
func (l *EventLog) Append(ctx context.Context, id string, events ...guandan.Event) error {
	if len(events) == 0 {
		return nil
	}

	payloads := make([]any, 0, len(events))
	for i, e := range events {
		payload, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("json marshal failed for event %d: %w", i, err)
		}
		payloads = append(payloads, payload)
	}

	key := l.key(id)
	_, err := l.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, payloads...)
		pipe.LTrim(ctx, key, -l.opts.maxEvents, -1)
		pipe.Expire(ctx, key, l.opts.expires)
		return nil
	})
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("table", id).Int("count", len(events)).Msg("failed to append events")
		return fmt.Errorf("redis RPush events failed: %w", err)
	}
	log.Ctx(ctx).Trace().Str("table", id).Int("count", len(events)).Msg("events appended")
	return nil
}

// Range 读取下标 [from, to] 的事件，下标规则与 LRANGE 相同，-1 表示最后一个
func (l *EventLog) Range(ctx context.Context, id string, from, to int64) ([]guandan.Event, error) {
	raws, err := l.rdb.LRange(ctx, l.key(id), from, to).Result()
	if err != nil {
		return nil, fmt.Errorf("redis LRange events failed: %w", err)
	}
	events := make([]guandan.Event, len(raws))
	for i, raw := range raws {
		if err := json.Unmarshal([]byte(raw), &events[i]); err != nil {
			return nil, fmt.Errorf("json unmarshal failed for event %d: %w", from+int64(i), err)
		}
	}
	return events, nil
}

// Len 事件条数
func (l *EventLog) Len(ctx context.Context, id string) (int64, error) {
	return l.rdb.LLen(ctx, l.key(id)).Result()
}

// Delete 删除牌桌的事件
func (l *EventLog) Delete(ctx context.Context, id string) error {
	return l.rdb.Del(ctx, l.key(id)).Err()
}
