package redlock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// 只有值匹配时才删除或续期，避免释放别人的锁
var (
	unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0
`)
	refreshScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)
)

// RedisLocker 创建基于 redis 的锁
type RedisLocker struct {
	client   redis.Cmdable
	prefix   string
	defaults LockOptions
}

// Locker 一把锁
type Locker interface {
	// TryLock 尝试一次，不重试
	TryLock(ctx context.Context) (bool, error)
	// Lock 按重试参数等待，直到拿到锁或 ctx 结束
	Lock(ctx context.Context) error
	Unlock(ctx context.Context) error
	// Refresh 持有期间续期
	Refresh(ctx context.Context, ttl time.Duration) error
	Key() string
	Value() string
}

type lock struct {
	key    string
	value  string
	client redis.Cmdable
	opts   LockOptions
}

// NewRedLock 创建 RedisLocker，prefix 会加在所有锁的键前面
func NewRedLock(client redis.Cmdable, prefix string, opts ...Option) *RedisLocker {
	if client == nil {
		panic("redlock: nil redis client")
	}
	defaults := defaultLockOptions()
	for _, opt := range opts {
		opt(&defaults)
	}
	return &RedisLocker{client: client, prefix: prefix, defaults: defaults}
}

// Locker 返回 key 对应的一把新锁，每次调用的值都不同
func (rl *RedisLocker) Locker(key string, opts ...Option) (Locker, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	lo := rl.defaults
	for _, opt := range opts {
		opt(&lo)
	}
	if rl.prefix != "" {
		key = rl.prefix + ":lock:" + key
	}
	return &lock{
		key:    key,
		value:  uuid.NewString(),
		client: rl.client,
		opts:   lo,
	}, nil
}

// WithLock 持有 key 的锁执行 fn
func (rl *RedisLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error, opts ...Option) error {
	l, err := rl.Locker(key, opts...)
	if err != nil {
		return err
	}
	if err := l.Lock(ctx); err != nil {
		return err
	}
	defer func() {
		// fn 超过 TTL 时锁可能已经过期，只记录
		if err := l.Unlock(context.WithoutCancel(ctx)); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("key", l.Key()).Msg("unlock failed")
		}
	}()
	return fn(ctx)
}

func (l *lock) TryLock(ctx context.Context) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.key, l.value, l.opts.TTL).Result()
	if err != nil {
		return false, fmt.Errorf("redlock setnx %s: %w", l.key, err)
	}
	if ok {
		log.Ctx(ctx).Trace().Str("key", l.key).Dur("ttl", l.opts.TTL).Msg("lock acquired")
	}
	return ok, nil
}

func (l *lock) Lock(ctx context.Context) error {
	for i := 0; ; i++ {
		ok, err := l.TryLock(ctx)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if i >= l.opts.MaxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.opts.RetryDelay):
		}
	}
	log.Ctx(ctx).Warn().Str("key", l.key).Int("retries", l.opts.MaxRetries).Msg("lock not acquired")
	return ErrNotAcquired
}

func (l *lock) Unlock(ctx context.Context) error {
	n, err := unlockScript.Run(ctx, l.client, []string{l.key}, l.value).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redlock unlock %s: %w", l.key, err)
	}
	if n != 1 {
		return ErrNotHeld
	}
	log.Ctx(ctx).Trace().Str("key", l.key).Msg("lock released")
	return nil
}

func (l *lock) Refresh(ctx context.Context, ttl time.Duration) error {
	n, err := refreshScript.Run(ctx, l.client, []string{l.key}, l.value, ttl.Milliseconds()).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redlock refresh %s: %w", l.key, err)
	}
	if n != 1 {
		return ErrNotHeld
	}
	return nil
}

func (l *lock) Key() string {
	return l.key
}

func (l *lock) Value() string {
	return l.value
}
