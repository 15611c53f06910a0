package redlock

import "time"

// LockOptions 获取锁的参数
type LockOptions struct {
	TTL        time.Duration // 锁的过期时间
	MaxRetries int           // 最大重试次数
	RetryDelay time.Duration // 重试间隔
}

// Option 设置 LockOptions
type Option func(*LockOptions)

// WithTTL 设置锁的过期时间
func WithTTL(ttl time.Duration) Option {
	return func(o *LockOptions) {
		o.TTL = ttl
	}
}

// WithMaxRetries 设置最大重试次数
func WithMaxRetries(retries int) Option {
	return func(o *LockOptions) {
		o.MaxRetries = retries
	}
}

// WithRetryDelay 设置重试间隔
func WithRetryDelay(delay time.Duration) Option {
	return func(o *LockOptions) {
		o.RetryDelay = delay
	}
}

// 一次出牌的处理时间很短，默认值按一张牌桌的一次操作设置
func defaultLockOptions() LockOptions {
	return LockOptions{
		TTL:        5 * time.Second,
		MaxRetries: 20,
		RetryDelay: 50 * time.Millisecond,
	}
}
