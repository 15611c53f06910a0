package redlock

import "errors"

var (
	// ErrNotAcquired 重试用完仍未拿到锁
	ErrNotAcquired = errors.New("lock not acquired")
	// ErrNotHeld 锁已过期或被其他实例持有
	ErrNotHeld = errors.New("lock not held")
	// ErrEmptyKey 锁的键为空
	ErrEmptyKey = errors.New("empty lock key")
)
