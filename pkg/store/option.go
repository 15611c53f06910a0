package store

import "time"

type options struct {
	prefix    string
	expires   time.Duration
	maxEvents int64
}

// apply apply options
func (o *options) apply(opts ...Option) *options {
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// setDefault default configuration
func (o *options) setDefault() {
	if o.prefix == "" {
		o.prefix = "guandan"
	}
	if o.expires <= 0 {
		o.expires = time.Hour * 24 // 默认保留1天
	}
	if o.maxEvents <= 0 {
		o.maxEvents = 4096
	}
}

type Option func(*options)

// WithPrefix sets the key prefix
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = prefix
	}
}

// WithExpires sets how long an idle table is kept
func WithExpires(d time.Duration) Option {
	return func(o *options) {
		o.expires = d
	}
}

// WithMaxEvents caps the event log length of one table
func WithMaxEvents(n int64) Option {
	return func(o *options) {
		o.maxEvents = n
	}
}
