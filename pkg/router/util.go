package router

import "sync/atomic"

// uint64Counter is a small atomic counter used by RoundRobinStrategy.
type uint64Counter struct {
	v uint64
}

func (c *uint64Counter) next() uint64 {
	return atomic.AddUint64(&c.v, 1) - 1
}
