package game

import (
	"errors"
	"fmt"
)

// ErrInvalidPool is returned when a pool is configured with impossible sizes.
var ErrInvalidPool = errors.New("invalid pool configuration")

// Pool is a LIFO cache of reusable objects.
// Not safe for concurrent use; pools belong to the simulation goroutine.
type Pool[T any] struct {
	items   []T
	create  func() T
	reset   func(T)
	maxSize int

	// Stats
	created uint64
	reused  uint64
	dropped uint64
}

// PoolStats reports allocation behaviour for metrics.
type PoolStats struct {
	Available int    `json:"available"`
	Created   uint64 `json:"created"`
	Reused    uint64 `json:"reused"`
	Dropped   uint64 `json:"dropped"`
}

// NewPool builds a pool and eagerly fills it with initialSize objects.
func NewPool[T any](create func() T, reset func(T), initialSize, maxSize int) (*Pool[T], error) {
	if create == nil || reset == nil {
		return nil, fmt.Errorf("%w: create and reset are required", ErrInvalidPool)
	}
	if initialSize < 0 || maxSize < 0 {
		return nil, fmt.Errorf("%w: negative size (initial=%d, max=%d)", ErrInvalidPool, initialSize, maxSize)
	}
	if initialSize > maxSize {
		return nil, fmt.Errorf("%w: initial size %d exceeds max size %d", ErrInvalidPool, initialSize, maxSize)
	}

	p := &Pool[T]{
		items:   make([]T, 0, maxSize),
		create:  create,
		reset:   reset,
		maxSize: maxSize,
	}
	for i := 0; i < initialSize; i++ {
		p.items = append(p.items, create())
		p.created++
	}
	return p, nil
}

// Get pops the most recently released object, or creates a new one when empty.
func (p *Pool[T]) Get() T {
	n := len(p.items)
	if n == 0 {
		p.created++
		return p.create()
	}
	item := p.items[n-1]
	var zero T
	p.items[n-1] = zero
	p.items = p.items[:n-1]
	p.reused++
	return item
}

// Release resets item and keeps it if there is room. Callers must remove
// item from their live collection first.
func (p *Pool[T]) Release(item T) {
	p.reset(item)
	if len(p.items) >= p.maxSize {
		p.dropped++
		return
	}
	p.items = append(p.items, item)
}

// Len returns the number of pooled objects ready for reuse.
func (p *Pool[T]) Len() int {
	return len(p.items)
}

// MaxSize returns the retention ceiling.
func (p *Pool[T]) MaxSize() int {
	return p.maxSize
}

// Stats returns a copy of the pool counters.
func (p *Pool[T]) Stats() PoolStats {
	return PoolStats{
		Available: len(p.items),
		Created:   p.created,
		Reused:    p.reused,
		Dropped:   p.dropped,
	}
}
