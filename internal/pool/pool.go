package pool

import "sync"

// Pool типизированная обёртка над sync.Pool.
// Перед возвратом в пул объект сбрасывается функцией reset.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(T)
}

// New создает Pool. reset может быть nil.
func New[T any](fn func() T, reset func(T)) *Pool[T] {
	return &Pool[T]{
		pool: sync.Pool{
			New: func() any {
				return fn()
			},
		},
		reset: reset,
	}
}

// Get возвращает объект из пула
func (p *Pool[T]) Get() T {
	return p.pool.Get().(T)
}

// Put сбрасывает объект и помещает его в пул
func (p *Pool[T]) Put(x T) {
	if p.reset != nil {
		p.reset(x)
	}
	p.pool.Put(x)
}
