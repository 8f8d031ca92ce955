// internal/worker/pool.go
package worker

import (
	"sync"
)

// Pool bounds the number of concurrently running tasks
type Pool struct {
	wg      sync.WaitGroup
	workers chan struct{}
}

// NewPool creates a pool allowing size concurrent tasks
func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{
		workers: make(chan struct{}, size),
	}
}

// Submit runs task on a pool slot, blocking until one is free
func (p *Pool) Submit(task func()) {
	p.workers <- struct{}{}
	p.wg.Add(1)

	go func() {
		defer func() {
			<-p.workers
			p.wg.Done()
		}()

		task()
	}()
}

// Wait blocks until all submitted tasks have finished
func (p *Pool) Wait() {
	p.wg.Wait()
}
