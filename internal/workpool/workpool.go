// Package workpool provides the small fixed-size goroutine pool that
// dispatches every parallel phase of a galaxysim iteration: boundary
// reduction, sector assignment, per-sector tree construction, and
// force/integration. It is the Go-idiomatic stand-in for the
// "task-launching runtime" that galaxysim treats as an external
// collaborator — the pool itself is not part of the hard problem, but
// something has to run the independent tasks, so this does.
package workpool

import "sync"

// Pool runs tasks on a bounded number of goroutines. Tasks submitted in
// one Go call all run to completion before Go returns (a barrier),
// matching the per-phase barrier semantics galaxysim requires between
// boundary, sector, build, and force phases.
type Pool struct {
	size int
}

// New returns a Pool sized to run at most size tasks concurrently. A
// size below 1 is treated as 1.
func New(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{size: size}
}

// Size reports the pool's worker count.
func (p *Pool) Size() int { return p.size }

// Go runs each of fns concurrently, bounded by the pool size, and blocks
// until all have returned. This is the barrier: no caller-visible work
// from a later phase may start until Go returns.
func (p *Pool) Go(fns []func()) {
	if len(fns) == 0 {
		return
	}

	sem := make(chan struct{}, p.size)
	var wg sync.WaitGroup
	wg.Add(len(fns))

	for _, fn := range fns {
		sem <- struct{}{}
		go func(task func()) {
			defer wg.Done()
			defer func() { <-sem }()
			task()
		}(fn)
	}

	wg.Wait()
}

// ForRanges splits [0, n) into at most p.Size() contiguous ranges and
// runs fn once per range concurrently, blocking until all ranges are
// done. Used by the sector assigner, which must touch only its own body
// range per task.
func (p *Pool) ForRanges(n int, fn func(start, end int)) {
	if n <= 0 {
		return
	}

	workers := p.size
	if workers > n {
		workers = n
	}

	chunk := (n + workers - 1) / workers
	tasks := make([]func(), 0, workers)
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		s, e := start, end
		tasks = append(tasks, func() { fn(s, e) })
	}

	p.Go(tasks)
}
