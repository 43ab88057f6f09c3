package workpool

import (
	"sync/atomic"
	"testing"
)

func TestGoRunsAllTasks(t *testing.T) {
	p := New(4)
	var counter int64

	tasks := make([]func(), 20)
	for i := range tasks {
		tasks[i] = func() { atomic.AddInt64(&counter, 1) }
	}

	p.Go(tasks)

	if counter != 20 {
		t.Errorf("expected 20 tasks run, got %d", counter)
	}
}

func TestGoIsBarrier(t *testing.T) {
	p := New(8)
	results := make([]int, 100)

	tasks := make([]func(), len(results))
	for i := range tasks {
		idx := i
		tasks[i] = func() { results[idx] = idx * 2 }
	}

	p.Go(tasks)

	for i, v := range results {
		if v != i*2 {
			t.Errorf("result[%d] = %d, want %d (task did not complete before Go returned)", i, v, i*2)
		}
	}
}

func TestForRangesCoversAllIndices(t *testing.T) {
	p := New(4)
	n := 37
	seen := make([]bool, n)

	var mu int64
	p.ForRanges(n, func(start, end int) {
		for i := start; i < end; i++ {
			if seen[i] {
				atomic.AddInt64(&mu, 1)
			}
			seen[i] = true
		}
	})

	if mu != 0 {
		t.Errorf("index visited more than once: %d collisions", mu)
	}
	for i, v := range seen {
		if !v {
			t.Errorf("index %d never visited", i)
		}
	}
}

func TestForRangesSmallN(t *testing.T) {
	p := New(16)
	visits := 0
	p.ForRanges(3, func(start, end int) {
		visits += end - start
	})
	if visits != 3 {
		t.Errorf("expected 3 total visits, got %d", visits)
	}
}

func TestNewClampsSizeBelowOne(t *testing.T) {
	p := New(0)
	if p.Size() != 1 {
		t.Errorf("expected size 1, got %d", p.Size())
	}
	p = New(-5)
	if p.Size() != 1 {
		t.Errorf("expected size 1, got %d", p.Size())
	}
}
