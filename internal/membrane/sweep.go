package membrane

import (
	"sync"

	"github.com/tphakala/go-drum-synth/internal/simdops"
)

// sweepJob carries one tick's buffers and coefficients to a worker.
// It is sent by value so a tick never allocates.
type sweepJob[F simdops.Float] struct {
	next, cur, prev []F
	c2, damping     F
}

// sweepPool shares the cell sweep between persistent goroutines.
// Partition 0 runs on the caller; partitions 1..n-1 each have a worker.
type sweepPool[F simdops.Float] struct {
	parts  [][]int32
	stride int
	jobs   []chan sweepJob[F]

	barrier sync.WaitGroup
	exited  sync.WaitGroup
	once    sync.Once
}

// newSweepPool splits active into contiguous partitions and starts the workers.
func newSweepPool[F simdops.Float](active []int32, stride, workers int) *sweepPool[F] {
	if workers > len(active) {
		workers = len(active)
	}
	if workers < 1 {
		workers = 1
	}

	p := &sweepPool[F]{
		parts:  partition(active, workers),
		stride: stride,
	}
	p.jobs = make([]chan sweepJob[F], len(p.parts)-1)
	for i := range p.jobs {
		ch := make(chan sweepJob[F], 1)
		p.jobs[i] = ch
		cells := p.parts[i+1]
		p.exited.Add(1)
		go p.worker(ch, cells)
	}
	return p
}

func (p *sweepPool[F]) worker(ch <-chan sweepJob[F], cells []int32) {
	defer p.exited.Done()
	for job := range ch {
		sweepCells(job.next, job.cur, job.prev, cells, p.stride, job.c2, job.damping)
		p.barrier.Done()
	}
}

// run executes one tick across all partitions and returns once every
// partition has been written.
func (p *sweepPool[F]) run(next, cur, prev []F, c2, damping F) {
	job := sweepJob[F]{next: next, cur: cur, prev: prev, c2: c2, damping: damping}
	p.barrier.Add(len(p.jobs))
	for _, ch := range p.jobs {
		ch <- job
	}
	sweepCells(next, cur, prev, p.parts[0], p.stride, c2, damping)
	p.barrier.Wait()
}

// close stops all workers and waits for them to exit. Safe to call twice.
func (p *sweepPool[F]) close() {
	p.once.Do(func() {
		for _, ch := range p.jobs {
			close(ch)
		}
		p.exited.Wait()
	})
}

// partition splits cells into n contiguous runs whose lengths differ by at most one.
func partition(cells []int32, n int) [][]int32 {
	parts := make([][]int32, n)
	base := len(cells) / n
	extra := len(cells) % n
	start := 0
	for i := range parts {
		size := base
		if i < extra {
			size++
		}
		parts[i] = cells[start : start+size : start+size]
		start += size
	}
	return parts
}
