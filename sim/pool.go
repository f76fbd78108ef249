package sim

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/rotisserie/eris"
)

// WorkerPool executes the items of one batch concurrently on a fixed set of
// long-lived workers. Workers are created once and parked on per-worker wake
// channels; no goroutines are spawned per batch.
//
// ParallelFor is not reentrant: one job runs at a time, driven by the
// orchestrating goroutine.
type WorkerPool struct {
	wakes []chan struct{}
	done  chan struct{}

	fn atomic.Pointer[func(int)]
	// Claims are tagged with the job epoch in the upper 32 bits so a worker
	// still draining a finished job can never steal or duplicate an item of
	// the next one.
	epoch    atomic.Uint64
	next     atomic.Uint64
	count    atomic.Int64
	finished atomic.Int64

	errMu sync.Mutex
	errs  []error

	closed atomic.Bool
	wg     sync.WaitGroup
}

// NewWorkerPool creates a pool with the given number of workers.
// A non-positive count defaults to the number of CPUs.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	p := &WorkerPool{
		wakes: make([]chan struct{}, workers),
		done:  make(chan struct{}, 1),
	}
	for i := range p.wakes {
		p.wakes[i] = make(chan struct{}, 1)
		p.wg.Add(1)
		go p.worker(p.wakes[i])
	}
	return p
}

// Size returns the number of workers.
func (p *WorkerPool) Size() int {
	return len(p.wakes)
}

// ParallelFor invokes fn exactly once for every index in [0,n), spread across
// the pool's workers, and returns once every invocation finished. n of zero
// is a no-op; n of one executes inline on the calling goroutine with no
// signaling. A panicking item is skipped and reported in the returned error
// after the barrier; remaining items still run.
func (p *WorkerPool) ParallelFor(n int, fn func(int)) error {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return runGuarded(0, fn)
	}

	p.errMu.Lock()
	p.errs = p.errs[:0]
	p.errMu.Unlock()

	p.fn.Store(&fn)
	p.count.Store(int64(n))
	p.finished.Store(0)
	epoch := p.epoch.Add(1)
	p.next.Store(epoch << 32)

	for _, wake := range p.wakes {
		select {
		case wake <- struct{}{}:
		default:
		}
	}

	<-p.done

	p.errMu.Lock()
	defer p.errMu.Unlock()
	switch len(p.errs) {
	case 0:
		return nil
	case 1:
		return p.errs[0]
	default:
		err := p.errs[0]
		for _, e := range p.errs[1:] {
			err = eris.Wrap(err, e.Error())
		}
		return err
	}
}

// Close shuts the pool down and waits for the workers to exit. In-flight
// work is not preempted; the transition is one-way.
func (p *WorkerPool) Close() {
	if !p.closed.CompareAndSwap(false, true) {
		return
	}
	for _, wake := range p.wakes {
		close(wake)
	}
	p.wg.Wait()
}

func (p *WorkerPool) worker(wake chan struct{}) {
	defer p.wg.Done()
	for range wake {
		if p.closed.Load() {
			return
		}
		p.drain()
	}
}

// drain claims items by atomic increment until none remain. The worker that
// completes the final item signals the single completion event the
// orchestrating goroutine blocks on.
func (p *WorkerPool) drain() {
	for {
		claim := p.next.Add(1) - 1
		if claim>>32 != p.epoch.Load() {
			return
		}
		i := int64(claim & 0xFFFFFFFF)
		count := p.count.Load()
		if i >= count {
			return
		}
		fn := p.fn.Load()
		if err := runGuarded(int(i), *fn); err != nil {
			p.errMu.Lock()
			p.errs = append(p.errs, err)
			p.errMu.Unlock()
		}
		if p.finished.Add(1) == count {
			p.done <- struct{}{}
		}
	}
}

func runGuarded(i int, fn func(int)) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = eris.Errorf("work item %d panicked: %v", i, r)
		}
	}()
	fn(i)
	return nil
}
