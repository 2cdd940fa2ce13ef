package runtime

import (
	"context"
	"sync"

	"github.com/sakura-flow/sakura/internal/ctxlog"
)

// DefaultWorkerCount is the pool size used when the host does not configure
// one.
const DefaultWorkerCount = 6

// pool is the fixed set of workers draining the shared queue.
type pool struct {
	size int
	stop chan struct{}
	wg   sync.WaitGroup
}

func newPool(size int) *pool {
	if size < 1 {
		size = DefaultWorkerCount
	}
	return &pool{size: size, stop: make(chan struct{})}
}

// start launches the workers.
func (p *pool) start(ctx context.Context, rt *Runtime) {
	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.worker(ctx, rt, i)
	}
}

// shutdown sets the termination flag and waits for the workers to drain.
func (p *pool) shutdown() {
	close(p.stop)
	p.wg.Wait()
}

// worker blocks on the queue, serving one request at a time until the pool
// shuts down.
func (p *pool) worker(ctx context.Context, rt *Runtime, workerID int) {
	defer p.wg.Done()
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", workerID)

	for {
		if req, ok := rt.queue.tryDequeue(); ok {
			rt.serve(ctx, req)
			continue
		}

		select {
		case <-p.stop:
			logger.Debug("Worker finished.", "workerID", workerID)
			return
		case <-rt.queue.notify:
		}
	}
}
