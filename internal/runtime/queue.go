package runtime

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/go-multierror"

	"github.com/sakura-flow/sakura/internal/item"
	"github.com/sakura-flow/sakura/internal/value"
)

// subtreeRequest is one pending unit of work: a list of items to run
// sequentially in some worker, with the environment and diagnostic
// hierarchy they run under. Requests spawned by the same parallel block
// share a completion.
type subtreeRequest struct {
	items      []item.Item
	env        value.Environment
	hierarchy  []string
	completion *completion
}

// completion tracks a batch of sibling requests: a counter of still-running
// siblings and a bag of their errors. The done channel closes when the
// counter reaches zero, which is the happens-before edge consumers of the
// siblings' outputs rely on.
type completion struct {
	pending atomic.Int32
	mu      sync.Mutex
	errs    *multierror.Error
	done    chan struct{}
}

func newCompletion(n int) *completion {
	c := &completion{done: make(chan struct{})}
	c.pending.Store(int32(n))
	return c
}

// fail records a child error. Later failures append; nothing overwrites.
func (c *completion) fail(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = multierror.Append(c.errs, err)
}

// finish decrements the counter, closing done at zero.
func (c *completion) finish() {
	if c.pending.Add(-1) == 0 {
		close(c.done)
	}
}

// err returns the aggregated error, or nil when every child succeeded.
func (c *completion) err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errs.ErrorOrNil()
}

// queue is the single shared FIFO of pending subtree requests. Waiters are
// woken through the notify channel; a woken worker drains the queue until
// it is empty again, so coalesced notifications cannot strand work.
type queue struct {
	mu     sync.Mutex
	fifo   []*subtreeRequest
	notify chan struct{}
}

func newQueue() *queue {
	return &queue{notify: make(chan struct{}, 1)}
}

func (q *queue) enqueue(r *subtreeRequest) {
	q.mu.Lock()
	q.fifo = append(q.fifo, r)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// tryDequeue pops the oldest request without blocking.
func (q *queue) tryDequeue() (*subtreeRequest, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.fifo) == 0 {
		return nil, false
	}
	r := q.fifo[0]
	q.fifo = q.fifo[1:]
	return r, true
}

// spawnParallel enqueues one request per child and blocks until all of them
// have terminated. The calling worker helps while blocked: instead of going
// idle it keeps pumping the queue, so nested parallel blocks make progress
// with any pool size.
func (rt *Runtime) spawnParallel(ctx context.Context, children []item.Item, parentID string, hierarchy []string, env value.Environment) error {
	if len(children) == 0 {
		return nil
	}

	comp := newCompletion(len(children))
	for _, child := range children {
		childHierarchy := make([]string, len(hierarchy), len(hierarchy)+1)
		copy(childHierarchy, hierarchy)
		if parentID != "" {
			childHierarchy = append(childHierarchy, parentID)
		}
		rt.queue.enqueue(&subtreeRequest{
			items:      []item.Item{child},
			env:        env.DeepCopy(),
			hierarchy:  childHierarchy,
			completion: comp,
		})
	}

	for {
		select {
		case <-comp.done:
			return comp.err()
		default:
		}

		if req, ok := rt.queue.tryDequeue(); ok {
			rt.serve(ctx, req)
			continue
		}

		select {
		case <-comp.done:
			return comp.err()
		case <-rt.queue.notify:
		}
	}
}

// spawnSequential runs the items in the calling worker, stopping at the
// first error.
func (rt *Runtime) spawnSequential(ctx context.Context, items []item.Item, env value.Environment, hierarchy []string) error {
	for _, it := range items {
		if err := rt.processItem(ctx, it, env, hierarchy); err != nil {
			return err
		}
	}
	return nil
}

// serve executes one dequeued request and settles its completion.
func (rt *Runtime) serve(ctx context.Context, req *subtreeRequest) {
	if err := rt.spawnSequential(ctx, req.items, req.env, req.hierarchy); err != nil {
		req.completion.fail(err)
	}
	req.completion.finish()
}
