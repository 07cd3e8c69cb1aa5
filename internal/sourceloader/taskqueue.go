package sourceloader

import "golang.org/x/sync/errgroup"

// TaskQueue runs loading tasks with bounded concurrency and a completion
// barrier. Tasks that fail a fetch record a placeholder dataset instead of
// returning an error, so the barrier always drains.
type TaskQueue struct {
	group *errgroup.Group
}

// NewTaskQueue creates a queue. A limit of zero or less leaves concurrency
// unbounded; the CSV strategy uses a limit of 1 since column assignment
// depends on header parse order.
func NewTaskQueue(limit int) *TaskQueue {
	group := &errgroup.Group{}
	if limit > 0 {
		group.SetLimit(limit)
	}
	return &TaskQueue{group: group}
}

// Go enqueues one task.
func (q *TaskQueue) Go(task func()) {
	q.group.Go(func() error {
		task()
		return nil
	})
}

// Wait blocks until every enqueued task has settled.
func (q *TaskQueue) Wait() {
	_ = q.group.Wait()
}
