package chartregistry

import "sync"

// ConstructQueue serializes chart construction: tasks run one at a time in
// enqueue order on a single worker goroutine. Data fetches are not routed
// through it and overlap freely.
type ConstructQueue struct {
	mu     sync.Mutex
	tasks  chan func()
	wg     sync.WaitGroup
	closed bool
}

func NewConstructQueue() *ConstructQueue {
	q := &ConstructQueue{
		// Buffered so loading goroutines hand off without waiting for the
		// worker; a page has a bounded number of charts.
		tasks: make(chan func(), 64),
	}
	go func() {
		for task := range q.tasks {
			task()
			q.wg.Done()
		}
	}()
	return q
}

// Enqueue schedules one construction task. No-op after Drain.
func (q *ConstructQueue) Enqueue(task func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.wg.Add(1)
	q.tasks <- task
}

// Drain waits for every enqueued task to finish and stops the worker.
func (q *ConstructQueue) Drain() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	q.wg.Wait()
	close(q.tasks)
}
