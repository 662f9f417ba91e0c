// Package imports moves text between files on disk and the store: the
// pending-open queue filled by the command line, front-matter aware imports
// and exports of a document's current body.
package imports

import "sync"

// Queue collects paths that were asked to be opened before the store was
// ready. It is safe for concurrent use.
type Queue struct {
	mu    sync.Mutex
	paths []string
}

// Push appends paths, skipping empty strings.
func (q *Queue) Push(paths ...string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for _, p := range paths {
		if p != "" {
			q.paths = append(q.paths, p)
		}
	}
}

// Drain returns the queued paths in push order and empties the queue.
func (q *Queue) Drain() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.paths
	q.paths = nil
	return out
}

// Len reports the number of queued paths.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.paths)
}
