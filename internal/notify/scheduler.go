package notify

import (
	"sort"
	"sync"
	"time"
)

type timer interface {
	Stop() bool
}

type entry struct {
	timer timer
	gen   uint64
}

// Scheduler runs one-shot tasks after a delay. Tasks are keyed; scheduling
// an existing key replaces the pending task.
type Scheduler struct {
	mu      sync.Mutex
	tasks   map[string]entry
	gen     uint64
	stopped bool

	afterFunc func(d time.Duration, f func()) timer
}

// NewScheduler creates a scheduler backed by time.AfterFunc.
func NewScheduler() *Scheduler {
	return &Scheduler{
		tasks: make(map[string]entry),
		afterFunc: func(d time.Duration, f func()) timer {
			return time.AfterFunc(d, f)
		},
	}
}

// Schedule runs fn after delay under key. It returns false once the
// scheduler is stopped.
func (s *Scheduler) Schedule(key string, delay time.Duration, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return false
	}
	if old, ok := s.tasks[key]; ok {
		old.timer.Stop()
	}

	s.gen++
	gen := s.gen
	t := s.afterFunc(delay, func() {
		s.mu.Lock()
		if cur, ok := s.tasks[key]; ok && cur.gen == gen {
			delete(s.tasks, key)
		}
		s.mu.Unlock()
		fn()
	})
	s.tasks[key] = entry{timer: t, gen: gen}
	return true
}

// Cancel stops the task under key. It reports whether one was pending.
func (s *Scheduler) Cancel(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.tasks[key]
	if !ok {
		return false
	}
	e.timer.Stop()
	delete(s.tasks, key)
	return true
}

// Pending returns the keys of tasks that have not run yet, sorted.
func (s *Scheduler) Pending() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.tasks))
	for k := range s.tasks {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Stop cancels every pending task and rejects new ones.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, e := range s.tasks {
		e.timer.Stop()
		delete(s.tasks, k)
	}
	s.stopped = true
}
