package derive

import (
	"sync"
	"time"
)

type taskKind string

const (
	taskEffect  taskKind = "effect"
	taskHydrate taskKind = "hydrate"
)

// postTask is a unit of work deferred until after the current pass commits
type postTask struct {
	kind      taskKind
	component *Component
	slot      *slot
}

// scheduler holds the post-commit queue. Work runs on the rendering
// goroutine; the lock only guards enqueues from factory code.
type scheduler struct {
	mu    sync.Mutex
	queue []postTask
}

func newScheduler() *scheduler {
	return &scheduler{}
}

func (sc *scheduler) enqueue(t postTask) {
	sc.mu.Lock()
	sc.queue = append(sc.queue, t)
	sc.mu.Unlock()
}

// drain swaps out the current queue. Tasks enqueued after the swap belong to
// the next pass.
func (sc *scheduler) drain() []postTask {
	sc.mu.Lock()
	tasks := sc.queue
	sc.queue = nil
	sc.mu.Unlock()
	return tasks
}

// PassStatus describes how a render pass ended
type PassStatus string

const (
	PassStatusSuccess   PassStatus = "success"
	PassStatusFailed    PassStatus = "failed"
	PassStatusCancelled PassStatus = "cancelled"
)

// PassRecord captures one render pass for observability
type PassRecord struct {
	Seq      uint64
	Start    time.Time
	End      time.Time
	Rendered []string // component ids in render order
	Status   PassStatus
	Err      error
}

// passHistory is a bounded record of recent passes
type passHistory struct {
	mu      sync.RWMutex
	records []*PassRecord
	limit   int
}

func newPassHistory(limit int) *passHistory {
	return &passHistory{limit: limit}
}

func (h *passHistory) add(rec *PassRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.records = append(h.records, rec)
	if len(h.records) > h.limit {
		h.records = h.records[len(h.records)-h.limit:]
	}
}

// All returns a copy of the recorded passes, oldest first
func (h *passHistory) All() []*PassRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]*PassRecord, len(h.records))
	copy(out, h.records)
	return out
}

// Last returns the most recent pass record, if any
func (h *passHistory) Last() *PassRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.records) == 0 {
		return nil
	}
	return h.records[len(h.records)-1]
}
