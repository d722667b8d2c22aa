package generation

import (
	"sync/atomic"
	"time"
)

// IDSource hands out process-unique, time-derived flashcard IDs. Each ID is
// the current Unix time in milliseconds, bumped past the previous ID when two
// calls land in the same millisecond.
type IDSource struct {
	last atomic.Int64
	now  func() time.Time
}

// NewIDSource creates an IDSource driven by the given clock (time.Now if nil).
func NewIDSource(now func() time.Time) *IDSource {
	if now == nil {
		now = time.Now
	}
	return &IDSource{now: now}
}

// Next returns an ID strictly greater than every ID returned before.
func (s *IDSource) Next() int64 {
	for {
		prev := s.last.Load()
		next := s.now().UnixMilli()
		if next <= prev {
			next = prev + 1
		}
		if s.last.CompareAndSwap(prev, next) {
			return next
		}
	}
}
