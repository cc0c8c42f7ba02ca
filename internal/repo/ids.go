package repo

import (
	"fmt"
	"sync"
	"time"
)

// stampSource hands out strictly increasing second-resolution timestamps.
// Two calls within the same wall-clock second get consecutive seconds, so
// timestamp-derived ids never collide however fast callers come in.
type stampSource struct {
	mu   sync.Mutex
	last time.Time
}

func (s *stampSource) next() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().Truncate(time.Second)
	if !now.After(s.last) {
		now = s.last.Add(time.Second)
	}
	s.last = now
	return now
}

// transactionID builds ids like DEP20240101093000 / WTH20240101093000.
func transactionID(kind string, stamp time.Time) string {
	prefix := "DEP"
	if kind == KindWithdraw {
		prefix = "WTH"
	}
	return prefix + stamp.Format("20060102150405")
}

func complaintID(stamp time.Time) string {
	return "COMP" + stamp.Format("20060102150405")
}

// customerSeq allocates C-prefixed customer numbers from a monotonic
// counter. The counter is seeded once from the highest number already on
// record; wall-clock derived ids collided in production under fast
// successive registrations.
type customerSeq struct {
	mu   sync.Mutex
	next int64
}

func (s *customerSeq) allocate() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	return fmt.Sprintf("C%06d", id)
}

func (s *customerSeq) seed(from int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if from >= s.next {
		s.next = from + 1
	}
	if s.next < 1 {
		s.next = 1
	}
}
