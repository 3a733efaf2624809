package render

import (
	"time"

	"renderrob/internal/job"
)

// State is the controller's lifecycle state.
type State int

const (
	StateIdle State = iota
	StateDispatching
	StateRunning
	StateCancelling
)

func (s State) String() string {
	switch s {
	case StateDispatching:
		return "dispatching"
	case StateRunning:
		return "running"
	case StateCancelling:
		return "cancelling"
	default:
		return "idle"
	}
}

// Summary is the result of one session.
type Summary struct {
	SessionID string
	Started   time.Time
	Finished  time.Time
	Jobs      int
	Active    int
	Outcomes  []Outcome
	// Remaining lists indexes of jobs never dispatched because the session
	// was cancelled or halted.
	Remaining []int
	Cancelled bool
	Progress  int
	Err       error
}

// Counts tallies outcomes by status.
func (s Summary) Counts() map[Status]int {
	counts := make(map[Status]int, 4)
	for _, o := range s.Outcomes {
		counts[o.Status]++
	}
	return counts
}

// ByKey groups outcome statuses by job identity key.
func (s Summary) ByKey() map[string][]Status {
	out := make(map[string][]Status)
	for _, o := range s.Outcomes {
		out[o.Key] = append(out[o.Key], o.Status)
	}
	return out
}

type queuedJob struct {
	index int
	rec   job.Record
}

// session is the private working state of one Run call. The caller's job
// list is copied and never mutated.
type session struct {
	id          string
	started     time.Time
	total       int
	queue       []queuedJob
	activeCount int
	completed   int
	quitCredit  bool
	outcomes    []Outcome
}

func newSession(id string, records []job.Record, now time.Time) *session {
	queue := make([]queuedJob, len(records))
	for i, rec := range records {
		queue[i] = queuedJob{index: i, rec: rec}
	}
	return &session{
		id:          id,
		started:     now,
		total:       len(records),
		queue:       queue,
		activeCount: job.ActiveCount(records),
	}
}

func (s *session) pop() (queuedJob, bool) {
	if len(s.queue) == 0 {
		return queuedJob{}, false
	}
	head := s.queue[0]
	s.queue = s.queue[1:]
	return head, true
}

func (s *session) pending() bool {
	return len(s.queue) > 0
}

func (s *session) remaining() []int {
	if len(s.queue) == 0 {
		return nil
	}
	idx := make([]int, len(s.queue))
	for i, q := range s.queue {
		idx[i] = q.index
	}
	return idx
}

func (s *session) clear() {
	s.queue = nil
}

func (s *session) record(o Outcome) {
	s.outcomes = append(s.outcomes, o)
	if o.Status != StatusSkipped {
		s.completed++
	}
	s.quitCredit = false
}

// progress is the share of active jobs with a terminal outcome. A job whose
// renderer already announced it is quitting counts as finished.
func (s *session) progress() int {
	if s.activeCount == 0 {
		return 100
	}
	done := s.completed
	if s.quitCredit {
		done++
	}
	pct := 100 * done / s.activeCount
	if pct > 100 {
		pct = 100
	}
	return pct
}
