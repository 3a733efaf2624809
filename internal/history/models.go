package history

import "time"

// Session is one recorded render session.
type Session struct {
	ID         string
	JobFile    string
	StartedAt  time.Time
	FinishedAt *time.Time
	Jobs       int
	Active     int
	Progress   int
	Cancelled  bool
	Error      string

	Green   int
	Yellow  int
	Red     int
	Skipped int
}

// Finished reports whether the session ended (it may have crashed otherwise).
func (s Session) Finished() bool { return s.FinishedAt != nil }

// Outcome is one recorded job result.
type Outcome struct {
	SessionID  string
	Index      int
	Key        string
	Label      string
	SourceFile string
	Status     string
	ExitCode   *int
	ShotName   string
	FramePath  string
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}
