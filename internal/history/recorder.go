package history

import (
	"context"
	"log/slog"

	"renderrob/internal/logging"
	"renderrob/internal/render"
)

// Recorder persists render session events. Write failures are logged and do
// not interrupt the session.
type Recorder struct {
	render.NopReporter

	store   *Store
	jobFile string
	logger  *slog.Logger
	session string
}

// NewRecorder returns a render.Reporter that writes to store.
func NewRecorder(store *Store, jobFile string, logger *slog.Logger) *Recorder {
	return &Recorder{
		store:   store,
		jobFile: jobFile,
		logger:  logging.NewComponentLogger(logger, "history"),
	}
}

func (r *Recorder) SessionStarted(info render.SessionInfo) {
	r.session = info.ID
	err := r.store.BeginSession(context.Background(), Session{
		ID:        info.ID,
		JobFile:   r.jobFile,
		StartedAt: info.Started,
		Jobs:      info.Jobs,
		Active:    info.Active,
	})
	r.warn("record session start failed", err)
}

func (r *Recorder) JobFinished(o render.Outcome) {
	row := Outcome{
		SessionID:  r.session,
		Index:      o.Index,
		Key:        o.Key,
		Label:      o.Job.Label(),
		SourceFile: o.Job.SourceFile,
		Status:     o.Status.String(),
		ShotName:   o.ShotName,
		FramePath:  o.FramePath,
		StartedAt:  o.Started,
		FinishedAt: o.Finished,
	}
	if o.Exited || o.Status == render.StatusSkipped {
		code := o.ExitCode
		row.ExitCode = &code
	}
	if o.Err != nil {
		row.Error = o.Err.Error()
	}
	r.warn("record job outcome failed", r.store.RecordOutcome(context.Background(), row))
}

func (r *Recorder) SessionFinished(s render.Summary) {
	var msg string
	if s.Err != nil {
		msg = s.Err.Error()
	}
	r.warn("record session finish failed",
		r.store.FinishSession(context.Background(), s.SessionID, s.Finished, s.Progress, s.Cancelled, msg))
}

func (r *Recorder) warn(msg string, err error) {
	if err == nil {
		return
	}
	logging.WarnWithContext(r.logger, msg, "history_write_failed",
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "check state_dir permissions and free space"),
		logging.String(logging.FieldImpact, "render continues; history for this session is incomplete"),
	)
}
