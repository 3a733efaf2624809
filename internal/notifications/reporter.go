package notifications

import (
	"context"
	"log/slog"
	"sync"

	"renderrob/internal/logging"
	"renderrob/internal/render"
)

// Reporter forwards render session events to a Service. Sends run on their
// own goroutines; Close waits for them to finish.
type Reporter struct {
	render.NopReporter

	svc         Service
	jobFile     string
	jobFailures bool
	logger      *slog.Logger
	ctx         context.Context
	wg          sync.WaitGroup
}

// NewReporter wraps svc. jobFailures controls per-job failure notices.
func NewReporter(ctx context.Context, svc Service, jobFile string, jobFailures bool, logger *slog.Logger) *Reporter {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Reporter{
		svc:         svc,
		jobFile:     jobFile,
		jobFailures: jobFailures,
		logger:      logging.NewComponentLogger(logger, "notifications"),
		ctx:         context.WithoutCancel(ctx),
	}
}

func (r *Reporter) SessionStarted(info render.SessionInfo) {
	r.dispatch("session_started", func(ctx context.Context) error {
		return r.svc.NotifySessionStarted(ctx, r.jobFile, info.Active)
	})
}

func (r *Reporter) JobFinished(o render.Outcome) {
	if !r.jobFailures || o.Status != render.StatusRed {
		return
	}
	r.dispatch("job_failed", func(ctx context.Context) error {
		return r.svc.NotifyJobFailed(ctx, o)
	})
}

func (r *Reporter) SessionFinished(s render.Summary) {
	r.dispatch("session_finished", func(ctx context.Context) error {
		return r.svc.NotifySessionFinished(ctx, s)
	})
}

// Close blocks until every pending notification has been sent or failed.
func (r *Reporter) Close() {
	r.wg.Wait()
}

func (r *Reporter) dispatch(event string, send func(context.Context) error) {
	if !Enabled(r.svc) {
		return
	}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		if err := send(r.ctx); err != nil {
			logging.WarnWithContext(r.logger, "notification failed", "notify_failed",
				logging.String("notification", event),
				logging.Error(err),
				logging.String(logging.FieldImpact, "notification not delivered"),
				logging.String(logging.FieldErrorHint, "check notifications.ntfy_topic and network access"),
			)
		}
	}()
}
