package notification

import (
	"context"
	"time"

	notifDomain "contentops-workflow/internal/domain/notification"
	"contentops-workflow/internal/domain/tenant"
	"contentops-workflow/internal/logging"

	"github.com/rs/zerolog"
)

type WorkerOptions struct {
	Interval   time.Duration
	BatchSize  int
	StaleAfter time.Duration
}

// Worker drains the outbox: rows left PENDING by a crash between commit and
// delivery, and PROCESSING rows whose deliverer died.
type Worker struct {
	outbox notifDomain.OutboxRepository
	d      *Dispatcher
	opts   WorkerOptions
	log    zerolog.Logger
}

func NewWorker(outbox notifDomain.OutboxRepository, d *Dispatcher, opts WorkerOptions) *Worker {
	if opts.Interval <= 0 {
		opts.Interval = 15 * time.Second
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 50
	}
	return &Worker{outbox: outbox, d: d, opts: opts, log: logging.Component("outbox-worker")}
}

// Run polls until ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.opts.Interval)
	defer ticker.Stop()

	w.log.Info().Dur("interval", w.opts.Interval).Int("batch", w.opts.BatchSize).Msg("outbox worker started")
	for {
		if _, err := w.RunOnce(ctx); err != nil && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("outbox pass failed")
		}
		select {
		case <-ctx.Done():
			w.log.Info().Msg("outbox worker stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// RunOnce reclaims stale claims and delivers one batch; it returns the number of rows attempted.
func (w *Worker) RunOnce(ctx context.Context) (int, error) {
	if w.opts.StaleAfter > 0 {
		n, err := w.outbox.ReclaimStale(ctx, w.d.now().Add(-w.opts.StaleAfter))
		if err != nil {
			return 0, err
		}
		if n > 0 {
			w.log.Warn().Int64("count", n).Msg("reclaimed stale notifications")
		}
	}

	rows, err := w.outbox.ListPending(ctx, w.opts.BatchSize)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	byWorkspace := map[string][]string{}
	var order []string
	for _, n := range rows {
		if _, ok := byWorkspace[n.WorkspaceID]; !ok {
			order = append(order, n.WorkspaceID)
		}
		byWorkspace[n.WorkspaceID] = append(byWorkspace[n.WorkspaceID], n.ID)
	}
	for _, ws := range order {
		w.d.Deliver(ctx, tenant.System(ws), byWorkspace[ws]...)
	}
	w.log.Debug().Int("count", len(rows)).Msg("outbox batch delivered")
	return len(rows), nil
}
