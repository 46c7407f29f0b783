package watch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/compaudit/pkg/application"
	"github.com/felixgeelhaar/compaudit/pkg/domain/events"
	"github.com/felixgeelhaar/compaudit/pkg/domain/scan"
)

// Rescanner reruns the last scan.
type Rescanner interface {
	Rescan(ctx context.Context) (*application.ScanResult, error)
}

// Rescan reruns the last scan whenever the export changes.
type Rescan struct {
	path       string
	documentID string
	scans      Rescanner
	publisher  events.Publisher
	debounce   time.Duration
	logger     *slog.Logger

	// OnResult is called after every rescan attempt.
	OnResult func(*application.ScanResult, error)
}

func NewRescan(path, documentID string, scans Rescanner, publisher events.Publisher, debounce time.Duration, logger *slog.Logger) *Rescan {
	if logger == nil {
		logger = slog.Default()
	}
	return &Rescan{
		path:       path,
		documentID: documentID,
		scans:      scans,
		publisher:  publisher,
		debounce:   debounce,
		logger:     logger,
	}
}

// Run blocks until ctx is cancelled.
func (r *Rescan) Run(ctx context.Context) error {
	w, err := NewFileWatcher(r.path, r.debounce, func(e ChangeEvent) {
		r.Handle(ctx, e)
	})
	if err != nil {
		return err
	}
	r.logger.Info("watching document export", "path", r.path)

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Handle publishes the change and reruns the last scan. Removals only
// publish; the next write brings the export back.
func (r *Rescan) Handle(ctx context.Context, e ChangeEvent) {
	if r.publisher != nil {
		ev := &events.DocumentChanged{
			BaseEvent:  events.NewBaseEvent(events.EventTypeDocumentChanged, r.documentID, ""),
			FilePath:   e.Path,
			ChangeType: e.ChangeType,
		}
		if err := r.publisher.Dispatch(ctx, ev); err != nil {
			r.logger.Warn("document change handler failed", "error", err)
		}
	}
	if e.ChangeType == "remove" || e.ChangeType == "rename" {
		r.logger.Warn("document export removed", "path", e.Path)
		return
	}

	res, err := r.scans.Rescan(ctx)
	switch {
	case errors.Is(err, application.ErrNothingToRescan):
		r.logger.Debug("no previous scan to rerun")
	case errors.Is(err, scan.ErrScanInProgress):
		r.logger.Info("scan in progress, change skipped")
	case err != nil:
		r.logger.Error("rescan failed", "error", err)
	default:
		r.logger.Info("rescanned", "kind", res.Kind, "components", len(res.Records))
	}
	if r.OnResult != nil {
		r.OnResult(res, err)
	}
}
