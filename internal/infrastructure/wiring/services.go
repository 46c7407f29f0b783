package wiring

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/compaudit/internal/infrastructure/watch"
	"github.com/felixgeelhaar/compaudit/pkg/application"
)

// AppServices exposes the application layer services wired together with a workspace.
type AppServices struct {
	Workspace  *Workspace
	Scan       *application.ScanService
	Settings   *application.SettingsService
	View       *application.ViewService
	Navigation *application.NavigationService
	Report     *application.ReportService
	Session    *application.SessionService
	Audit      *application.AuditService
}

// BuildAppServices opens the workspace under root and wires every service
// onto its session store and event dispatcher.
func BuildAppServices(ctx context.Context, root string, opts Options) (*AppServices, error) {
	ws, err := NewWorkspace(ctx, root, opts)
	if err != nil {
		return nil, err
	}

	scanSvc, err := application.NewScanService(ws.Repo, ws.Export, ws.Dispatcher, ws.Config.ScanOptions(), ws.Logger)
	if err != nil {
		return nil, fmt.Errorf("create scan service: %w", err)
	}

	return &AppServices{
		Workspace:  ws,
		Scan:       scanSvc,
		Settings:   application.NewSettingsService(ws.Repo, ws.Dispatcher),
		View:       application.NewViewService(ws.Repo),
		Navigation: application.NewNavigationService(ws.Export),
		Report:     application.NewReportService(ws.Repo, ws.Repo),
		Session:    application.NewSessionService(ws.Repo, ws.Audit),
		Audit:      ws.Audit,
	}, nil
}

// NewRescan wires a watcher that reruns the last scan of the workspace.
func (s *AppServices) NewRescan() *watch.Rescan {
	ws := s.Workspace
	return watch.NewRescan(ws.Export.Path, ws.DocumentID.String(), s.Scan, ws.Dispatcher, ws.Config.WatchDebounce, ws.Logger)
}
