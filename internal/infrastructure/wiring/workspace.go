package wiring

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/felixgeelhaar/compaudit/internal/infrastructure/config"
	"github.com/felixgeelhaar/compaudit/pkg/application"
	"github.com/felixgeelhaar/compaudit/pkg/domain"
	"github.com/felixgeelhaar/compaudit/pkg/domain/events"
	"github.com/felixgeelhaar/compaudit/pkg/storage"
)

// Options tune how a workspace is opened.
type Options struct {
	// Document overrides the configured export path.
	Document string
	// Actor is recorded in the audit trail: "cli", "mcp" or "watch".
	Actor  string
	Logger *slog.Logger
}

// Workspace bundles core infrastructure dependencies.
type Workspace struct {
	Root       string
	Config     *config.Config
	Export     *storage.ExportFile
	DocumentID domain.DocumentID
	Repo       *storage.FilesystemRepository
	Audit      *application.AuditService
	Dispatcher *events.EventDispatcher
	Logger     *slog.Logger
}

// NewWorkspace opens the session of the configured document export. The
// session id comes from the export when it parses, otherwise from its file
// name.
func NewWorkspace(ctx context.Context, root string, opts Options) (*Workspace, error) {
	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	if opts.Document != "" {
		cfg.Document = opts.Document
	}
	path := cfg.DocumentPath(root)
	if path == "" {
		return nil, fmt.Errorf("no document export configured: pass --document or set %s", config.DocumentEnv)
	}

	logger := opts.Logger
	if logger == nil {
		logger = NewLogger(os.Stderr, cfg.LogLevel)
	}

	export := storage.NewExportFile(path)
	doc, loadErr := export.Document(ctx)
	if loadErr != nil {
		logger.Debug("document export not loaded", "path", path, "error", loadErr)
		doc = nil
	}
	id, err := storage.DocumentIDFor(doc, path)
	if err != nil {
		return nil, fmt.Errorf("derive document id: %w", err)
	}

	repo := storage.NewFilesystemRepository(root, id)
	auditSvc := application.NewAuditService(repo)

	actor := opts.Actor
	if actor == "" {
		actor = "cli"
	}
	dispatcher := events.NewEventDispatcher()
	dispatcher.Register(events.NewScanLogHandler(logger).Registration())
	dispatcher.Register(events.NewAuditTrailHandler(auditSvc, actor).Registration())

	return &Workspace{
		Root:       root,
		Config:     cfg,
		Export:     export,
		DocumentID: id,
		Repo:       repo,
		Audit:      auditSvc,
		Dispatcher: dispatcher,
		Logger:     logger,
	}, nil
}

// NewLogger builds a text logger at the named level; unknown names mean info.
func NewLogger(w io.Writer, level string) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		l = slog.LevelDebug
	case "warn", "warning":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l}))
}
