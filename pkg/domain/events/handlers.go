package events

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/compaudit/pkg/domain"
)

// ScanLogHandler writes every scan event to a structured logger.
type ScanLogHandler struct {
	logger *slog.Logger
}

// NewScanLogHandler creates a new ScanLogHandler.
func NewScanLogHandler(logger *slog.Logger) *ScanLogHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScanLogHandler{logger: logger}
}

// Handle logs the event at a level matching its outcome.
func (h *ScanLogHandler) Handle(ctx context.Context, event DomainEvent) error {
	switch e := event.(type) {
	case *ScanStarted:
		h.logger.InfoContext(ctx, "scan started", "kind", e.Kind, "scope", e.Scope, "pages", e.Pages)
	case *PageScanned:
		if e.Error != "" {
			h.logger.WarnContext(ctx, "page scan failed", "page", e.PageName, "error", e.Error)
			return nil
		}
		h.logger.DebugContext(ctx, "page scanned",
			"page", e.PageName,
			"index", e.Index+1,
			"total", e.Total,
			"components", e.ComponentCount)
	case *RecordsPublished:
		h.logger.DebugContext(ctx, "records published", "records", e.RecordCount, "findings", e.FindingCount)
	case *ScanCompleted:
		h.logger.InfoContext(ctx, "scan completed",
			"kind", e.Kind,
			"components", e.Components,
			"pages", e.Pages,
			"duration", e.Duration)
	case *ScanFailed:
		h.logger.ErrorContext(ctx, "scan failed", "kind", e.Kind, "reason", e.Reason)
	default:
		h.logger.DebugContext(ctx, "event", "type", event.EventType())
	}
	return nil
}

// Registration returns the HandlerRegistration for this handler.
func (h *ScanLogHandler) Registration() HandlerRegistration {
	return HandlerRegistration{
		Name:       "ScanLogHandler",
		Handler:    h.Handle,
		EventTypes: []string{"*"},
	}
}

// AuditTrailHandler appends scan outcomes and settings changes to the audit
// trail.
type AuditTrailHandler struct {
	audit domain.AuditLogger
	actor string
}

// NewAuditTrailHandler creates a handler recording as actor.
func NewAuditTrailHandler(audit domain.AuditLogger, actor string) *AuditTrailHandler {
	return &AuditTrailHandler{audit: audit, actor: actor}
}

// Handle records the event when it is auditable.
func (h *AuditTrailHandler) Handle(_ context.Context, event DomainEvent) error {
	if h.audit == nil {
		return nil
	}
	switch e := event.(type) {
	case *ScanCompleted:
		return h.audit.Log(EventTypeScanCompleted, h.actor, map[string]interface{}{
			"document_id": e.Document,
			"scan_id":     e.ScanID,
			"kind":        e.Kind,
			"scope":       e.Scope,
			"components":  e.Components,
			"pages":       e.Pages,
		})
	case *ScanFailed:
		return h.audit.Log(EventTypeScanFailed, h.actor, map[string]interface{}{
			"document_id": e.Document,
			"scan_id":     e.ScanID,
			"kind":        e.Kind,
			"reason":      e.Reason,
		})
	case *SettingsChanged:
		return h.audit.Log(EventTypeSettingsChanged, h.actor, map[string]interface{}{
			"document_id": e.Document,
			"keys":        e.Keys,
		})
	}
	return nil
}

// Registration returns the HandlerRegistration for this handler.
func (h *AuditTrailHandler) Registration() HandlerRegistration {
	return HandlerRegistration{
		Name:       "AuditTrailHandler",
		Handler:    h.Handle,
		EventTypes: []string{EventTypeScanCompleted, EventTypeScanFailed, EventTypeSettingsChanged},
	}
}
