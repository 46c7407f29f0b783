// Package events defines the scan events published while an audit runs and
// the dispatcher that fans them out to handlers.
package events

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is the base interface for all domain events.
type DomainEvent interface {
	EventType() string
	DocumentID() string
	OccurredAt() time.Time
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Document  string    `json:"document_id"`
	ScanID    string    `json:"scan_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewBaseEvent stamps a new event of type eventType.
func NewBaseEvent(eventType, documentID, scanID string) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Document:  documentID,
		ScanID:    scanID,
		Timestamp: time.Now().UTC(),
	}
}

func (e BaseEvent) EventType() string     { return e.Type }
func (e BaseEvent) DocumentID() string    { return e.Document }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

// ScanStarted is emitted when a scan enters the scanning state.
type ScanStarted struct {
	BaseEvent
	Kind  string `json:"kind"`
	Scope string `json:"scope,omitempty"`
	Pages int    `json:"pages"`
}

// PageScanned is emitted after each page of a deep scan, successful or not.
type PageScanned struct {
	BaseEvent
	PageName       string `json:"page_name"`
	Index          int    `json:"index"`
	Total          int    `json:"total"`
	Status         string `json:"status"`
	ComponentCount int    `json:"component_count"`
	Error          string `json:"error,omitempty"`
}

// RecordsPublished is emitted whenever the cumulative record set is stored.
type RecordsPublished struct {
	BaseEvent
	RecordCount  int `json:"record_count"`
	FindingCount int `json:"finding_count"`
}

// ScanCompleted is emitted when a scan finishes.
type ScanCompleted struct {
	BaseEvent
	Kind       string        `json:"kind"`
	Scope      string        `json:"scope,omitempty"`
	Components int           `json:"components"`
	Pages      int           `json:"pages"`
	Duration   time.Duration `json:"duration"`
}

// ScanFailed is emitted when a whole scan fails.
type ScanFailed struct {
	BaseEvent
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
}

// SettingsChanged is emitted when toggles change.
type SettingsChanged struct {
	BaseEvent
	Keys []string `json:"keys"`
}

// DocumentChanged is emitted when the watched export file changes.
type DocumentChanged struct {
	BaseEvent
	FilePath   string `json:"file_path"`
	ChangeType string `json:"change_type"` // "create", "write", "remove", "rename"
}

const (
	EventTypeScanStarted      = "scan.started"
	EventTypePageScanned      = "scan.page_scanned"
	EventTypeRecordsPublished = "scan.records_published"
	EventTypeScanCompleted    = "scan.completed"
	EventTypeScanFailed       = "scan.failed"
	EventTypeSettingsChanged  = "settings.changed"
	EventTypeDocumentChanged  = "document.changed"
)
