package domain

import (
	"github.com/felixgeelhaar/compaudit/pkg/domain/audit"
	"github.com/felixgeelhaar/compaudit/pkg/domain/scan"
	"github.com/felixgeelhaar/compaudit/pkg/domain/settings"
	"github.com/felixgeelhaar/compaudit/pkg/domain/view"
)

// SessionRepository is the per-document key-value store of an audit session.
// Every piece of session state is read and written through it.
type SessionRepository interface {
	// Document returns the document the session belongs to.
	Document() DocumentID
	Initialize() error
	IsInitialized() bool
	SaveRecords(records []audit.Record) error
	LoadRecords() ([]audit.Record, error)
	// SaveSummary stores the quick scan snapshot; nil removes it.
	SaveSummary(summary *audit.QuickScanSummary) error
	LoadSummary() (*audit.QuickScanSummary, error)
	SaveSettings(s settings.Settings) error
	LoadSettings() (settings.Settings, error)
	SaveProgress(p scan.Progress) error
	LoadProgress() (scan.Progress, error)
	SaveViewState(st view.State) error
	LoadViewState() (view.State, error)
	SaveScanInfo(info ScanInfo) error
	LoadScanInfo() (ScanInfo, error)
	// Clear removes every session key. The audit trail is kept.
	Clear() error
	RecordEvent(event Event) error
	LoadEvents() ([]Event, error)
}

// ScanInfo is the bookkeeping of the last scan.
type ScanInfo struct {
	LastScanTime    string     `json:"lastScanTime"`
	CurrentPageOnly bool       `json:"currentPageOnly"`
	LastKind        scan.Kind  `json:"lastKind,omitempty"`
	LastScope       scan.Scope `json:"lastScope,omitempty"`
	State           string     `json:"scanState,omitempty"`
}
