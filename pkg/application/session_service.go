package application

import (
	"fmt"

	"github.com/felixgeelhaar/compaudit/pkg/domain"
	"github.com/felixgeelhaar/compaudit/pkg/domain/audit"
	"github.com/felixgeelhaar/compaudit/pkg/domain/scan"
	"github.com/felixgeelhaar/compaudit/pkg/domain/settings"
)

// Status is a snapshot of the session.
type Status struct {
	Document    string                  `json:"document"`
	Info        domain.ScanInfo         `json:"scanInfo"`
	Progress    scan.Progress           `json:"progress"`
	Summary     *audit.QuickScanSummary `json:"summary,omitempty"`
	Records     int                     `json:"records"`
	Findings    int                     `json:"findings"`
	ScanErrors  int                     `json:"scanErrors"`
	Initialized bool                    `json:"initialized"`
}

type SessionService struct {
	repo  domain.SessionRepository
	audit domain.AuditLogger
}

func NewSessionService(repo domain.SessionRepository, audit domain.AuditLogger) *SessionService {
	return &SessionService{repo: repo, audit: audit}
}

func (s *SessionService) Status() (*Status, error) {
	st := &Status{Document: s.repo.Document().String(), Initialized: s.repo.IsInitialized()}

	var err error
	if st.Info, err = s.repo.LoadScanInfo(); err != nil {
		return nil, fmt.Errorf("load scan info: %w", err)
	}
	if st.Progress, err = s.repo.LoadProgress(); err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}
	if st.Summary, err = s.repo.LoadSummary(); err != nil {
		return nil, fmt.Errorf("load summary: %w", err)
	}
	records, err := s.repo.LoadRecords()
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	st.Records = len(records)
	st.Findings = audit.CountFindings(records)
	for _, r := range records {
		if r.ScanError != "" {
			st.ScanErrors++
		}
	}
	return st, nil
}

// Reset clears every session key and restores the default settings. The
// scan scope and the audit trail are kept.
func (s *SessionService) Reset(actor string) error {
	info, err := s.repo.LoadScanInfo()
	if err != nil {
		return fmt.Errorf("load scan info: %w", err)
	}
	if err := s.repo.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	if err := s.repo.SaveSettings(settings.Default()); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	if err := s.repo.SaveScanInfo(domain.ScanInfo{CurrentPageOnly: info.CurrentPageOnly}); err != nil {
		return fmt.Errorf("save scan info: %w", err)
	}
	if s.audit != nil {
		if err := s.audit.Log("session.reset", actor, map[string]interface{}{
			"document_id": s.repo.Document().String(),
		}); err != nil {
			return fmt.Errorf("write audit log: %w", err)
		}
	}
	return nil
}
