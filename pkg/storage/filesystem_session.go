package storage

import (
	"errors"
	"fmt"
	"os"

	"github.com/felixgeelhaar/compaudit/pkg/domain"
	"github.com/felixgeelhaar/compaudit/pkg/domain/audit"
	"github.com/felixgeelhaar/compaudit/pkg/domain/scan"
	"github.com/felixgeelhaar/compaudit/pkg/domain/settings"
	"github.com/felixgeelhaar/compaudit/pkg/domain/view"
	"gopkg.in/yaml.v3"
)

var _ domain.SessionRepository = (*FilesystemRepository)(nil)

func (r *FilesystemRepository) SaveRecords(records []audit.Record) error {
	if records == nil {
		records = []audit.Record{}
	}
	return r.writeJSON(AuditDataFile, records)
}

func (r *FilesystemRepository) LoadRecords() ([]audit.Record, error) {
	records := []audit.Record{}
	if _, err := r.readJSON(AuditDataFile, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *FilesystemRepository) SaveSummary(summary *audit.QuickScanSummary) error {
	if summary == nil {
		path, err := r.ResolvePath(QuickScanFile)
		if err != nil {
			return err
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove quick scan data: %w", err)
		}
		return nil
	}
	return r.writeJSON(QuickScanFile, summary)
}

func (r *FilesystemRepository) LoadSummary() (*audit.QuickScanSummary, error) {
	var summary audit.QuickScanSummary
	found, err := r.readJSON(QuickScanFile, &summary)
	if err != nil || !found {
		return nil, err
	}
	return &summary, nil
}

// SaveSettings writes the toggles as YAML so they can be edited by hand.
func (r *FilesystemRepository) SaveSettings(s settings.Settings) error {
	data, err := yaml.Marshal(settings.Normalize(s))
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	_, err = r.WriteFile(SettingsFile, data)
	return err
}

// LoadSettings returns the stored toggles merged over the defaults.
func (r *FilesystemRepository) LoadSettings() (settings.Settings, error) {
	data, err := r.readFile(SettingsFile)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return settings.Default(), nil
	}

	var stored settings.Settings
	if err := yaml.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	return settings.Normalize(stored), nil
}

func (r *FilesystemRepository) SaveProgress(p scan.Progress) error {
	return r.writeJSON(ProgressFile, p)
}

func (r *FilesystemRepository) LoadProgress() (scan.Progress, error) {
	var p scan.Progress
	if _, err := r.readJSON(ProgressFile, &p); err != nil {
		return scan.Progress{}, err
	}
	return p, nil
}

func (r *FilesystemRepository) SaveViewState(st view.State) error {
	return r.writeJSON(ViewStateFile, st)
}

func (r *FilesystemRepository) LoadViewState() (view.State, error) {
	var st view.State
	if _, err := r.readJSON(ViewStateFile, &st); err != nil {
		return view.State{}, err
	}
	return st, nil
}

func (r *FilesystemRepository) SaveScanInfo(info domain.ScanInfo) error {
	return r.writeJSON(ScanInfoFile, info)
}

// LoadScanInfo defaults to the current-page scope when nothing was scanned.
func (r *FilesystemRepository) LoadScanInfo() (domain.ScanInfo, error) {
	info := domain.ScanInfo{CurrentPageOnly: true}
	if _, err := r.readJSON(ScanInfoFile, &info); err != nil {
		return domain.ScanInfo{}, err
	}
	return info, nil
}
