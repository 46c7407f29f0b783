package storage

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/felixgeelhaar/compaudit/pkg/domain"
)

var _ domain.AuditRepository = (*FilesystemRepository)(nil)

// RecordEvent appends one line to the audit trail.
func (r *FilesystemRepository) RecordEvent(event domain.Event) error {
	path, err := r.ResolvePath(EventsFile)
	if err != nil {
		return err
	}
	if err := r.Initialize(); err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	data = append(data, '\n')

	// #nosec G304 -- Path is resolved and validated via ResolvePath
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open events file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	return nil
}

// LoadEvents reads the audit trail in append order. Malformed lines are
// skipped.
func (r *FilesystemRepository) LoadEvents() ([]domain.Event, error) {
	data, err := r.readFile(EventsFile)
	if err != nil {
		return nil, err
	}

	events := []domain.Event{}
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var e domain.Event
		if err := json.Unmarshal(line, &e); err != nil {
			continue
		}
		events = append(events, e)
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, bufio.ErrTooLong) {
		return nil, fmt.Errorf("failed to read events file: %w", err)
	}
	return events, nil
}
