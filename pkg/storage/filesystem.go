package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/felixgeelhaar/compaudit/pkg/domain"
	"github.com/felixgeelhaar/fortify/retry"
)

const AuditDir = ".compaudit"

// Session keys, one file each.
const (
	AuditDataFile    = "auditData.json"
	QuickScanFile    = "quickScanData.json"
	SettingsFile     = "settings.yaml"
	ProgressFile     = "progress.json"
	ViewStateFile    = "viewState.json"
	ScanInfoFile     = "scanInfo.json"
	EventsFile       = "events.jsonl"
	sessionFileCount = 6
)

var sessionFiles = [sessionFileCount]string{
	AuditDataFile, QuickScanFile, SettingsFile, ProgressFile, ViewStateFile, ScanInfoFile,
}

// FilesystemRepository stores the session of one document under
// <root>/.compaudit/<document-id>/.
type FilesystemRepository struct {
	root        string
	document    domain.DocumentID
	retryConfig retry.Config
}

func NewFilesystemRepository(root string, document domain.DocumentID) *FilesystemRepository {
	return &FilesystemRepository{
		root:     root,
		document: document,
		retryConfig: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  10 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
}

// Root returns the workspace root directory.
func (r *FilesystemRepository) Root() string {
	return r.root
}

// Document returns the document the session belongs to.
func (r *FilesystemRepository) Document() domain.DocumentID {
	return r.document
}

// Dir returns the session directory.
func (r *FilesystemRepository) Dir() string {
	return filepath.Join(r.root, AuditDir, r.document.String())
}

// ResolvePath ensures the path is a direct child of the session directory.
func (r *FilesystemRepository) ResolvePath(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename cannot be empty")
	}
	if r.document.IsZero() {
		return "", fmt.Errorf("no document selected")
	}

	baseDir := r.Dir()
	cleanPath := filepath.Clean(filepath.Join(baseDir, filename))
	if !strings.HasPrefix(cleanPath, baseDir) || filepath.Dir(cleanPath) != baseDir {
		return "", fmt.Errorf("invalid file path: %s", filename)
	}
	return cleanPath, nil
}

func (r *FilesystemRepository) Initialize() error {
	if r.document.IsZero() {
		return fmt.Errorf("no document selected")
	}
	// G301: Use 0700 for directories
	if err := os.MkdirAll(r.Dir(), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	return nil
}

func (r *FilesystemRepository) IsInitialized() bool {
	_, err := os.Stat(r.Dir())
	return err == nil
}

// Clear removes every session key. The audit trail is kept.
func (r *FilesystemRepository) Clear() error {
	for _, name := range sessionFiles {
		path, err := r.ResolvePath(name)
		if err != nil {
			return err
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to remove %s: %w", name, err)
		}
	}
	return nil
}

// WriteFile writes an artifact such as a rendered report into the session
// directory and returns its path.
func (r *FilesystemRepository) WriteFile(name string, data []byte) (string, error) {
	path, err := r.ResolvePath(name)
	if err != nil {
		return "", err
	}
	if err := r.Initialize(); err != nil {
		return "", err
	}
	if err := writeAtomic(path, data); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	return path, nil
}

// writeAtomic replaces path with data through a temp file in the same
// directory, so readers see either the old or the new content.
func writeAtomic(path string, data []byte) error {
	// CreateTemp uses 0600.
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

func (r *FilesystemRepository) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	_, err = r.WriteFile(name, data)
	return err
}

// readFile reads a session key with retries. A missing key yields nil data.
func (r *FilesystemRepository) readFile(name string) ([]byte, error) {
	retryer := retry.New[[]byte](r.retryConfig)

	return retryer.Do(context.Background(), func(ctx context.Context) ([]byte, error) {
		path, err := r.ResolvePath(name)
		if err != nil {
			return nil, err
		}

		// #nosec G304 -- Path is resolved and validated via ResolvePath
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, nil
			}
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		return data, nil
	})
}

// readJSON decodes a session key into v and reports whether the key existed.
func (r *FilesystemRepository) readJSON(name string, v any) (bool, error) {
	data, err := r.readFile(name)
	if err != nil || data == nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", name, err)
	}
	return true, nil
}
