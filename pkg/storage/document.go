package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/felixgeelhaar/compaudit/pkg/domain"
	"github.com/felixgeelhaar/compaudit/pkg/domain/document"
	"github.com/felixgeelhaar/fortify/retry"
)

// DocumentLoader reads document exports from disk. Reads are retried since
// design tools rewrite the export in place while the watcher is running.
type DocumentLoader struct {
	retryConfig retry.Config
}

func NewDocumentLoader() *DocumentLoader {
	return &DocumentLoader{
		retryConfig: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  50 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
			IsRetryable:   isTransientReadError,
		},
	}
}

// isTransientReadError reports whether a failed export read is worth another
// attempt. A missing file is not.
func isTransientReadError(err error) bool {
	return !errors.Is(err, os.ErrNotExist)
}

// Load validates and parses the export at path. Only the read is retried.
func (l *DocumentLoader) Load(ctx context.Context, path string) (*document.Document, error) {
	if path == "" {
		return nil, fmt.Errorf("no document export configured")
	}
	clean := filepath.Clean(path)

	retryer := retry.New[[]byte](l.retryConfig)
	data, err := retryer.Do(ctx, func(ctx context.Context) ([]byte, error) {
		// #nosec G304 -- The export path is chosen by the user
		return os.ReadFile(clean)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read document export: %w", err)
	}
	// Validation and parse errors do not change between attempts.
	return document.Load(data)
}

// DocumentIDFor derives the session id of an export: the document id when
// present, otherwise the file name without extension.
func DocumentIDFor(doc *document.Document, path string) (domain.DocumentID, error) {
	if doc != nil && strings.TrimSpace(doc.ID) != "" {
		if id, err := domain.SanitizeDocumentID(doc.ID); err == nil {
			return id, nil
		}
	}
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return domain.SanitizeDocumentID(base)
}

// ExportFile is a document export at a fixed path.
type ExportFile struct {
	Path   string
	loader *DocumentLoader
}

func NewExportFile(path string) *ExportFile {
	return &ExportFile{Path: path, loader: NewDocumentLoader()}
}

// Document loads the current content of the export.
func (f *ExportFile) Document(ctx context.Context) (*document.Document, error) {
	return f.loader.Load(ctx, f.Path)
}
