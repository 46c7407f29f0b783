package binding

import (
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/compaudit/pkg/domain/document"
)

// PathSeparator joins node names in a finding's location path.
const PathSeparator = " > "

// Walker collects findings over a component subtree.
type Walker struct {
	logger *slog.Logger
}

// NewWalker creates a walker. A nil logger falls back to slog.Default().
func NewWalker(logger *slog.Logger) *Walker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Walker{logger: logger}
}

// Walk visits root and its descendants in pre-order and returns every
// hardcoded value found. Any failure inside the subtree abandons the whole
// component: the result carries the reason and no findings.
func (w *Walker) Walk(root *document.Node) (res Result) {
	if root == nil {
		return Ok(nil)
	}
	defer func() {
		if r := recover(); r != nil {
			res = Failed(fmt.Errorf("node walk panicked: %v", r))
			w.logger.Error("component scan failed", "component", root.ID, "error", res.Err)
		}
	}()

	var findings []Finding
	if err := w.visit(root, root.DisplayName(), &findings); err != nil {
		w.logger.Error("component scan failed", "component", root.ID, "error", err)
		return Failed(err)
	}
	return Ok(findings)
}

func (w *Walker) visit(n *document.Node, path string, out *[]Finding) error {
	if n.ParseErr != nil {
		return fmt.Errorf("node %s (%s): %w", n.ID, path, n.ParseErr)
	}
	emit := func(kind Kind, property, value string) {
		*out = append(*out, Finding{
			Kind:     kind,
			Property: property,
			Value:    value,
			Path:     path,
			NodeID:   n.ID,
		})
	}
	for _, check := range rules {
		if err := check(n, emit); err != nil {
			return fmt.Errorf("node %s (%s): %w", n.ID, path, err)
		}
	}

	for _, child := range n.Children {
		if child == nil {
			continue
		}
		if err := w.visit(child, path+PathSeparator+child.DisplayName(), out); err != nil {
			return err
		}
	}
	return nil
}
