package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/compaudit/pkg/domain/audit"
	"github.com/felixgeelhaar/compaudit/pkg/domain/binding"
	"github.com/felixgeelhaar/compaudit/pkg/domain/document"
)

// NavigationFailedMessage is the notification shown when a node cannot be
// located.
const NavigationFailedMessage = "Could not navigate to node"

var ErrNodeNotFound = errors.New("could not navigate to node")

// Location is where a node lives in the document.
type Location struct {
	NodeID   string `json:"nodeId"`
	Name     string `json:"name"`
	PageName string `json:"pageName"`
	Path     string `json:"path"`
	Message  string `json:"message"`
}

type NavigationService struct {
	docs DocumentSource
}

func NewNavigationService(docs DocumentSource) *NavigationService {
	return &NavigationService{docs: docs}
}

// Locate resolves nodeID, or componentID when nodeID is empty.
func (s *NavigationService) Locate(ctx context.Context, componentID, nodeID string) (*Location, error) {
	target := strings.TrimSpace(nodeID)
	if target == "" {
		target = strings.TrimSpace(componentID)
	}
	if target == "" {
		return nil, ErrNodeNotFound
	}

	doc, err := s.docs.Document(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNodeNotFound, err)
	}
	node, page := doc.FindNode(target)
	if node == nil {
		return nil, ErrNodeNotFound
	}

	loc := &Location{
		NodeID:   node.ID,
		Name:     node.DisplayName(),
		PageName: audit.PageName(page.Name),
		Path:     pathOf(node),
	}
	loc.Message = fmt.Sprintf("%s • %s > %s", loc.Name, loc.PageName, loc.Path)
	return loc, nil
}

func pathOf(n *document.Node) string {
	var names []string
	for cur := n; cur != nil; cur = cur.Parent {
		names = append([]string{cur.DisplayName()}, names...)
	}
	return strings.Join(names, binding.PathSeparator)
}
