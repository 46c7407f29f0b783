package document_test

import (
	"errors"
	"testing"

	"github.com/felixgeelhaar/compaudit/pkg/domain/document"
)

const sampleExport = `{
  "id": "doc-1",
  "name": "Design System",
  "currentPage": "p2",
  "pages": [
    {"id": "p1", "name": "Cover", "children": []},
    {"id": "p2", "name": "Icons", "children": [
      {"id": "s1", "name": "Button", "type": "COMPONENT_SET", "description": "Buttons",
       "children": [
        {"id": "c1", "name": "Size=Large, State=Hover", "type": "COMPONENT",
         "fills": [{"type": "SOLID", "color": {"r": 1, "g": 0, "b": 0}}],
         "fillStyleId": "",
         "strokes": [{"type": "SOLID", "visible": false, "color": {"r": 0, "g": 0, "b": 0}}],
         "strokeWeight": "mixed", "strokeTopWeight": 1, "strokeLeftWeight": 2,
         "cornerRadius": "mixed", "topLeftRadius": 4, "topRightRadius": 0,
         "layoutMode": "HORIZONTAL", "primaryAxisAlignItems": "SPACE_BETWEEN", "itemSpacing": 8,
         "paddingTop": 4,
         "opacity": 0.5,
         "boundVariables": {
           "fills": [{"type": "VARIABLE_ALIAS", "id": "v1"}],
           "opacity": {"type": "VARIABLE_ALIAS", "id": "v2"}
         },
         "children": [
           {"id": "t1", "name": "Label", "type": "TEXT",
            "fontName": {"family": "Inter", "style": "Bold"}, "fontSize": "mixed",
            "lineHeight": {"unit": "AUTO"}}
         ]}
       ]}
    ]}
  ]
}`

func TestParse(t *testing.T) {
	doc, err := document.Load([]byte(sampleExport))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if len(doc.Pages) != 2 {
		t.Fatalf("expected 2 pages, got %d", len(doc.Pages))
	}
	if doc.CurrentPage().Name != "Icons" {
		t.Errorf("expected current page Icons, got %s", doc.CurrentPage().Name)
	}

	comps := doc.Pages[1].Components()
	if len(comps) != 1 {
		t.Fatalf("expected 1 component, got %d", len(comps))
	}
	c := comps[0]
	if set := c.ComponentSet(); set == nil || set.ID != "s1" {
		t.Fatalf("expected variant of s1, got %+v", set)
	}

	if c.Fills == nil || len(c.Fills.Items) != 1 || c.Fills.Items[0].Type != document.PaintSolid {
		t.Fatalf("unexpected fills: %+v", c.Fills)
	}
	if !c.Bound.IsBoundAt("fills", 0) {
		t.Error("expected fill 0 to be bound")
	}
	if !c.Bound.IsBound("opacity") {
		t.Error("expected opacity to be bound")
	}

	if c.Strokes == nil || c.Strokes.VisibleCount() != 0 {
		t.Errorf("expected one hidden stroke, got %+v", c.Strokes)
	}
	if w := c.Strokes.Weight; w == nil || !w.Mixed || w.Uniform != nil || *w.Left != 2 || w.Right != nil {
		t.Errorf("unexpected stroke weight: %+v", w)
	}

	if c.Corners == nil || !c.Corners.Independent || !c.Corners.Mixed || *c.Corners.TopRight != 0 {
		t.Errorf("unexpected corners: %+v", c.Corners)
	}

	if c.Layout == nil || c.Layout.PrimaryAxisAlign != document.AlignSpaceBetween || *c.Layout.ItemSpacing != 8 {
		t.Errorf("unexpected layout: %+v", c.Layout)
	}
	if c.Layout.PaddingRight != nil {
		t.Error("absent padding must stay nil")
	}

	label := c.Children[0]
	if label.Parent != c {
		t.Error("expected parent pointer to be linked")
	}
	if label.Text == nil || label.Text.FontFamily != "Inter" || label.Text.FontSize != nil || !label.Text.FontSizeMixed {
		t.Errorf("unexpected text facet: %+v", label.Text)
	}
	if label.Text.LineHeight == nil || label.Text.LineHeight.Unit != document.LineHeightAuto {
		t.Errorf("expected auto line height, got %+v", label.Text.LineHeight)
	}
	if label.Layout != nil || label.Fills != nil {
		t.Error("text node without those keys must not expose layout or fills")
	}
}

func TestValidate_RejectsMalformedExport(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"missing pages", `{"id": "doc"}`},
		{"page without children", `{"pages": [{"id": "p"}]}`},
		{"page child not an object", `{"pages": [{"id": "p", "children": [5]}]}`},
		{"pages not array", `{"pages": {}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := document.Validate([]byte(tt.data))
			var vErr *document.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if len(vErr.Issues) == 0 {
				t.Error("expected at least one issue")
			}
		})
	}
}

func TestParse_MalformedFacetsStayOnTheirNode(t *testing.T) {
	const export = `{"pages": [{"id": "p", "name": "Mixed bag", "children": [
	  {"id": "a", "type": "COMPONENT", "fills": [{"type": "SOLID", "color": "red"}]},
	  {"id": "b", "type": "COMPONENT", "documentationLinks": "https://docs"},
	  {"id": "c", "type": "TEXT", "lineHeight": {"unit": 5, "value": "x"}, "fontName": "Inter"},
	  {"id": "d", "type": "RECTANGLE", "effects": [{"type": "DROP_SHADOW", "offset": [1, 2]}]},
	  {"id": "e", "type": "COMPONENT", "boundVariables": {"fills": [7]}},
	  {"id": "f", "name": "Untyped"},
	  {"id": "g", "type": "FRAME", "children": [5, {"id": "g1", "type": "RECTANGLE"}]},
	  {"id": "ok", "type": "COMPONENT", "fills": [{"type": "SOLID", "color": {"r": 0, "g": 0, "b": 1}}]}
	]}]}`

	doc, err := document.Load([]byte(export))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	nodes := doc.Pages[0].Children
	if len(nodes) != 8 {
		t.Fatalf("expected every node to be ingested, got %d", len(nodes))
	}
	for _, n := range nodes[:7] {
		if n.ParseErr == nil {
			t.Errorf("node %s: expected a parse error", n.ID)
		}
	}
	if g := nodes[6]; len(g.Children) != 1 || g.Children[0].ID != "g1" {
		t.Errorf("well-formed children must survive a bad sibling: %+v", g.Children)
	}
	ok := nodes[7]
	if ok.ParseErr != nil || ok.Fills == nil || ok.Fills.Items[0].Color == nil {
		t.Errorf("healthy node must parse: err=%v fills=%+v", ok.ParseErr, ok.Fills)
	}
}

func TestBoundVariables(t *testing.T) {
	var b document.BoundVariables
	b.Bind("strokeWeight", "v1").BindAt("fills", 1, "v2")

	if !b.IsBound("strokeWeight") {
		t.Error("expected strokeWeight bound")
	}
	if b.IsBoundAt("fills", 0) {
		t.Error("fill 0 must be unbound")
	}
	if !b.IsBoundAt("fills", 1) {
		t.Error("fill 1 must be bound")
	}
	if b.IsBound("fills") {
		t.Error("a list with an unbound entry must not count as bound")
	}
	if b.IsBoundAt("strokes", 3) {
		t.Error("out-of-range index must be unbound")
	}

	other := document.BoundVariables{Slots: map[string]document.VariableAlias{
		"gap": {Type: "EXPRESSION", ID: "x"},
	}}
	if other.IsBound("gap") {
		t.Error("non-alias binding must not count as bound")
	}
}

func TestDisplayName(t *testing.T) {
	n := &document.Node{Name: "  ", Type: document.TypeFrame}
	if got := n.DisplayName(); got != "FRAME" {
		t.Errorf("expected type fallback, got %q", got)
	}
	n.Name = " Card "
	if got := n.DisplayName(); got != "Card" {
		t.Errorf("expected trimmed name, got %q", got)
	}
}
