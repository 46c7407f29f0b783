package binding_test

import (
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/felixgeelhaar/compaudit/pkg/domain/binding"
	"github.com/felixgeelhaar/compaudit/pkg/domain/document"
)

func f(v float64) *float64 { return &v }

func hidden() *bool { b := false; return &b }

func red() *document.Color { return &document.Color{R: 1} }

func quietWalker() *binding.Walker {
	return binding.NewWalker(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func properties(findings []binding.Finding) []string {
	out := make([]string, 0, len(findings))
	for _, fd := range findings {
		out = append(out, fd.Property+"="+fd.Value)
	}
	return out
}

func TestWalk_OpacityAlwaysReported(t *testing.T) {
	n := &document.Node{ID: "c", Name: "Card", Type: document.TypeComponent, Opacity: f(1)}

	res := quietWalker().Walk(n)
	if res.Failed() {
		t.Fatalf("unexpected failure: %v", res.Err)
	}
	if len(res.Findings) != 1 {
		t.Fatalf("expected 1 finding, got %v", properties(res.Findings))
	}
	got := res.Findings[0]
	if got.Kind != binding.KindAppearance || got.Value != "100%" || got.Property != "Opacity" {
		t.Errorf("unexpected finding: %+v", got)
	}
}

func TestWalk_SpaceBetweenSuppressesSpacing(t *testing.T) {
	n := &document.Node{
		ID: "c", Name: "Row", Type: document.TypeFrame,
		Layout: &document.Layout{
			Mode:             document.LayoutHorizontal,
			PrimaryAxisAlign: document.AlignSpaceBetween,
			ItemSpacing:      f(16),
			PaddingTop:       f(8),
		},
	}

	res := quietWalker().Walk(n)
	for _, fd := range res.Findings {
		if fd.Kind == binding.KindSpacing {
			t.Errorf("unexpected spacing finding %+v", fd)
		}
	}

	n.Layout.PrimaryAxisAlign = "MIN"
	res = quietWalker().Walk(n)
	want := []string{"Item Spacing=16px", "Padding Top=8px"}
	if got := properties(res.Findings); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestWalk_SpacingOnlyForAutoLayoutContainers(t *testing.T) {
	n := &document.Node{
		ID: "g", Name: "Group", Type: document.TypeInstance,
		Layout: &document.Layout{Mode: document.LayoutVertical, ItemSpacing: f(4)},
	}
	if res := quietWalker().Walk(n); len(res.Findings) != 0 {
		t.Errorf("expected no findings on instance, got %v", properties(res.Findings))
	}

	n.Type = document.TypeFrame
	n.Layout.Mode = document.LayoutNone
	if res := quietWalker().Walk(n); len(res.Findings) != 0 {
		t.Errorf("expected no findings without auto layout, got %v", properties(res.Findings))
	}
}

func fullyBound() *document.Node {
	n := &document.Node{
		ID: "c", Name: "Button", Type: document.TypeComponent,
		Fills:   &document.Paints{Items: []document.Paint{{Type: document.PaintSolid, Color: red()}}},
		Strokes: &document.Strokes{Items: []document.Paint{{Type: document.PaintSolid, Color: red()}}, StyleID: "S:stroke", Weight: &document.StrokeWeight{Uniform: f(1)}},
		Corners: &document.Corners{Radius: f(4)},
		Layout:  &document.Layout{Mode: document.LayoutHorizontal, ItemSpacing: f(8), PaddingLeft: f(12)},
		Effects: &document.Effects{StyleID: "S:shadow", Items: []document.Effect{{Type: document.EffectDropShadow, Color: red()}}},
		Opacity: f(0.5),
	}
	n.Bound.BindAt(binding.SlotFills, 0, "v-fill").
		Bind(binding.SlotStrokeWeight, "v-weight").
		Bind(binding.SlotCornerRadius, "v-radius").
		Bind(binding.SlotItemSpacing, "v-gap").
		Bind(binding.SlotPaddingLeft, "v-pad").
		Bind(binding.SlotOpacity, "v-opacity")

	label := &document.Node{
		ID: "t", Name: "Label", Type: document.TypeText, Parent: n,
		Text: &document.Text{StyleID: "S:body", FontFamily: "Inter", FontSize: f(14),
			LineHeight: &document.LineHeight{Unit: document.LineHeightPixels, Value: f(20)}},
	}
	n.Children = []*document.Node{label}
	return n
}

func TestWalk_FullyBoundComponentHasNoFindings(t *testing.T) {
	res := quietWalker().Walk(fullyBound())
	if res.Failed() {
		t.Fatalf("unexpected failure: %v", res.Err)
	}
	if res.HasUnbound() {
		t.Errorf("expected no findings, got %v", properties(res.Findings))
	}
}

func TestWalk_Idempotent(t *testing.T) {
	n := fullyBound()
	n.Bound = document.BoundVariables{}
	n.Children[0].Text.StyleID = ""

	w := quietWalker()
	first := w.Walk(n)
	second := w.Walk(n)
	if len(first.Findings) == 0 {
		t.Fatal("expected findings on unbound component")
	}
	if !reflect.DeepEqual(first.Findings, second.Findings) {
		t.Errorf("repeated walks differ:\n%v\n%v", first.Findings, second.Findings)
	}
}

func TestWalk_OrderAndPaths(t *testing.T) {
	n := fullyBound()
	n.Bound = document.BoundVariables{}
	n.Children[0].Text.StyleID = ""

	res := quietWalker().Walk(n)
	want := []string{
		"Fill=rgb(255, 0, 0)",
		"Stroke Weight=1px",
		"All Corners=4px",
		"Item Spacing=8px",
		"Padding Left=12px",
		"Opacity=50%",
		"Font Family=Inter",
		"Font Size=14px",
		"Line Height=20px",
	}
	if got := properties(res.Findings); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if res.Findings[0].Path != "Button" || res.Findings[0].NodeID != "c" {
		t.Errorf("unexpected root finding location: %+v", res.Findings[0])
	}
	if last := res.Findings[len(res.Findings)-1]; last.Path != "Button > Label" || last.NodeID != "t" {
		t.Errorf("unexpected child finding location: %+v", last)
	}
}

func TestStrokeWeight(t *testing.T) {
	tests := []struct {
		name  string
		setup func(n *document.Node)
		want  []string
	}{
		{
			name:  "uniform unbound",
			setup: func(n *document.Node) {},
			want:  []string{"Stroke Weight=2px"},
		},
		{
			name: "uniform bound directly",
			setup: func(n *document.Node) {
				n.Bound.Bind(binding.SlotStrokeWeight, "v")
			},
			want: []string{},
		},
		{
			name: "uniform bound through all four sides",
			setup: func(n *document.Node) {
				n.Bound.Bind(binding.SlotStrokeTopWeight, "v").
					Bind(binding.SlotStrokeRightWeight, "v").
					Bind(binding.SlotStrokeBottomWeight, "v").
					Bind(binding.SlotStrokeLeftWeight, "v")
			},
			want: []string{},
		},
		{
			name: "uniform with three sides bound",
			setup: func(n *document.Node) {
				n.Bound.Bind(binding.SlotStrokeTopWeight, "v").
					Bind(binding.SlotStrokeRightWeight, "v").
					Bind(binding.SlotStrokeBottomWeight, "v")
			},
			want: []string{"Stroke Weight=2px"},
		},
		{
			name: "mixed sides evaluated independently",
			setup: func(n *document.Node) {
				n.Strokes.Weight = &document.StrokeWeight{Mixed: true, Top: f(1), Left: f(3)}
				n.Bound.Bind(binding.SlotStrokeTopWeight, "v")
			},
			want: []string{"Stroke Left Weight=3px"},
		},
		{
			name: "hidden strokes skip weight",
			setup: func(n *document.Node) {
				n.Strokes.Items[0].Visible = hidden()
			},
			want: []string{},
		},
		{
			name: "stroke style does not cover weight",
			setup: func(n *document.Node) {
				n.Strokes.StyleID = "S:border"
			},
			want: []string{"Stroke Weight=2px"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &document.Node{
				ID: "c", Name: "Box", Type: document.TypeRectangle,
				Strokes: &document.Strokes{
					Items:  []document.Paint{{Type: document.PaintSolid, Color: red()}},
					Weight: &document.StrokeWeight{Uniform: f(2)},
				},
			}
			n.Bound.BindAt(binding.SlotStrokes, 0, "v-color")
			tt.setup(n)

			got := properties(quietWalker().Walk(n).Findings)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestStrokeColors(t *testing.T) {
	n := &document.Node{
		ID: "c", Name: "Box", Type: document.TypeRectangle,
		Strokes: &document.Strokes{Items: []document.Paint{
			{Type: document.PaintSolid, Color: red()},
			{Type: document.PaintSolid, Color: &document.Color{B: 1}, Visible: hidden()},
			{Type: document.PaintGradientLinear},
			{Type: document.PaintSolid, Color: &document.Color{G: 1}},
		}},
	}

	want := []string{"Stroke 1 Color=rgb(255, 0, 0)", "Stroke 4 Color=rgb(0, 255, 0)"}
	if got := properties(quietWalker().Walk(n).Findings); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestFills(t *testing.T) {
	n := &document.Node{
		ID: "c", Name: "Box", Type: document.TypeRectangle,
		Fills: &document.Paints{Items: []document.Paint{
			{Type: document.PaintImage},
			{Type: document.PaintSolid, Color: &document.Color{R: 0.5, G: 0.5, B: 0.5}},
			{Type: document.PaintSolid, Color: red()},
		}},
	}
	n.Bound.BindAt(binding.SlotFills, 2, "v")

	want := []string{"Fill 2=rgb(128, 128, 128)"}
	if got := properties(quietWalker().Walk(n).Findings); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}

	n.Fills.StyleID = "S:surface"
	if got := quietWalker().Walk(n).Findings; len(got) != 0 {
		t.Errorf("fill style must suppress fills, got %v", properties(got))
	}
}

func TestCornerRadius(t *testing.T) {
	tests := []struct {
		name    string
		corners *document.Corners
		bind    []string
		want    []string
	}{
		{
			name:    "unified radius",
			corners: &document.Corners{Radius: f(8)},
			want:    []string{"All Corners=8px"},
		},
		{
			name:    "unified radius bound",
			corners: &document.Corners{Radius: f(8)},
			bind:    []string{binding.SlotCornerRadius},
			want:    []string{},
		},
		{
			name:    "independent corners including zero",
			corners: &document.Corners{Independent: true, Mixed: true, TopLeft: f(4), TopRight: f(0), BottomLeft: f(4), BottomRight: f(4)},
			bind:    []string{binding.SlotBottomLeftRadius, binding.SlotBottomRightRadius},
			want:    []string{"Top Left Radius=4px", "Top Right Radius=0px"},
		},
		{
			name:    "unified binding does not cover independent corners",
			corners: &document.Corners{Independent: true, Radius: f(2), TopLeft: f(2), TopRight: f(2), BottomLeft: f(2), BottomRight: f(2)},
			bind:    []string{binding.SlotCornerRadius, binding.SlotTopLeftRadius, binding.SlotTopRightRadius, binding.SlotBottomLeftRadius},
			want:    []string{"Bottom Right Radius=2px"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &document.Node{ID: "c", Name: "Box", Type: document.TypeRectangle, Corners: tt.corners}
			for _, slot := range tt.bind {
				n.Bound.Bind(slot, "v")
			}
			got := properties(quietWalker().Walk(n).Findings)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestText(t *testing.T) {
	tests := []struct {
		name string
		text *document.Text
		bind []string
		want []string
	}{
		{
			name: "auto line height skipped",
			text: &document.Text{FontFamily: "Inter", FontSize: f(12), LineHeight: &document.LineHeight{Unit: document.LineHeightAuto}},
			want: []string{"Font Family=Inter", "Font Size=12px"},
		},
		{
			name: "mixed values",
			text: &document.Text{FontFamilyMixed: true, FontSizeMixed: true},
			want: []string{"Font Family=Mixed", "Font Size=Mixed"},
		},
		{
			name: "unknown font and percent line height",
			text: &document.Text{HasFontName: true, FontSize: f(16), LineHeight: &document.LineHeight{Unit: document.LineHeightPercent, Value: f(150)}},
			bind: []string{binding.SlotFontSize},
			want: []string{"Font Family=Unknown Font", "Line Height=150%"},
		},
		{
			name: "absent metrics not reported",
			text: &document.Text{},
			want: []string{},
		},
		{
			name: "family without size",
			text: &document.Text{HasFontName: true, FontFamily: "Inter"},
			want: []string{"Font Family=Inter"},
		},
		{
			name: "style suppresses all",
			text: &document.Text{StyleID: "S:heading", FontFamily: "Inter", FontSize: f(12), LineHeight: &document.LineHeight{Unit: document.LineHeightPixels, Value: f(16)}},
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &document.Node{ID: "t", Name: "Title", Type: document.TypeText, Text: tt.text}
			for _, slot := range tt.bind {
				n.Bound.Bind(slot, "v")
			}
			got := properties(quietWalker().Walk(n).Findings)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestText_ParsedFromExport(t *testing.T) {
	tests := []struct {
		name string
		node string
		want []string
	}{
		{"no metrics", `{"id": "t", "name": "Label", "type": "TEXT"}`, []string{}},
		{"family only", `{"id": "t", "name": "Label", "type": "TEXT", "fontName": {"family": "Inter"}}`, []string{"Font Family=Inter"}},
		{"font name without family", `{"id": "t", "name": "Label", "type": "TEXT", "fontName": {}, "fontSize": 12}`, []string{"Font Family=Unknown Font", "Font Size=12px"}},
		{"mixed size", `{"id": "t", "name": "Label", "type": "TEXT", "fontSize": "mixed"}`, []string{"Font Size=Mixed"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := document.Load([]byte(`{"pages": [{"id": "p", "name": "Type", "children": [` + tt.node + `]}]}`))
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			res := quietWalker().Walk(doc.Pages[0].Children[0])
			if res.Failed() {
				t.Fatalf("unexpected failure: %v", res.Err)
			}
			if got := properties(res.Findings); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestWalk_ParseErrorFailsComponent(t *testing.T) {
	child := &document.Node{ID: "bad", Name: "Broken", Type: document.TypeRectangle, ParseErr: io.ErrUnexpectedEOF}
	root := &document.Node{ID: "c", Name: "Card", Type: document.TypeComponent, Opacity: f(1), Children: []*document.Node{child}}
	child.Parent = root

	res := quietWalker().Walk(root)
	if !res.Failed() {
		t.Fatal("expected failed result")
	}
	if len(res.Findings) != 0 {
		t.Errorf("failed result must carry no findings, got %v", properties(res.Findings))
	}
}

func TestEffects(t *testing.T) {
	shadow := document.Effect{
		Type:   document.EffectDropShadow,
		Color:  &document.Color{A: f(0.25)},
		Offset: document.Vector{X: 0, Y: 4},
		Radius: 8,
		Spread: f(0),
	}
	blur := document.Effect{Type: document.EffectLayerBlur, Radius: 12}

	t.Run("shadow with offset partially bound", func(t *testing.T) {
		s := shadow
		s.Bound.Bind(binding.SlotEffectOffsetX, "v").Bind(binding.SlotEffectColor, "v")
		n := &document.Node{ID: "c", Name: "Card", Type: document.TypeFrame, Effects: &document.Effects{Items: []document.Effect{s}}}

		want := []string{"Effect Offset=x: 0, y: 4", "Effect Blur=8", "Effect Spread=0"}
		if got := properties(quietWalker().Walk(n).Findings); !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("offset bound on both axes", func(t *testing.T) {
		s := shadow
		s.Spread = nil
		s.Bound.Bind(binding.SlotEffectOffsetX, "v").Bind(binding.SlotEffectOffsetY, "v").Bind(binding.SlotEffectRadius, "v")
		n := &document.Node{ID: "c", Name: "Card", Type: document.TypeFrame, Effects: &document.Effects{Items: []document.Effect{s}}}

		want := []string{"Effect Color=rgba(0, 0, 0, 0.25)"}
		if got := properties(quietWalker().Walk(n).Findings); !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("multiple effects numbered and hidden skipped", func(t *testing.T) {
		h := shadow
		h.Visible = hidden()
		n := &document.Node{ID: "c", Name: "Card", Type: document.TypeFrame, Effects: &document.Effects{Items: []document.Effect{h, blur}}}

		want := []string{"Effect 2 Blur=12"}
		if got := properties(quietWalker().Walk(n).Findings); !reflect.DeepEqual(got, want) {
			t.Errorf("expected %v, got %v", want, got)
		}
	})

	t.Run("style suppresses all", func(t *testing.T) {
		n := &document.Node{ID: "c", Name: "Card", Type: document.TypeFrame, Effects: &document.Effects{StyleID: "S:elevation", Items: []document.Effect{shadow, blur}}}
		if got := quietWalker().Walk(n).Findings; len(got) != 0 {
			t.Errorf("expected no findings, got %v", properties(got))
		}
	})
}

func TestWalk_MalformedNodeFailsComponent(t *testing.T) {
	child := &document.Node{
		ID: "bad", Name: "Broken", Type: document.TypeRectangle,
		Fills: &document.Paints{Items: []document.Paint{{Type: document.PaintSolid}}},
	}
	root := &document.Node{ID: "c", Name: "Card", Type: document.TypeComponent, Opacity: f(1), Children: []*document.Node{child}}

	res := quietWalker().Walk(root)
	if !res.Failed() {
		t.Fatal("expected failed result")
	}
	if len(res.Findings) != 0 {
		t.Errorf("failed result must carry no findings, got %v", properties(res.Findings))
	}
}

func TestClassify(t *testing.T) {
	n := &document.Node{ID: "c", Type: document.TypeRectangle}
	if got := binding.Classify(n, binding.Slot{Kind: binding.KindFill, Name: binding.SlotFills}); got != binding.Unbound {
		t.Errorf("expected unbound, got %s", got)
	}

	n.Bound.Slots = map[string]document.VariableAlias{binding.SlotOpacity: {Type: "EXPRESSION", ID: "x"}}
	if got := binding.Classify(n, binding.Slot{Kind: binding.KindAppearance, Name: binding.SlotOpacity}); got != binding.Unbound {
		t.Errorf("non-alias binding must classify as unbound, got %s", got)
	}

	n.Bound.Bind(binding.SlotOpacity, "v")
	if got := binding.Classify(n, binding.Slot{Kind: binding.KindAppearance, Name: binding.SlotOpacity}); got != binding.Bound {
		t.Errorf("expected bound, got %s", got)
	}
}
