package binding

import (
	"fmt"
	"math"
	"strconv"

	"github.com/felixgeelhaar/compaudit/pkg/domain/document"
)

// rule inspects one property family of a node and reports every unbound value.
type rule func(n *document.Node, emit func(Kind, string, string)) error

// rules run in this fixed order for every node.
var rules = []rule{
	checkFills,
	checkStrokeColors,
	checkStrokeWeight,
	checkText,
	checkCornerRadius,
	checkSpacing,
	checkEffects,
	checkOpacity,
}

func checkFills(n *document.Node, emit func(Kind, string, string)) error {
	if n.Fills == nil || n.Fills.Mixed {
		return nil
	}
	fills := n.Fills.Items
	for i, p := range fills {
		if p.Type != document.PaintSolid {
			continue
		}
		if Classify(n, Slot{Kind: KindFill, Name: SlotFills, Index: i}) == Bound {
			continue
		}
		if p.Color == nil {
			return fmt.Errorf("fill %d: solid paint without color", i)
		}
		label := "Fill"
		if len(fills) > 1 {
			label = fmt.Sprintf("Fill %d", i+1)
		}
		emit(KindFill, label, formatRGB(*p.Color))
	}
	return nil
}

func checkStrokeColors(n *document.Node, emit func(Kind, string, string)) error {
	if n.Strokes == nil {
		return nil
	}
	visible := n.Strokes.VisibleCount()
	for i, p := range n.Strokes.Items {
		if !p.IsVisible() || p.Type != document.PaintSolid {
			continue
		}
		if Classify(n, Slot{Kind: KindStroke, Name: SlotStrokes, Index: i}) == Bound {
			continue
		}
		if p.Color == nil {
			return fmt.Errorf("stroke %d: solid paint without color", i)
		}
		label := "Stroke Color"
		if visible > 1 {
			label = fmt.Sprintf("Stroke %d Color", i+1)
		}
		emit(KindStroke, label, formatRGB(*p.Color))
	}
	return nil
}

func checkStrokeWeight(n *document.Node, emit func(Kind, string, string)) error {
	if n.Strokes == nil || n.Strokes.Weight == nil || n.Strokes.VisibleCount() == 0 {
		return nil
	}
	w := n.Strokes.Weight
	if w.Uniform != nil {
		if Classify(n, Slot{Kind: KindStroke, Name: SlotStrokeWeight}) == Unbound {
			emit(KindStroke, "Stroke Weight", formatPx(*w.Uniform))
		}
		return nil
	}
	if !w.Mixed {
		return nil
	}
	sides := []struct {
		slot  string
		label string
		value *float64
	}{
		{SlotStrokeTopWeight, "Stroke Top Weight", w.Top},
		{SlotStrokeRightWeight, "Stroke Right Weight", w.Right},
		{SlotStrokeBottomWeight, "Stroke Bottom Weight", w.Bottom},
		{SlotStrokeLeftWeight, "Stroke Left Weight", w.Left},
	}
	for _, side := range sides {
		if side.value == nil {
			continue
		}
		if Classify(n, Slot{Kind: KindStroke, Name: side.slot}) == Unbound {
			emit(KindStroke, side.label, formatPx(*side.value))
		}
	}
	return nil
}

func checkText(n *document.Node, emit func(Kind, string, string)) error {
	t := n.Text
	if n.Type != document.TypeText || t == nil {
		return nil
	}

	hasFamily := t.FontFamilyMixed || t.HasFontName || t.FontFamily != ""
	if hasFamily && Classify(n, Slot{Kind: KindText, Name: SlotFontFamily}) == Unbound {
		value := "Mixed"
		if !t.FontFamilyMixed {
			value = t.FontFamily
			if value == "" {
				value = "Unknown Font"
			}
		}
		emit(KindText, "Font Family", value)
	}

	hasSize := t.FontSize != nil || t.FontSizeMixed
	if hasSize && Classify(n, Slot{Kind: KindText, Name: SlotFontSize}) == Unbound {
		value := "Mixed"
		if t.FontSize != nil {
			value = formatPx(*t.FontSize)
		}
		emit(KindText, "Font Size", value)
	}

	// Auto line height is not a hardcoded value; mixed runs are not reported.
	lh := t.LineHeight
	if lh == nil || lh.Unit == document.LineHeightAuto {
		return nil
	}
	if Classify(n, Slot{Kind: KindText, Name: SlotLineHeight}) == Bound {
		return nil
	}
	var value string
	if lh.Value != nil {
		switch lh.Unit {
		case document.LineHeightPixels:
			value = formatPx(*lh.Value)
		case document.LineHeightPercent:
			value = formatNumber(*lh.Value) + "%"
		case document.LineHeightRaw:
			value = formatNumber(*lh.Value)
		}
	}
	if value != "" {
		emit(KindText, "Line Height", value)
	}
	return nil
}

func checkCornerRadius(n *document.Node, emit func(Kind, string, string)) error {
	c := n.Corners
	if c == nil {
		return nil
	}
	if c.Independent {
		corners := []struct {
			slot  string
			label string
			value *float64
		}{
			{SlotTopLeftRadius, "Top Left Radius", c.TopLeft},
			{SlotTopRightRadius, "Top Right Radius", c.TopRight},
			{SlotBottomLeftRadius, "Bottom Left Radius", c.BottomLeft},
			{SlotBottomRightRadius, "Bottom Right Radius", c.BottomRight},
		}
		for _, corner := range corners {
			if corner.value == nil || *corner.value < 0 {
				continue
			}
			if Classify(n, Slot{Kind: KindCornerRadius, Name: corner.slot}) == Unbound {
				emit(KindCornerRadius, corner.label, formatPx(*corner.value))
			}
		}
		return nil
	}
	if c.Radius != nil && *c.Radius >= 0 {
		if Classify(n, Slot{Kind: KindCornerRadius, Name: SlotCornerRadius}) == Unbound {
			emit(KindCornerRadius, "All Corners", formatPx(*c.Radius))
		}
	}
	return nil
}

func checkSpacing(n *document.Node, emit func(Kind, string, string)) error {
	l := n.Layout
	if l == nil || l.Mode == "" || l.Mode == document.LayoutNone {
		return nil
	}
	if n.Type != document.TypeFrame && n.Type != document.TypeComponent {
		return nil
	}
	// Space-between distributes items automatically; no spacing value is hardcoded.
	if l.PrimaryAxisAlign == document.AlignSpaceBetween {
		return nil
	}

	values := []struct {
		slot  string
		label string
		value *float64
	}{
		{SlotGap, "Gap", l.Gap},
		{SlotItemSpacing, "Item Spacing", l.ItemSpacing},
		{SlotPaddingTop, "Padding Top", l.PaddingTop},
		{SlotPaddingRight, "Padding Right", l.PaddingRight},
		{SlotPaddingBottom, "Padding Bottom", l.PaddingBottom},
		{SlotPaddingLeft, "Padding Left", l.PaddingLeft},
	}
	for _, v := range values {
		if v.value == nil || *v.value < 0 {
			continue
		}
		if Classify(n, Slot{Kind: KindSpacing, Name: v.slot}) == Unbound {
			emit(KindSpacing, v.label, formatPx(*v.value))
		}
	}
	return nil
}

func checkEffects(n *document.Node, emit func(Kind, string, string)) error {
	if n.Effects == nil || len(n.Effects.Items) == 0 || n.Effects.StyleID != "" {
		return nil
	}
	effects := n.Effects.Items
	for i, e := range effects {
		if !e.IsVisible() {
			continue
		}
		label := "Effect"
		if len(effects) > 1 {
			label = fmt.Sprintf("Effect %d", i+1)
		}
		unbound := func(slot string) bool {
			return Classify(n, Slot{Kind: KindEffect, Name: slot, Index: i}) == Unbound
		}

		switch {
		case e.Type.IsShadow():
			if e.Color != nil && unbound(SlotEffectColor) {
				emit(KindEffect, label+" Color", formatRGBA(*e.Color))
			}
			if unbound(SlotEffectOffset) {
				emit(KindEffect, label+" Offset",
					fmt.Sprintf("x: %s, y: %s", formatNumber(e.Offset.X), formatNumber(e.Offset.Y)))
			}
			if unbound(SlotEffectRadius) {
				emit(KindEffect, label+" Blur", formatNumber(e.Radius))
			}
			if e.Spread != nil && unbound(SlotEffectSpread) {
				emit(KindEffect, label+" Spread", formatNumber(*e.Spread))
			}
		case e.Type.IsBlur():
			if unbound(SlotEffectRadius) {
				emit(KindEffect, label+" Blur", formatNumber(e.Radius))
			}
		}
	}
	return nil
}

// checkOpacity reports every literal opacity, including 100%.
func checkOpacity(n *document.Node, emit func(Kind, string, string)) error {
	if n.Opacity == nil {
		return nil
	}
	if Classify(n, Slot{Kind: KindAppearance, Name: SlotOpacity}) == Unbound {
		emit(KindAppearance, "Opacity", fmt.Sprintf("%d%%", int(math.Round(*n.Opacity*100))))
	}
	return nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatPx(v float64) string {
	return formatNumber(v) + "px"
}

func channel(v float64) int {
	return int(math.Round(v * 255))
}

func formatRGB(c document.Color) string {
	return fmt.Sprintf("rgb(%d, %d, %d)", channel(c.R), channel(c.G), channel(c.B))
}

func formatRGBA(c document.Color) string {
	alpha := "1"
	if c.A != nil {
		alpha = strconv.FormatFloat(*c.A, 'f', 2, 64)
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", channel(c.R), channel(c.G), channel(c.B), alpha)
}
