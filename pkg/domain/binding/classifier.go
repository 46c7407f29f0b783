package binding

import (
	"github.com/felixgeelhaar/compaudit/pkg/domain/document"
)

// Binding is the classification of one property slot.
type Binding int

const (
	Unbound Binding = iota
	Bound
)

func (b Binding) String() string {
	if b == Bound {
		return "bound"
	}
	return "unbound"
}

// Variable binding slot names, as they appear in a node's boundVariables.
const (
	SlotFills              = "fills"
	SlotStrokes            = "strokes"
	SlotStrokeWeight       = "strokeWeight"
	SlotStrokeTopWeight    = "strokeTopWeight"
	SlotStrokeRightWeight  = "strokeRightWeight"
	SlotStrokeBottomWeight = "strokeBottomWeight"
	SlotStrokeLeftWeight   = "strokeLeftWeight"
	SlotFontFamily         = "fontFamily"
	SlotFontSize           = "fontSize"
	SlotLineHeight         = "lineHeight"
	SlotCornerRadius       = "cornerRadius"
	SlotTopLeftRadius      = "topLeftRadius"
	SlotTopRightRadius     = "topRightRadius"
	SlotBottomLeftRadius   = "bottomLeftRadius"
	SlotBottomRightRadius  = "bottomRightRadius"
	SlotGap                = "gap"
	SlotItemSpacing        = "itemSpacing"
	SlotPaddingTop         = "paddingTop"
	SlotPaddingRight       = "paddingRight"
	SlotPaddingBottom      = "paddingBottom"
	SlotPaddingLeft        = "paddingLeft"
	SlotOpacity            = "opacity"

	// Effect-level slots, looked up on the effect's own bindings.
	SlotEffectColor   = "color"
	SlotEffectOffsetX = "offsetX"
	SlotEffectOffsetY = "offsetY"
	SlotEffectOffset  = "offset"
	SlotEffectRadius  = "radius"
	SlotEffectSpread  = "spread"
)

var strokeSides = []string{SlotStrokeTopWeight, SlotStrokeRightWeight, SlotStrokeBottomWeight, SlotStrokeLeftWeight}

// Slot addresses one property value on a node. Index selects the paint entry
// for fills and strokes and the effect entry for effect slots.
type Slot struct {
	Kind  Kind
	Name  string
	Index int
}

// Classify decides whether the slot on n is bound to a variable or covered by
// a legacy shared style of its property family.
func Classify(n *document.Node, s Slot) Binding {
	if hasStyle(n, s) {
		return Bound
	}
	if directlyBound(n, s) {
		return Bound
	}
	return Unbound
}

// hasStyle reports whether a legacy style covers the slot. Stroke styles cover
// stroke colors only; weights are never styled.
func hasStyle(n *document.Node, s Slot) bool {
	switch s.Kind {
	case KindFill:
		return n.Fills != nil && n.Fills.StyleID != ""
	case KindStroke:
		return s.Name == SlotStrokes && n.Strokes != nil && n.Strokes.StyleID != ""
	case KindText:
		return n.Text != nil && n.Text.StyleID != ""
	case KindEffect:
		return n.Effects != nil && n.Effects.StyleID != ""
	}
	return false
}

func directlyBound(n *document.Node, s Slot) bool {
	switch s.Kind {
	case KindFill:
		return n.Bound.IsBoundAt(SlotFills, s.Index)
	case KindStroke:
		switch s.Name {
		case SlotStrokes:
			return n.Bound.IsBoundAt(SlotStrokes, s.Index)
		case SlotStrokeWeight:
			// A uniform weight may be bound either directly or through all
			// four per-side slots at once.
			if n.Bound.IsBound(SlotStrokeWeight) {
				return true
			}
			for _, side := range strokeSides {
				if !n.Bound.IsBound(side) {
					return false
				}
			}
			return true
		}
		return n.Bound.IsBound(s.Name)
	case KindEffect:
		if n.Effects == nil || s.Index < 0 || s.Index >= len(n.Effects.Items) {
			return false
		}
		bound := n.Effects.Items[s.Index].Bound
		if s.Name == SlotEffectOffset {
			return bound.IsBound(SlotEffectOffsetX) && bound.IsBound(SlotEffectOffsetY)
		}
		return bound.IsBound(s.Name)
	}
	return n.Bound.IsBound(s.Name)
}
