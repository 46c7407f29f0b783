// Package document models a read-only design document export: pages, node
// trees, component metadata, variable bindings and legacy style references.
//
// Optional visual facets (fills, strokes, corners, text, layout, effects,
// opacity) are resolved once at ingestion. A nil facet means the node does not
// expose that property family at all.
package document

import "strings"

// Mixed is the export sentinel for a property whose value differs across the
// node (e.g. per-side stroke weights or multi-font text runs).
const Mixed = "mixed"

// AliasType marks a binding that links a property to a variable.
const AliasType = "VARIABLE_ALIAS"

type NodeType string

const (
	TypeComponent    NodeType = "COMPONENT"
	TypeComponentSet NodeType = "COMPONENT_SET"
	TypeFrame        NodeType = "FRAME"
	TypeText         NodeType = "TEXT"
	TypeInstance     NodeType = "INSTANCE"
	TypeGroup        NodeType = "GROUP"
	TypeRectangle    NodeType = "RECTANGLE"
	TypeVector       NodeType = "VECTOR"
	TypeEllipse      NodeType = "ELLIPSE"
)

type PaintType string

const (
	PaintSolid          PaintType = "SOLID"
	PaintGradientLinear PaintType = "GRADIENT_LINEAR"
	PaintImage          PaintType = "IMAGE"
)

type EffectType string

const (
	EffectDropShadow     EffectType = "DROP_SHADOW"
	EffectInnerShadow    EffectType = "INNER_SHADOW"
	EffectLayerBlur      EffectType = "LAYER_BLUR"
	EffectBackgroundBlur EffectType = "BACKGROUND_BLUR"
)

// IsShadow reports whether the effect carries color, offset and spread.
func (t EffectType) IsShadow() bool {
	return t == EffectDropShadow || t == EffectInnerShadow
}

// IsBlur reports whether the effect only carries a blur radius.
func (t EffectType) IsBlur() bool {
	return t == EffectLayerBlur || t == EffectBackgroundBlur
}

type LineHeightUnit string

const (
	LineHeightPixels  LineHeightUnit = "PIXELS"
	LineHeightPercent LineHeightUnit = "PERCENT"
	LineHeightAuto    LineHeightUnit = "AUTO"
	// LineHeightRaw is a unitless numeric line height.
	LineHeightRaw LineHeightUnit = "RAW"
)

const (
	LayoutNone        = "NONE"
	LayoutHorizontal  = "HORIZONTAL"
	LayoutVertical    = "VERTICAL"
	AlignSpaceBetween = "SPACE_BETWEEN"
)

// Document is one design file.
type Document struct {
	ID            string
	Name          string
	CurrentPageID string
	Pages         []*Page
}

// Page is a top-level canvas of the document.
type Page struct {
	ID       string
	Name     string
	Children []*Node
}

type DocumentationLink struct {
	URI string `json:"uri"`
}

type Color struct {
	R float64  `json:"r"`
	G float64  `json:"g"`
	B float64  `json:"b"`
	A *float64 `json:"a,omitempty"`
}

type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Paint struct {
	Type    PaintType
	Visible *bool
	Color   *Color
}

// IsVisible treats an absent visibility flag as visible.
func (p Paint) IsVisible() bool {
	return p.Visible == nil || *p.Visible
}

type Paints struct {
	Items   []Paint
	Mixed   bool
	StyleID string
}

type StrokeWeight struct {
	Uniform                  *float64
	Mixed                    bool
	Top, Right, Bottom, Left *float64
}

type Strokes struct {
	Items   []Paint
	StyleID string
	Weight  *StrokeWeight
}

// VisibleCount returns how many stroke entries are not explicitly hidden.
func (s *Strokes) VisibleCount() int {
	n := 0
	for _, p := range s.Items {
		if p.IsVisible() {
			n++
		}
	}
	return n
}

type Corners struct {
	Radius      *float64
	Mixed       bool
	Independent bool

	TopLeft, TopRight, BottomLeft, BottomRight *float64
}

type LineHeight struct {
	Unit  LineHeightUnit
	Value *float64
}

type Text struct {
	StyleID string
	// HasFontName is set when the node exposes a font name, even one
	// without a family.
	HasFontName     bool
	FontFamily      string
	FontFamilyMixed bool
	// FontSize is nil when absent or mixed; FontSizeMixed tells them apart.
	FontSize      *float64
	FontSizeMixed bool
	// LineHeight is nil when the text runs use mixed line heights.
	LineHeight *LineHeight
}

type Layout struct {
	Mode             string
	PrimaryAxisAlign string
	Gap              *float64
	ItemSpacing      *float64

	PaddingTop, PaddingRight, PaddingBottom, PaddingLeft *float64
}

type Effect struct {
	Type    EffectType
	Visible *bool
	Color   *Color
	Offset  Vector
	Radius  float64
	Spread  *float64
	Bound   BoundVariables
}

// IsVisible treats an absent visibility flag as visible.
func (e Effect) IsVisible() bool {
	return e.Visible == nil || *e.Visible
}

type Effects struct {
	Items   []Effect
	StyleID string
}

// Node is one scene node of a page.
type Node struct {
	ID                 string
	Name               string
	Type               NodeType
	Description        string
	DocumentationLinks []DocumentationLink
	Children           []*Node
	Parent             *Node

	Fills   *Paints
	Strokes *Strokes
	Corners *Corners
	Text    *Text
	Layout  *Layout
	Effects *Effects
	Opacity *float64
	Bound   BoundVariables

	// ParseErr is the first facet of this node that could not be decoded.
	// The node stays in the tree; scanning it fails its component only.
	ParseErr error
}

// DisplayName returns the trimmed node name, falling back to its type.
func (n *Node) DisplayName() string {
	if name := strings.TrimSpace(n.Name); name != "" {
		return name
	}
	if n.Type != "" {
		return string(n.Type)
	}
	return "Node"
}

// ComponentSet returns the enclosing component set of a variant, or nil.
func (n *Node) ComponentSet() *Node {
	if n.Parent != nil && n.Parent.Type == TypeComponentSet {
		return n.Parent
	}
	return nil
}

// VariableAlias is one entry of a node's boundVariables map.
type VariableAlias struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Alias returns a variable alias pointing at id.
func Alias(id string) VariableAlias {
	return VariableAlias{Type: AliasType, ID: id}
}

// IsAlias reports whether the binding links to a variable.
func (a VariableAlias) IsAlias() bool {
	return a.Type == AliasType
}

// BoundVariables holds direct variable bindings. Scalar slots (strokeWeight,
// paddingTop, opacity, ...) live in Slots; indexed slots (fills, strokes) live
// in Lists, where a nil entry means the paint at that index is unbound.
type BoundVariables struct {
	Slots map[string]VariableAlias
	Lists map[string][]*VariableAlias
}

// IsBound reports whether slot carries a variable alias. A list-valued slot
// counts as bound only when it is non-empty and every entry is an alias.
func (b BoundVariables) IsBound(slot string) bool {
	if a, ok := b.Slots[slot]; ok && a.IsAlias() {
		return true
	}
	list, ok := b.Lists[slot]
	if !ok || len(list) == 0 {
		return false
	}
	for _, a := range list {
		if a == nil || !a.IsAlias() {
			return false
		}
	}
	return true
}

// IsBoundAt reports whether entry i of an indexed slot carries a variable alias.
func (b BoundVariables) IsBoundAt(slot string, i int) bool {
	list := b.Lists[slot]
	if i < 0 || i >= len(list) || list[i] == nil {
		return false
	}
	return list[i].IsAlias()
}

// Bind sets a scalar slot binding and returns the receiver for chaining.
func (b *BoundVariables) Bind(slot, variableID string) *BoundVariables {
	if b.Slots == nil {
		b.Slots = make(map[string]VariableAlias)
	}
	b.Slots[slot] = Alias(variableID)
	return b
}

// BindAt sets an indexed slot binding and returns the receiver for chaining.
func (b *BoundVariables) BindAt(slot string, i int, variableID string) *BoundVariables {
	if b.Lists == nil {
		b.Lists = make(map[string][]*VariableAlias)
	}
	list := b.Lists[slot]
	for len(list) <= i {
		list = append(list, nil)
	}
	a := Alias(variableID)
	list[i] = &a
	b.Lists[slot] = list
	return b
}

// CurrentPage returns the page active at export time, or the first page.
func (d *Document) CurrentPage() *Page {
	for _, p := range d.Pages {
		if p.ID == d.CurrentPageID {
			return p
		}
	}
	if len(d.Pages) > 0 {
		return d.Pages[0]
	}
	return nil
}

// FindAll returns every node of the page matching pred in pre-order.
func (p *Page) FindAll(pred func(*Node) bool) []*Node {
	var out []*Node
	var visit func(n *Node)
	visit = func(n *Node) {
		if pred(n) {
			out = append(out, n)
		}
		for _, c := range n.Children {
			visit(c)
		}
	}
	for _, c := range p.Children {
		visit(c)
	}
	return out
}

// Components returns every COMPONENT node of the page in document order.
func (p *Page) Components() []*Node {
	return p.FindAll(func(n *Node) bool { return n.Type == TypeComponent })
}

// FindNode locates a node by id anywhere in the document.
func (d *Document) FindNode(id string) (*Node, *Page) {
	for _, p := range d.Pages {
		found := p.FindAll(func(n *Node) bool { return n.ID == id })
		if len(found) > 0 {
			return found[0], p
		}
	}
	return nil, nil
}

// Link sets parent pointers across the page. Ingestion calls it; tests that
// build trees by hand call it too.
func (p *Page) Link() {
	var visit func(parent, n *Node)
	visit = func(parent, n *Node) {
		n.Parent = parent
		for _, c := range n.Children {
			visit(n, c)
		}
	}
	for _, c := range p.Children {
		visit(nil, c)
	}
}
