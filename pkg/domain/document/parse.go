package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// fields is one raw JSON object of the export, keyed by property name.
// Presence of a key is meaningful: it tells which facets a node exposes.
type fields map[string]json.RawMessage

func (f fields) has(key string) bool {
	raw, ok := f[key]
	return ok && !bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func (f fields) str(key string) string {
	var s string
	if raw, ok := f[key]; ok {
		_ = json.Unmarshal(raw, &s)
	}
	return s
}

func (f fields) isMixed(key string) bool {
	return f.has(key) && f.str(key) == Mixed
}

// num decodes a numeric property. It returns nil when the key is absent,
// mixed or not a number.
func (f fields) num(key string) *float64 {
	raw, ok := f[key]
	if !ok {
		return nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return &v
}

func (f fields) boolPtr(key string) *bool {
	raw, ok := f[key]
	if !ok {
		return nil
	}
	var v bool
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return &v
}

func (f fields) object(key string) (fields, error) {
	raw, ok := f[key]
	if !ok {
		return nil, nil
	}
	var out fields
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return out, nil
}

// objects decodes an array of objects. Entries that are not objects are
// skipped; the first of them is reported alongside the decoded rest.
func (f fields) objects(key string) ([]fields, error) {
	raw, ok := f[key]
	if !ok {
		return nil, nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	out := make([]fields, 0, len(items))
	var first error
	for i, item := range items {
		var obj fields
		if err := json.Unmarshal(item, &obj); err != nil {
			if first == nil {
				first = fmt.Errorf("decode %s[%d]: %w", key, i, err)
			}
			continue
		}
		out = append(out, obj)
	}
	return out, first
}

// Parse ingests a document export. It does not validate the export against
// the schema; callers that accept untrusted input run Validate first.
//
// Only the document skeleton can fail parsing. A node facet that cannot be
// decoded is recorded on the node as ParseErr and the rest of the tree is
// still ingested.
func Parse(data []byte) (*Document, error) {
	var root fields
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}

	doc := &Document{
		ID:            root.str("id"),
		Name:          root.str("name"),
		CurrentPageID: root.str("currentPage"),
	}

	pages, err := root.objects("pages")
	if err != nil {
		return nil, err
	}
	for i, pf := range pages {
		page := &Page{ID: pf.str("id"), Name: pf.str("name")}
		children, err := pf.objects("children")
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		for _, cf := range children {
			page.Children = append(page.Children, parseNode(cf))
		}
		page.Link()
		doc.Pages = append(doc.Pages, page)
	}
	return doc, nil
}

func parseNode(f fields) *Node {
	n := &Node{
		ID:          f.str("id"),
		Name:        f.str("name"),
		Type:        NodeType(f.str("type")),
		Description: f.str("description"),
		Opacity:     f.num("opacity"),
	}
	fail := func(err error) {
		if err != nil && n.ParseErr == nil {
			n.ParseErr = err
		}
	}
	if n.Type == "" {
		fail(errors.New("node has no type"))
	}

	if raw, ok := f["documentationLinks"]; ok {
		if err := json.Unmarshal(raw, &n.DocumentationLinks); err != nil {
			n.DocumentationLinks = nil
			fail(fmt.Errorf("decode documentationLinks: %w", err))
		}
	}

	var err error
	n.Bound, err = parseBound(f)
	fail(err)
	n.Fills, err = parseFills(f)
	fail(err)
	n.Strokes, err = parseStrokes(f)
	fail(err)
	n.Corners = parseCorners(f)
	if n.Type == TypeText {
		n.Text, err = parseText(f)
		fail(err)
	}
	if (n.Type == TypeFrame || n.Type == TypeComponent) && f.has("layoutMode") {
		n.Layout = parseLayout(f)
	}
	n.Effects, err = parseEffects(f)
	fail(err)

	children, err := f.objects("children")
	fail(err)
	for _, cf := range children {
		n.Children = append(n.Children, parseNode(cf))
	}
	return n
}

func parseBound(f fields) (BoundVariables, error) {
	var b BoundVariables
	obj, err := f.object("boundVariables")
	if err != nil || obj == nil {
		return b, err
	}
	var first error
	for slot, raw := range obj {
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) == 0 {
			continue
		}
		switch trimmed[0] {
		case '[':
			var list []*VariableAlias
			if err := json.Unmarshal(trimmed, &list); err != nil {
				if first == nil {
					first = fmt.Errorf("decode boundVariables.%s: %w", slot, err)
				}
				continue
			}
			if b.Lists == nil {
				b.Lists = make(map[string][]*VariableAlias)
			}
			b.Lists[slot] = list
		case '{':
			var a VariableAlias
			if err := json.Unmarshal(trimmed, &a); err != nil {
				if first == nil {
					first = fmt.Errorf("decode boundVariables.%s: %w", slot, err)
				}
				continue
			}
			if b.Slots == nil {
				b.Slots = make(map[string]VariableAlias)
			}
			b.Slots[slot] = a
		}
	}
	return b, first
}

func parsePaints(f fields, key string) ([]Paint, error) {
	items, err := f.objects(key)
	paints := make([]Paint, 0, len(items))
	for _, pf := range items {
		p := Paint{Type: PaintType(pf.str("type")), Visible: pf.boolPtr("visible")}
		if raw, ok := pf["color"]; ok {
			var c Color
			if cerr := json.Unmarshal(raw, &c); cerr != nil {
				if err == nil {
					err = fmt.Errorf("decode %s color: %w", key, cerr)
				}
			} else {
				p.Color = &c
			}
		}
		paints = append(paints, p)
	}
	return paints, err
}

func parseFills(f fields) (*Paints, error) {
	if !f.has("fills") {
		return nil, nil
	}
	out := &Paints{StyleID: f.str("fillStyleId")}
	if f.isMixed("fills") {
		out.Mixed = true
		return out, nil
	}
	items, err := parsePaints(f, "fills")
	out.Items = items
	return out, err
}

func parseStrokes(f fields) (*Strokes, error) {
	if !f.has("strokes") {
		return nil, nil
	}
	items, err := parsePaints(f, "strokes")
	out := &Strokes{Items: items, StyleID: f.str("strokeStyleId")}
	if f.has("strokeWeight") {
		out.Weight = &StrokeWeight{
			Uniform: f.num("strokeWeight"),
			Mixed:   f.isMixed("strokeWeight"),
			Top:     f.num("strokeTopWeight"),
			Right:   f.num("strokeRightWeight"),
			Bottom:  f.num("strokeBottomWeight"),
			Left:    f.num("strokeLeftWeight"),
		}
	}
	return out, err
}

func parseCorners(f fields) *Corners {
	if !f.has("cornerRadius") {
		return nil
	}
	return &Corners{
		Radius:      f.num("cornerRadius"),
		Mixed:       f.isMixed("cornerRadius"),
		Independent: f.has("topLeftRadius"),
		TopLeft:     f.num("topLeftRadius"),
		TopRight:    f.num("topRightRadius"),
		BottomLeft:  f.num("bottomLeftRadius"),
		BottomRight: f.num("bottomRightRadius"),
	}
}

func parseText(f fields) (*Text, error) {
	t := &Text{StyleID: f.str("textStyleId")}

	var err error
	if f.isMixed("fontName") {
		t.FontFamilyMixed = true
	} else if f.has("fontName") {
		var font fields
		if font, err = f.object("fontName"); err == nil {
			t.HasFontName = true
			t.FontFamily = font.str("family")
		}
	}

	t.FontSize = f.num("fontSize")
	t.FontSizeMixed = f.isMixed("fontSize")

	switch {
	case !f.has("lineHeight"), f.isMixed("lineHeight"):
		// nil line height: mixed or absent, never reported
	case f.num("lineHeight") != nil:
		t.LineHeight = &LineHeight{Unit: LineHeightRaw, Value: f.num("lineHeight")}
	default:
		lh, lerr := f.object("lineHeight")
		if lerr != nil {
			if err == nil {
				err = lerr
			}
			break
		}
		t.LineHeight = &LineHeight{Unit: LineHeightUnit(lh.str("unit")), Value: lh.num("value")}
	}
	return t, err
}

func parseLayout(f fields) *Layout {
	return &Layout{
		Mode:             f.str("layoutMode"),
		PrimaryAxisAlign: f.str("primaryAxisAlignItems"),
		Gap:              f.num("gap"),
		ItemSpacing:      f.num("itemSpacing"),
		PaddingTop:       f.num("paddingTop"),
		PaddingRight:     f.num("paddingRight"),
		PaddingBottom:    f.num("paddingBottom"),
		PaddingLeft:      f.num("paddingLeft"),
	}
}

func parseEffects(f fields) (*Effects, error) {
	if !f.has("effects") {
		return nil, nil
	}
	items, err := f.objects("effects")
	out := &Effects{StyleID: f.str("effectStyleId")}
	keep := func(e error) {
		if e != nil && err == nil {
			err = e
		}
	}
	for _, ef := range items {
		e := Effect{
			Type:    EffectType(ef.str("type")),
			Visible: ef.boolPtr("visible"),
			Spread:  ef.num("spread"),
		}
		if r := ef.num("radius"); r != nil {
			e.Radius = *r
		}
		if raw, ok := ef["color"]; ok {
			var c Color
			if cerr := json.Unmarshal(raw, &c); cerr != nil {
				keep(fmt.Errorf("decode effect color: %w", cerr))
			} else {
				e.Color = &c
			}
		}
		if raw, ok := ef["offset"]; ok {
			if oerr := json.Unmarshal(raw, &e.Offset); oerr != nil {
				keep(fmt.Errorf("decode effect offset: %w", oerr))
			}
		}
		bound, berr := parseBound(ef)
		keep(berr)
		e.Bound = bound
		out.Items = append(out.Items, e)
	}
	return out, err
}
