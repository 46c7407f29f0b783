// Package settings holds the audit filter toggles and the reducer that keeps
// group toggles in sync with their children.
package settings

import (
	"fmt"
	"sort"
)

// Key names one toggle.
type Key string

const (
	MissingDescription Key = "missingDescription"
	MissingDocs        Key = "missingDocs"
	MissingVariables   Key = "missingVariables"
	HideZeroValues     Key = "hideZeroValues"

	Fill       Key = "fill"
	Appearance Key = "appearance"

	Stroke       Key = "stroke"
	StrokeColor  Key = "strokeColor"
	StrokeWeight Key = "strokeWeight"

	Text       Key = "text"
	FontFamily Key = "fontFamily"
	FontSize   Key = "fontSize"
	LineHeight Key = "lineHeight"

	Spacing       Key = "spacing"
	ItemSpacing   Key = "itemSpacing"
	PaddingTop    Key = "paddingTop"
	PaddingRight  Key = "paddingRight"
	PaddingBottom Key = "paddingBottom"
	PaddingLeft   Key = "paddingLeft"

	CornerRadius      Key = "cornerRadius"
	AllCorners        Key = "allCorners"
	TopLeftRadius     Key = "topLeftRadius"
	TopRightRadius    Key = "topRightRadius"
	BottomLeftRadius  Key = "bottomLeftRadius"
	BottomRightRadius Key = "bottomRightRadius"

	Effects      Key = "effects"
	EffectColor  Key = "effectColor"
	EffectValues Key = "effectValues"
)

// Group ties a parent toggle to its children.
type Group struct {
	Parent   Key
	Children []Key
}

// Groups is the declarative toggle hierarchy.
var Groups = []Group{
	{Parent: Stroke, Children: []Key{StrokeColor, StrokeWeight}},
	{Parent: Text, Children: []Key{FontFamily, FontSize, LineHeight}},
	{Parent: Spacing, Children: []Key{ItemSpacing, PaddingTop, PaddingRight, PaddingBottom, PaddingLeft}},
	{Parent: CornerRadius, Children: []Key{AllCorners, TopLeftRadius, TopRightRadius, BottomLeftRadius, BottomRightRadius}},
	{Parent: Effects, Children: []Key{EffectColor, EffectValues}},
}

var ungrouped = []Key{MissingDescription, MissingDocs, MissingVariables, HideZeroValues, Fill, Appearance}

// defaultOff lists the toggles that start disabled.
var defaultOff = map[Key]bool{HideZeroValues: true, Appearance: true}

// Settings maps every known key to its state.
type Settings map[Key]bool

// UnknownKeyError is returned for a key outside the toggle set.
type UnknownKeyError struct {
	Key Key
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("unknown setting %q", string(e.Key))
}

// Keys returns every known key: ungrouped toggles first, then each group
// parent followed by its children.
func Keys() []Key {
	keys := append([]Key(nil), ungrouped...)
	for _, g := range Groups {
		keys = append(keys, g.Parent)
		keys = append(keys, g.Children...)
	}
	return keys
}

// IsKnown reports whether k names a toggle.
func IsKnown(k Key) bool {
	for _, known := range Keys() {
		if known == k {
			return true
		}
	}
	return false
}

// Default returns all toggles on except zero suppression and appearance.
func Default() Settings {
	s := make(Settings)
	for _, k := range Keys() {
		s[k] = !defaultOff[k]
	}
	return s
}

// Normalize fills missing keys with their defaults, drops unknown keys and
// recomputes every group parent from its children.
func Normalize(s Settings) Settings {
	out := Default()
	for k, v := range s {
		if _, ok := out[k]; ok {
			out[k] = v
		}
	}
	for _, g := range Groups {
		out[g.Parent] = allOn(out, g.Children)
	}
	return out
}

// Enabled reports the state of k. Unknown keys are off.
func (s Settings) Enabled(k Key) bool {
	return s[k]
}

// AnyEnabled reports whether at least one of keys is on.
func (s Settings) AnyEnabled(keys ...Key) bool {
	for _, k := range keys {
		if s[k] {
			return true
		}
	}
	return false
}

// ChildrenOf returns the children of a group parent, or nil.
func ChildrenOf(parent Key) []Key {
	for _, g := range Groups {
		if g.Parent == parent {
			return g.Children
		}
	}
	return nil
}

// ApplyToggle flips key and returns the new settings; s is not modified.
// Toggling a parent sets all its children to the new value. Toggling a child
// recomputes its parent as the AND of all siblings.
func ApplyToggle(s Settings, key Key) (Settings, error) {
	return Set(s, key, !s[key])
}

// Set assigns key and keeps its group consistent, like ApplyToggle.
func Set(s Settings, key Key, on bool) (Settings, error) {
	if !IsKnown(key) {
		return nil, &UnknownKeyError{Key: key}
	}
	out := make(Settings, len(s))
	for k, v := range s {
		out[k] = v
	}
	out[key] = on

	for _, g := range Groups {
		if g.Parent == key {
			for _, c := range g.Children {
				out[c] = on
			}
			break
		}
		if contains(g.Children, key) {
			out[g.Parent] = allOn(out, g.Children)
			break
		}
	}
	return out, nil
}

// Diff returns the keys whose state differs between a and b, sorted.
func Diff(a, b Settings) []Key {
	var keys []Key
	for _, k := range Keys() {
		if a[k] != b[k] {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func allOn(s Settings, keys []Key) bool {
	for _, k := range keys {
		if !s[k] {
			return false
		}
	}
	return true
}

func contains(keys []Key, k Key) bool {
	for _, c := range keys {
		if c == k {
			return true
		}
	}
	return false
}
