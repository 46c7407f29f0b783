// Package view filters audit records by the active settings and groups them
// into paged per-page views.
package view

import (
	"regexp"
	"strings"

	"github.com/felixgeelhaar/compaudit/pkg/domain/audit"
	"github.com/felixgeelhaar/compaudit/pkg/domain/binding"
	"github.com/felixgeelhaar/compaudit/pkg/domain/settings"
)

var zeroPattern = regexp.MustCompile(`^0(px|pt|rem|em|%|\s)`)

// IsZeroValue reports a literal zero quantity such as "0", "0px" or "0%".
func IsZeroValue(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	return v == "0" || zeroPattern.MatchString(v)
}

var exactToggles = map[binding.Kind]map[string]settings.Key{
	binding.KindText: {
		"Font Family": settings.FontFamily,
		"Font Size":   settings.FontSize,
		"Line Height": settings.LineHeight,
	},
	binding.KindSpacing: {
		"Padding Top":    settings.PaddingTop,
		"Padding Right":  settings.PaddingRight,
		"Padding Bottom": settings.PaddingBottom,
		"Padding Left":   settings.PaddingLeft,
		"Item Spacing":   settings.ItemSpacing,
		"Gap":            settings.ItemSpacing,
	},
	binding.KindCornerRadius: {
		"All Corners":         settings.AllCorners,
		"Top Left Radius":     settings.TopLeftRadius,
		"Top Right Radius":    settings.TopRightRadius,
		"Bottom Left Radius":  settings.BottomLeftRadius,
		"Bottom Right Radius": settings.BottomRightRadius,
	},
}

// kindEnabled resolves the toggle governing a finding's kind and sub-kind.
func kindEnabled(f binding.Finding, s settings.Settings) bool {
	switch f.Kind {
	case binding.KindFill:
		return s.Enabled(settings.Fill)
	case binding.KindStroke:
		if strings.Contains(f.Property, "Weight") {
			return s.Enabled(settings.StrokeWeight)
		}
		return s.Enabled(settings.StrokeColor)
	case binding.KindText:
		if k, ok := exactToggles[binding.KindText][f.Property]; ok {
			return s.Enabled(k)
		}
		return s.AnyEnabled(settings.ChildrenOf(settings.Text)...)
	case binding.KindSpacing:
		if k, ok := exactToggles[binding.KindSpacing][f.Property]; ok {
			return s.Enabled(k)
		}
		return s.AnyEnabled(settings.ChildrenOf(settings.Spacing)...)
	case binding.KindCornerRadius:
		if k, ok := exactToggles[binding.KindCornerRadius][f.Property]; ok {
			return s.Enabled(k)
		}
		return s.AnyEnabled(settings.ChildrenOf(settings.CornerRadius)...)
	case binding.KindEffect:
		switch {
		case strings.Contains(f.Property, "Color"):
			return s.Enabled(settings.EffectColor)
		case strings.Contains(f.Property, "Offset"),
			strings.Contains(f.Property, "Blur"),
			strings.Contains(f.Property, "Spread"):
			return s.Enabled(settings.EffectValues)
		}
		return s.AnyEnabled(settings.Effects, settings.EffectColor, settings.EffectValues)
	case binding.KindAppearance:
		return s.Enabled(settings.Appearance)
	}
	return true
}

// FilterFindings keeps the findings whose toggle is on and, when zero
// suppression is on, whose value is not a literal zero.
func FilterFindings(findings []binding.Finding, s settings.Settings) []binding.Finding {
	out := make([]binding.Finding, 0, len(findings))
	for _, f := range findings {
		if !kindEnabled(f, s) {
			continue
		}
		if s.Enabled(settings.HideZeroValues) && IsZeroValue(f.Value) {
			continue
		}
		out = append(out, f)
	}
	return out
}

// ShouldShowComponent reports whether a record matches at least one enabled
// top-level filter. With every top-level filter off nothing is shown.
func ShouldShowComponent(r audit.Record, s settings.Settings) bool {
	if !s.AnyEnabled(settings.MissingDescription, settings.MissingDocs, settings.MissingVariables) {
		return false
	}
	if s.Enabled(settings.MissingDescription) && !r.HasDescription {
		return true
	}
	if s.Enabled(settings.MissingDocs) && !r.HasDocumentationLink {
		return true
	}
	if s.Enabled(settings.MissingVariables) {
		if s.Enabled(settings.HideZeroValues) {
			return len(FilterFindings(r.Findings, s)) > 0
		}
		return r.HasUnboundProperties
	}
	return false
}
