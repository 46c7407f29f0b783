// Package binding decides, per visual property, whether a node's value is
// linked to a variable or shared style, and walks component trees to collect
// every hardcoded value as a Finding.
package binding

import "fmt"

// Kind groups findings by property family.
type Kind string

const (
	KindFill         Kind = "fill"
	KindStroke       Kind = "stroke"
	KindText         Kind = "text"
	KindCornerRadius Kind = "cornerRadius"
	KindSpacing      Kind = "spacing"
	KindEffect       Kind = "effect"
	KindAppearance   Kind = "appearance"
)

// AllKinds returns the kinds in the order the walker checks them.
func AllKinds() []Kind {
	return []Kind{KindFill, KindStroke, KindText, KindCornerRadius, KindSpacing, KindEffect, KindAppearance}
}

func (k Kind) String() string { return string(k) }

// Label is the human-readable family name.
func (k Kind) Label() string {
	switch k {
	case KindFill:
		return "Fill"
	case KindStroke:
		return "Stroke"
	case KindText:
		return "Text"
	case KindCornerRadius:
		return "Corner Radius"
	case KindSpacing:
		return "Spacing"
	case KindEffect:
		return "Effect"
	case KindAppearance:
		return "Appearance"
	default:
		return string(k)
	}
}

// Finding is one hardcoded property observed on one node. Its existence is
// the unbound signal; it carries no binding state of its own.
type Finding struct {
	Kind     Kind   `json:"kind" yaml:"kind"`
	Property string `json:"property" yaml:"property"`
	Value    string `json:"value" yaml:"value"`
	Path     string `json:"path" yaml:"path"`
	NodeID   string `json:"nodeId,omitempty" yaml:"node_id,omitempty"`
}

func (f Finding) String() string {
	return fmt.Sprintf("[%s] %s = %s (%s)", f.Kind, f.Property, f.Value, f.Path)
}

// Result is the outcome of scanning one component tree. A failed scan never
// carries findings.
type Result struct {
	Findings []Finding
	Err      error
}

// Ok wraps findings of a successful scan.
func Ok(findings []Finding) Result {
	return Result{Findings: findings}
}

// Failed wraps the reason a scan was abandoned.
func Failed(err error) Result {
	return Result{Err: err}
}

// Failed reports whether the walk was abandoned.
func (r Result) Failed() bool {
	return r.Err != nil
}

// HasUnbound reports whether the scan found any hardcoded value.
func (r Result) HasUnbound() bool {
	return len(r.Findings) > 0
}
