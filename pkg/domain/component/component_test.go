package component_test

import (
	"reflect"
	"testing"

	"github.com/felixgeelhaar/compaudit/pkg/domain/component"
	"github.com/felixgeelhaar/compaudit/pkg/domain/document"
)

func TestParseVariantProperties(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []component.VariantProperty
	}{
		{
			name: "drops malformed pairs and trims",
			raw:  "Size=Large, State = Hover,BadPair",
			want: []component.VariantProperty{{Key: "Size", Value: "Large"}, {Key: "State", Value: "Hover"}},
		},
		{
			name: "splits on first equals only",
			raw:  "Label=a=b",
			want: []component.VariantProperty{{Key: "Label", Value: "a=b"}},
		},
		{
			name: "empty sides dropped",
			raw:  "=Large, Size=",
			want: nil,
		},
		{
			name: "repeated key keeps one entry",
			raw:  "Size=L, State=On, Size=S",
			want: []component.VariantProperty{{Key: "Size", Value: "S"}, {Key: "State", Value: "On"}},
		},
		{
			name: "plain name",
			raw:  "Button",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := component.ParseVariantProperties(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestIsHiddenFromPublishing(t *testing.T) {
	tests := map[string]bool{
		".Internal": true,
		"_Private":  true,
		"Button":    false,
		" _Spaced":  true,
		"":          false,
	}
	for name, want := range tests {
		if got := component.IsHiddenFromPublishing(name); got != want {
			t.Errorf("%q: expected %v, got %v", name, want, got)
		}
	}
}

func TestClassify(t *testing.T) {
	set := &document.Node{ID: "s1", Name: "_Button", Type: document.TypeComponentSet}
	variant := &document.Node{
		ID: "c1", Name: "Size=Small", Type: document.TypeComponent, Parent: set,
		Description:        "  ",
		DocumentationLinks: []document.DocumentationLink{{URI: " "}, {URI: "https://docs.example.com/button"}},
	}
	set.Children = []*document.Node{variant}

	m := component.Classify(variant)
	if m.HasDescription {
		t.Error("blank description must not count")
	}
	if !m.HasDocumentationLink {
		t.Error("expected documentation link")
	}
	if !m.IsHiddenFromPublishing {
		t.Error("hidden set name must hide its variants")
	}
	if !m.IsVariant() || m.SetID != "s1" || m.SetName != "_Button" {
		t.Errorf("unexpected set metadata: %+v", m)
	}
	if len(m.VariantProperties) != 1 || m.VariantProperties[0].Key != "Size" {
		t.Errorf("unexpected variant properties: %+v", m.VariantProperties)
	}

	standalone := &document.Node{ID: "c2", Name: "Size=Small", Type: document.TypeComponent, Description: "Icon"}
	m = component.Classify(standalone)
	if m.IsVariant() || m.VariantProperties != nil {
		t.Errorf("standalone component must not carry variant data: %+v", m)
	}
	if !m.HasDescription || m.HasDocumentationLink {
		t.Errorf("unexpected metadata: %+v", m)
	}
}

func TestClassify_EffectiveName(t *testing.T) {
	tests := []struct {
		name    string
		setName string
		variant string
		hidden  bool
	}{
		{"set name trimmed", " _Private", "Size=L", true},
		{"blank set name falls back to component", "  ", "_Draft", true},
		{"visible set hides nothing", "Button", "_Draft", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := &document.Node{ID: "s", Name: tt.setName, Type: document.TypeComponentSet}
			variant := &document.Node{ID: "v", Name: tt.variant, Type: document.TypeComponent, Parent: set}
			set.Children = []*document.Node{variant}

			if got := component.Classify(variant).IsHiddenFromPublishing; got != tt.hidden {
				t.Errorf("expected hidden=%v, got %v", tt.hidden, got)
			}
		})
	}
}
