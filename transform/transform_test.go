package transform

import (
	"testing"

	"github.com/identitykit/genattr/rule"
)

func TestApplyCase(t *testing.T) {
	tests := []struct {
		name string
		in   string
		mode rule.Case
		want string
	}{
		{"same leaves value unchanged", "John Smith", rule.CaseSame, "John Smith"},
		{"empty mode leaves value unchanged", "John Smith", "", "John Smith"},
		{"lower", "John SMITH", rule.CaseLower, "john smith"},
		{"upper", "John Smith", rule.CaseUpper, "JOHN SMITH"},
		{"capitalize first letter of each word", "john van smith", rule.CaseCapitalize, "John Van Smith"},
		{"capitalize leaves rest of word unchanged", "mcDonald", rule.CaseCapitalize, "McDonald"},
		{"capitalize handles repeated spaces", "a  b", rule.CaseCapitalize, "A  B"},
		{"capitalize empty", "", rule.CaseCapitalize, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ApplyCase(tt.in, tt.mode); got != tt.want {
				t.Errorf("ApplyCase(%q, %q) = %q, want %q", tt.in, tt.mode, got, tt.want)
			}
		})
	}
}

func TestRemoveSpaces(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"John Smith", "JohnSmith"},
		{" a b\tc\nd ", "abcd"},
		{"nospaces", "nospaces"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := RemoveSpaces(tt.in); got != tt.want {
			t.Errorf("RemoveSpaces(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeDiacritics(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"José", "Jose"},
		{"Müller", "Muller"},
		{"Ångström", "Angstrom"},
		{"O'Brien", "OBrien"},
		{"O’Brien", "OBrien"},
		{"Straße", "Strasse"},
		{"Søren", "Soren"},
		{"Łukasz", "Lukasz"},
		{"plain ascii", "plain ascii"},
	}

	for _, tt := range tests {
		if got := NormalizeDiacritics(tt.in); got != tt.want {
			t.Errorf("NormalizeDiacritics(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestApplyPipelineOrder(t *testing.T) {
	// Case folds first, then spaces drop, then diacritics fold.
	r := &rule.Rule{
		Name:         "login",
		Kind:         rule.KindNormal,
		Case:         rule.CaseUpper,
		RemoveSpaces: true,
		Normalize:    true,
	}

	got := Apply("José O'Brien", r)
	if got != "JOSEOBRIEN" {
		t.Errorf("Apply = %q, want %q", got, "JOSEOBRIEN")
	}
}

func TestPadNumber(t *testing.T) {
	tests := []struct {
		n     int
		width int
		want  string
	}{
		{7, 3, "007"},
		{42, 5, "00042"},
		{12345, 3, "12345"},
		{5, 0, "5"},
		{0, 2, "00"},
	}

	for _, tt := range tests {
		if got := PadNumber(tt.n, tt.width); got != tt.want {
			t.Errorf("PadNumber(%d, %d) = %q, want %q", tt.n, tt.width, got, tt.want)
		}
	}
}
