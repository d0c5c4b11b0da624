package normalize

import (
	"reflect"
	"testing"
)

func TestTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase and trim", "  Paneer Butter Masala  ", "paneer butter masala"},
		{"punctuation to spaces", "Chana-Masala (Punjabi)!", "chana masala punjabi"},
		{"digits kept", "2-Minute Noodles", "2 minute noodles"},
		{"junk words stripped", "Easy Homemade Dal Recipe", "dal"},
		{"all junk kept raw", "Easy Recipe", "easy recipe"},
		{"collapse whitespace", "aloo   gobi", "aloo gobi"},
		{"devanagari vowel signs kept", "पनीर टिक्का", "पनीर टिक्का"},
		{"empty", "", ""},
		{"only punctuation", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Title(tt.input); got != tt.want {
				t.Errorf("Title(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTokenSet(t *testing.T) {
	got := TokenSet("paneer butter paneer")
	want := map[string]struct{}{"paneer": {}, "butter": {}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TokenSet() = %v, want %v", got, want)
	}
}

func TestValue(t *testing.T) {
	if got := Value("  North  Indian "); got != "north indian" {
		t.Errorf("Value() = %q", got)
	}
	if got := Value(""); got != "" {
		t.Errorf("Value(empty) = %q", got)
	}
}
