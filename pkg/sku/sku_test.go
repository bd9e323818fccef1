package sku

import (
	"regexp"
	"testing"
)

func TestGenerateDeterminism(t *testing.T) {
	a := Generate("ABC Jacket", "ブラック", "S")
	b := Generate("ABC Jacket", "ブラック", "S")
	if a != b {
		t.Fatalf("identifier not deterministic: %q vs %q", a, b)
	}
}

func TestGenerateShape(t *testing.T) {
	id := Generate("ABC Jacket", "ブラック", "S")
	re := regexp.MustCompile(`^FS-[0-9A-F]{8}-BLK-S$`)
	if !re.MatchString(id) {
		t.Fatalf("unexpected identifier shape: %q", id)
	}
}

func TestGenerateDiffersPerInput(t *testing.T) {
	base := Generate("ABC Jacket", "ブラック", "S")
	for _, other := range []string{
		Generate("ABC Jacket", "ブラック", "M"),
		Generate("ABC Jacket", "ホワイト", "S"),
		Generate("XYZ Jacket", "ブラック", "S"),
	} {
		if other == base {
			t.Fatalf("distinct inputs collided on %q", base)
		}
	}
}

func TestColorCode(t *testing.T) {
	tests := []struct {
		color string
		want  string
	}{
		{"ブラック", "BLK"},
		{"ホワイト", "WHT"},
		{"サックス", "SAX"},
		// First containment match wins: compound labels shadowed by their
		// base color keep the base code.
		{"ライトブルー", "BLU"},
		{"ダークグリーン", "GRN"},
		{"チャコールグレー", "GRY"},
		{"スモーキーピンク", "PNK"},
		// Labels with decoration still hit the contained pattern.
		{"ブラック(無地)", "BLK"},
		// No entry at all.
		{"レインボー", UnknownColorCode},
		{"", UnknownColorCode},
	}
	for _, tt := range tests {
		if got := ColorCode(tt.color); got != tt.want {
			t.Errorf("ColorCode(%q) = %q, want %q", tt.color, got, tt.want)
		}
	}
}

func TestDisplayColor(t *testing.T) {
	if got := DisplayColor("ブラック"); got != "黑色" {
		t.Errorf("DisplayColor(ブラック) = %q, want 黑色", got)
	}
	// Identity fallback when no localization exists.
	if got := DisplayColor("レインボー"); got != "レインボー" {
		t.Errorf("DisplayColor(レインボー) = %q, want identity", got)
	}
}
