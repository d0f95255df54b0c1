package suggest

import (
	"reflect"
	"testing"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"maintain", "maintain", 0},
		{"maintian", "maintain", 2},
		{"kitten", "sitting", 3},
	}
	for _, tt := range tests {
		if got := levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestClosest(t *testing.T) {
	orders := []string{"Craft", "Empower", "Harvest", "Recruit", "Research", "Trade", "Maintain"}
	tests := []struct {
		word string
		want []string
	}{
		{"maintian", []string{"Maintain"}},
		{"CRAFT", []string{"Craft"}},
		{"re", []string{"Recruit", "Research"}},
		{"zzzzzzzz", nil},
		{"", nil},
	}
	for _, tt := range tests {
		got := Closest(tt.word, orders)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Closest(%q) = %v, want %v", tt.word, got, tt.want)
		}
	}
}

func TestHint(t *testing.T) {
	if got := Hint("nmae", []string{"initiative", "name"}); got != "did you mean name?" {
		t.Errorf("Hint = %q", got)
	}
	if got := Hint("qqqqqqq", []string{"name"}); got != "" {
		t.Errorf("Hint for no match = %q, want empty", got)
	}
}
