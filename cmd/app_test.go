package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/marcus/dmscreen/internal/models"
)

func TestParseIndex(t *testing.T) {
	tests := []struct {
		arg     string
		n       int
		want    int
		wantErr string
	}{
		{"0", 3, 0, ""},
		{"2", 3, 2, ""},
		{"3", 3, 0, "out of range (0-2)"},
		{"-1", 3, 0, "out of range"},
		{"x", 3, 0, "invalid encounter index"},
		{"0", 0, 0, "no encounter entries"},
	}
	for _, tt := range tests {
		got, err := parseIndex(tt.arg, tt.n, "encounter")
		if tt.wantErr != "" {
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("parseIndex(%q, %d) err = %v, want %q", tt.arg, tt.n, err, tt.wantErr)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("parseIndex(%q, %d) = %d, %v", tt.arg, tt.n, got, err)
		}
	}
}

func TestWithHint(t *testing.T) {
	_, perr := models.ParseBastionOrder("maintian")
	err := withHint(perr, "maintian", orderNames())
	if !errors.Is(err, models.ErrUnknownOrder) {
		t.Fatalf("hint should wrap the original error, got %v", err)
	}
	if !strings.Contains(err.Error(), "did you mean Maintain?") {
		t.Errorf("err = %v", err)
	}

	plain := errors.New("boom")
	if got := withHint(plain, "qqqqqqqq", orderNames()); got != plain {
		t.Errorf("no hint should return err unchanged, got %v", got)
	}
}
