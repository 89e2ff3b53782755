package utils

import (
	"bytes"
	"strings"
	"testing"
)

func TestAskConfirmation(t *testing.T) {
	tests := []struct {
		input string
		force bool
		want  bool
	}{
		{"y\n", false, true},
		{"YES\n", false, true},
		{"n\n", false, false},
		{"\n", false, false},
		{"", false, false},
		{"", true, true},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		u := &InputUtils{In: strings.NewReader(tt.input), Out: &out}
		if got := u.AskConfirmation("Replace table?", tt.force); got != tt.want {
			t.Errorf("AskConfirmation(%q, force=%v) = %v, want %v", tt.input, tt.force, got, tt.want)
		}
	}
}

func TestGetUserChoice(t *testing.T) {
	var out bytes.Buffer
	u := &InputUtils{In: strings.NewReader("maybe\nAppend\n"), Out: &out}
	if got := u.GetUserChoice([]string{"overwrite", "append", "skip"}, "DATABASE_URL exists", false); got != "append" {
		t.Errorf("Expected 'append', got %q", got)
	}
	if !strings.Contains(out.String(), "Invalid option") {
		t.Error("Expected invalid input to be reported")
	}

	u = &InputUtils{In: strings.NewReader(""), Out: &out}
	if got := u.GetUserChoice([]string{"overwrite", "skip"}, "prompt", false); got != "skip" {
		t.Errorf("Expected EOF to pick the last option, got %q", got)
	}
}
