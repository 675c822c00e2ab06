package errors

import (
	"strings"
	"testing"
)

func TestValidateNodeID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"numeric", "17", false},
		{"named", "Mr. Hi", false},
		{"unicode", "nœud", false},

		{"empty", "", true},
		{"too long", strings.Repeat("a", 300), true},
		{"null byte", "foo\x00bar", true},
		{"newline", "foo\nbar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNodeID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNodeID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidNode) {
				t.Errorf("code = %v, want %v", GetCode(err), ErrCodeInvalidNode)
			}
		})
	}
}

func TestValidateCommunityCount(t *testing.T) {
	tests := []struct {
		name string
		k, n int
		want Code
	}{
		{"lower bound", 1, 5, ""},
		{"upper bound", 5, 5, ""},
		{"zero", 0, 5, ErrCodeInvalidCommunityCount},
		{"negative", -1, 5, ErrCodeInvalidCommunityCount},
		{"above", 6, 5, ErrCodeInvalidCommunityCount},
		{"empty graph", 1, 0, ErrCodeEmptyGraph},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(ValidateCommunityCount(tt.k, tt.n)); got != tt.want {
				t.Errorf("ValidateCommunityCount(%d, %d) code = %q, want %q", tt.k, tt.n, got, tt.want)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "out/karate.json", false},
		{"absolute", "/tmp/graph.txt", false},
		{"empty", "", true},
		{"too long", strings.Repeat("a", 501), true},
		{"null byte", "a\x00b", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateRunID(t *testing.T) {
	for _, id := range []string{"", "../etc", "a/b", `a\b`} {
		if err := ValidateRunID(id); err == nil {
			t.Errorf("ValidateRunID(%q) = nil, want error", id)
		}
	}
	if err := ValidateRunID("6f1c3a52-6a3b-4b8e-9d0a-2f7c8e1d9b44"); err != nil {
		t.Errorf("ValidateRunID(uuid) = %v", err)
	}
}
