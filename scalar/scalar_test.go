package scalar

import (
	"testing"

	"github.com/facet-lang/facet/ast"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantKind ast.ExtendedScalarKind
		wantOK   bool
	}{
		{"date", "2024-01-15", ast.ExtendedTimestamp, true},
		{"datetime", "2024-01-15T10:30:00Z", ast.ExtendedTimestamp, true},
		{"duration", "1h30m", ast.ExtendedDuration, true},
		{"negative duration", "-5s", ast.ExtendedDuration, true},
		{"size", "10MB", ast.ExtendedSize, true},
		{"size with fraction", "1.5GiB", ast.ExtendedSize, true},
		{"regex", "/^foo.*bar$/i", ast.ExtendedRegex, true},
		{"plain string", "just some text", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := Detect(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("Detect(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && kind != tt.wantKind {
				t.Errorf("Detect(%q) kind = %v, want %v", tt.input, kind, tt.wantKind)
			}
		})
	}
}

func TestCanonicalizeTimestamp(t *testing.T) {
	out, err := Canonicalize(ast.ExtendedTimestamp, "2024-01-15T10:30:00Z")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "2024-01-15T10:30:00Z" {
		t.Errorf("Canonicalize() = %q", out)
	}
}

func TestCanonicalizeRegexRejectsInvalid(t *testing.T) {
	_, err := Canonicalize(ast.ExtendedRegex, "/[unclosed/")
	if err == nil {
		t.Error("expected an error for an invalid regex pattern")
	}
}

func TestParseDurationSeconds(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"1s", 1},
		{"1m", 60},
		{"1h", 3600},
		{"1h30m", 5400},
		{"-5s", -5},
	}
	for _, tt := range tests {
		got, err := ParseDurationSeconds(tt.input)
		if err != nil {
			t.Fatalf("ParseDurationSeconds(%q) error: %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("ParseDurationSeconds(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
