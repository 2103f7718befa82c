package protocol

import (
	"testing"
)

func TestStatusLines(t *testing.T) {
	s := Status{Operation: "X", Label: "start", Value: 50}
	got := s.Lines()
	want := []string{
		"label.text = 'start'",
		"operation.text = 'X'",
		"progressbar.width = 0.5 * progressbar_background.width",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d lines, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestStatusFraction(t *testing.T) {
	tests := []struct {
		value float64
		want  float64
	}{
		{0, 0},
		{1, 0.01},
		{25, 0.25},
		{50, 0.5},
		{99.5, 0.995},
		{100, 1},
		{-3, 0},
		{250, 1},
	}

	for _, tt := range tests {
		got := Status{Value: tt.value}.Fraction()
		if got != tt.want {
			t.Errorf("Fraction(%v) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestFormatFraction(t *testing.T) {
	tests := map[float64]string{
		0:     "0.0",
		1:     "1.0",
		0.5:   "0.5",
		0.125: "0.125",
	}
	for in, want := range tests {
		if got := FormatFraction(in); got != want {
			t.Errorf("FormatFraction(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestLinesEscapeQuotes(t *testing.T) {
	s := Status{Operation: `it's`, Label: "a\\b\nc"}
	lines := s.Lines()

	if lines[0] != `label.text = 'a\\b c'` {
		t.Errorf("unexpected label line %q", lines[0])
	}
	if lines[1] != `operation.text = 'it\'s'` {
		t.Errorf("unexpected operation line %q", lines[1])
	}
}

func TestParseCommandRoundTrip(t *testing.T) {
	s := Status{Operation: `O'Brien`, Label: "Remaining: 12", Value: 88}
	lines := s.Lines()

	label, err := ParseCommand(lines[0])
	if err != nil {
		t.Fatalf("parse label: %v", err)
	}
	if label.Target != TargetLabel || label.Text != s.Label {
		t.Errorf("label parsed as %+v", label)
	}

	op, err := ParseCommand(lines[1])
	if err != nil {
		t.Fatalf("parse operation: %v", err)
	}
	if op.Target != TargetOperation || op.Text != s.Operation {
		t.Errorf("operation parsed as %+v", op)
	}

	bar, err := ParseCommand(lines[2])
	if err != nil {
		t.Fatalf("parse progress: %v", err)
	}
	if bar.Target != TargetProgress || bar.Width != 0.88 {
		t.Errorf("progress parsed as %+v", bar)
	}
}

func TestParseCommandErrors(t *testing.T) {
	bad := []string{
		"",
		"hello world",
		"label.text = unquoted",
		"progressbar.width = 0.5",
		"progressbar.width = abc * progressbar_background.width",
		"window.title = 'x'",
	}
	for _, line := range bad {
		if _, err := ParseCommand(line); err == nil {
			t.Errorf("expected error for %q", line)
		}
	}
}

func TestControlTokens(t *testing.T) {
	if !IsConnect("RUBY2D_Connect") || !IsConnect("RUBY2D_Connect\r\n") {
		t.Error("expected connect token to match")
	}
	if IsConnect("RUBY2D_Close") {
		t.Error("close token matched as connect")
	}
	if !IsClose("RUBY2D_Close\n") {
		t.Error("expected close token to match")
	}
	if !IsDiagnostic("RUBY2D KeyEvent escape") {
		t.Error("expected diagnostic prefix to match")
	}
	if IsDiagnostic("plain output") {
		t.Error("plain output matched as diagnostic")
	}
}
