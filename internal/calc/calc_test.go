package calc

import (
	"errors"
	"testing"
)

func TestEvalBasicArithmetic(t *testing.T) {
	tests := []struct {
		expr string
		want float64
	}{
		{"2+3*4", 14},
		{"5 * (3 + 2)", 25},
		{"10 / 4", 2.5},
		{"7 % 3", 1},
		{"2 ** 10", 1024},
		{"-5 + 3", -2},
		{"2 ** 3 ** 2", 512}, // right associative
		{"-2 ** 2", -4},      // minus binds looser than **
		{"2 ** -1", 0.5},
		{"(-2) ** 2", 4},
		{"1.5 * 2", 3},
		{"(1 + 2) * (3 + 4)", 21},
	}

	e := New()
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := e.Eval(tt.expr)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Eval(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestEvalRejectsInvalid(t *testing.T) {
	tests := []string{
		"__import__('os')",
		"2**9999999999", // overflows
		"1/0",
		"5 % 0",
		"10000000001", // exceeds literal ceiling
		"abs(-1)",
		"x + 1",
		"1 < 2",
		"(1 + 2",
		"",
		"   ",
		"1 +",
		"2 3",
	}

	e := New()
	for _, expr := range tests {
		t.Run(expr, func(t *testing.T) {
			_, err := e.Eval(expr)
			if err == nil {
				t.Fatalf("Eval(%q) should fail", expr)
			}
			if !errors.Is(err, ErrInvalidExpression) {
				t.Errorf("expected ErrInvalidExpression, got %v", err)
			}
		})
	}
}

func TestEvalCustomLimit(t *testing.T) {
	e := NewWithLimit(100)

	if _, err := e.Eval("99 + 1"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if _, err := e.Eval("101 + 1"); !errors.Is(err, ErrInvalidExpression) {
		t.Errorf("expected ErrInvalidExpression, got %v", err)
	}
}

func TestFormatResult(t *testing.T) {
	if got := FormatResult(14); got != "14" {
		t.Errorf("expected 14, got %s", got)
	}
	if got := FormatResult(2.5); got != "2.5" {
		t.Errorf("expected 2.5, got %s", got)
	}
}
