package service

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatRupiah(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0"},
		{"950", "950"},
		{"1000", "1,000"},
		{"1500000", "1,500,000"},
		{"123456789.6", "123,456,790"},
		{"-2500000", "-2,500,000"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := formatRupiah(decimal.RequireFromString(tt.in)); got != tt.want {
				t.Errorf("formatRupiah(%s) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
		msg  string
	}{
		{"not found", notFound("Project not found"), ErrNotFound, "Project not found"},
		{"invalid", invalid("Progress must be between %d and %d", 0, 100), ErrInvalidArgument, "Progress must be between 0 and 100"},
		{"conflict", conflict("exists"), ErrConflict, "exists"},
		{"stock", &InsufficientStockError{Available: decimal.NewFromInt(2), Requested: decimal.NewFromInt(5)}, ErrInsufficientStock, "Stok tidak cukup. Tersedia: 2, Diminta: 5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, tt.kind) {
				t.Errorf("errors.Is(%v, %v) = false", tt.err, tt.kind)
			}
			if tt.err.Error() != tt.msg {
				t.Errorf("Error() = %q, want %q", tt.err.Error(), tt.msg)
			}
		})
	}
}
