package models

import (
	"errors"
	"testing"
)

func TestCategory_Valid(t *testing.T) {
	for _, c := range Categories {
		if !c.Valid() {
			t.Errorf("expected %q to be valid", c)
		}
	}
	for _, c := range []Category{"", "Dessert", "vegetarian"} {
		if c.Valid() {
			t.Errorf("expected %q to be invalid", c)
		}
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr error
	}{
		{"75", 75, nil},
		{" 12.5 ", 12.5, nil},
		{"0", 0, nil},
		{"0.00", 0, nil},
		{"", 0, ErrPriceRequired},
		{"   ", 0, ErrPriceRequired},
		{"-5", 0, ErrPriceNegative},
		{"abc", 0, ErrPriceInvalid},
		{"NaN", 0, ErrPriceInvalid},
		{"Inf", 0, ErrPriceInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePrice(tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParsePrice(%q) error = %v, want %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParsePrice(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
