package validation

import (
	"testing"
)

func TestNormalizeAmount(t *testing.T) {
	tests := []struct {
		name    string
		in      float64
		want    float64
		wantErr bool
	}{
		{"integer amount", 499, 499.00, false},
		{"two decimals", 499.99, 499.99, false},
		{"one decimal", 10.5, 10.50, false},
		{"zero", 0, 0, false},
		{"negative", -1, 0, true},
		{"three decimals", 10.999, 0, true},
		{"sub-paise noise", 0.001, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeAmount(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NormalizeAmount(%v) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("NormalizeAmount(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeCurrency(t *testing.T) {
	if got := NormalizeCurrency(""); got != "INR" {
		t.Errorf("empty currency = %q, want INR", got)
	}
	if got := NormalizeCurrency(" usd "); got != "USD" {
		t.Errorf("currency = %q, want USD", got)
	}
}

func TestValidateEmail(t *testing.T) {
	if !ValidateEmail("student@example.com") {
		t.Error("expected valid email to pass")
	}
	for _, email := range []string{"", "no-at-sign", "a@b", "spaces in@example.com"} {
		if ValidateEmail(email) {
			t.Errorf("expected %q to be rejected", email)
		}
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  hello\x00world  "); got != "helloworld" {
		t.Errorf("SanitizeString = %q", got)
	}
}
