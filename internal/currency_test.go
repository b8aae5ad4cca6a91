package internal

import "testing"

func TestCurrencyFormat(t *testing.T) {
	tests := []struct {
		code   string
		amount float64
		want   string
	}{
		{"USD", 15.99, "$15.99"},
		{"USD", 15, "$15.00"},
		{"GBP", 9.5, "£9.50"},
		{"EUR", 15.99, "15,99 €"},
		{"SEK", 15.99, "15,99 kr"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			c := GetCurrency(tt.code)
			if got := c.Format(tt.amount); got != tt.want {
				t.Errorf("Format(%v) = %q, want %q", tt.amount, got, tt.want)
			}
		})
	}
}

func TestGetCurrency_LowercaseCode(t *testing.T) {
	c := GetCurrency("usd")
	if c.Code != "USD" {
		t.Errorf("Code = %q, want USD", c.Code)
	}
}

func TestGetCurrency_UnknownCode(t *testing.T) {
	c := GetCurrency("ZZZ")
	if got := c.Format(10); got != "10.00 ZZZ" {
		t.Errorf("Format(10) = %q, want 10.00 ZZZ", got)
	}
}
