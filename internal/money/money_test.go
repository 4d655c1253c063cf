package money

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestFromString(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"10.00", "10.00", false},
		{"0.1", "0.10", false},
		{"113", "113.00", false},
		{"-5.50", "-5.50", false},
		{"", "", true},
		{"ten", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			m, err := FromString(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("FromString(%q) expected error, got %v", tt.in, m)
				}
				return
			}
			if err != nil {
				t.Fatalf("FromString(%q) unexpected error: %v", tt.in, err)
			}
			if m.String() != tt.want {
				t.Errorf("FromString(%q) = %s, want %s", tt.in, m, tt.want)
			}
		})
	}
}

func TestRound2HalfUp(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"13.005", "13.01"},
		{"13.004", "13.00"},
		{"13.0050", "13.01"},
		{"0.125", "0.13"},
		{"100.00", "100.00"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			m, err := FromString(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if got := m.Round2().String(); got != tt.want {
				t.Errorf("Round2(%s) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestMulRateExact(t *testing.T) {
	subtotal, _ := FromString("100.00")
	rate := decimal.RequireFromString("0.13")

	tax := subtotal.MulRate(rate).Round2()
	if tax.String() != "13.00" {
		t.Errorf("100.00 * 0.13 = %s, want 13.00", tax)
	}
}

func TestCents(t *testing.T) {
	m, _ := FromString("63.45")
	if got := m.Cents(); got != 6345 {
		t.Errorf("Cents() = %d, want 6345", got)
	}
	if got := FromCents(6345).String(); got != "63.45" {
		t.Errorf("FromCents(6345) = %s, want 63.45", got)
	}
}

func TestMinMax(t *testing.T) {
	a, _ := FromString("50.00")
	b, _ := FromString("80.00")

	if got := Min(a, b); !got.Equal(a) {
		t.Errorf("Min = %s, want %s", got, a)
	}
	if got := Max(a, b); !got.Equal(b) {
		t.Errorf("Max = %s, want %s", got, b)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	m, _ := FromString("19.90")

	b, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"19.90"` {
		t.Errorf("Marshal = %s, want \"19.90\"", b)
	}

	var back Money
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatal(err)
	}
	if !back.Equal(m) {
		t.Errorf("round trip = %s, want %s", back, m)
	}
}
