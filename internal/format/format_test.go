package format

import (
	"testing"
	"time"
)

func TestCurrency(t *testing.T) {
	cases := []struct {
		value float64
		want  string
	}{
		{2500.0, "$2,500.00"},
		{-150.75, "-$150.75"},
		{0, "$0.00"},
		{0.1, "$0.10"},
		{1234567.89, "$1,234,567.89"},
	}

	for _, c := range cases {
		v := c.value
		if got := Currency(&v); got != c.want {
			t.Errorf("Currency(%v) = %q, want %q", c.value, got, c.want)
		}
	}
}

func TestCurrencyNil(t *testing.T) {
	if got := Currency(nil); got != "-" {
		t.Fatalf("Currency(nil) = %q, want \"-\"", got)
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(65, 0); got != "65%" {
		t.Fatalf("Percent(65, 0) = %q, want \"65%%\"", got)
	}

	if got := Percent(33.333, 1); got != "33.3%" {
		t.Fatalf("Percent(33.333, 1) = %q, want \"33.3%%\"", got)
	}
}

func TestDuration(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{2*time.Hour + 15*time.Minute, "2h 15m"},
		{45 * time.Minute, "45m"},
		{30 * time.Second, "30s"},
		{-45 * time.Minute, "45m"},
	}

	for _, c := range cases {
		if got := Duration(c.d); got != c.want {
			t.Errorf("Duration(%v) = %q, want %q", c.d, got, c.want)
		}
	}
}

func TestDateZero(t *testing.T) {
	if got := Date(time.Time{}); got != "-" {
		t.Fatalf("Date(zero) = %q, want \"-\"", got)
	}
}
