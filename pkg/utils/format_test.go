package utils

import "testing"

func TestTruncate(t *testing.T) {
	cases := []struct {
		name  string
		text  string
		limit int
		want  string
	}{
		{"under limit", "short", 160, "short"},
		{"exactly limit", "12345", 5, "12345"},
		{"over limit", "hello world", 8, "hello..."},
		{"tiny limit", "hello", 2, "he"},
		{"zero limit", "hello", 0, "hello"},
		{"multibyte", "héllo wörld", 8, "héllo..."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Truncate(tc.text, tc.limit); got != tc.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tc.text, tc.limit, got, tc.want)
			}
		})
	}
}

func TestFormatPrice(t *testing.T) {
	if got := FormatPrice(230.1); got != "230.10" {
		t.Errorf("FormatPrice = %q", got)
	}
	if got := FormatPrice(0.005); got != "0.01" {
		t.Errorf("FormatPrice = %q", got)
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(1.5); got != "+1.50%" {
		t.Errorf("FormatPercent = %q", got)
	}
	if got := FormatPercent(-2.0); got != "-2.00%" {
		t.Errorf("FormatPercent = %q", got)
	}
}

func TestJoinSymbols(t *testing.T) {
	if got := JoinSymbols([]string{"AAPL", "MSFT"}); got != "AAPL, MSFT" {
		t.Errorf("JoinSymbols = %q", got)
	}
	if got := JoinSymbols(nil); got != "" {
		t.Errorf("JoinSymbols(nil) = %q", got)
	}
}
