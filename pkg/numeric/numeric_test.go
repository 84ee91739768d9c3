package numeric

import "testing"

func TestCommaDecimalEqualsDotForm(t *testing.T) {
	a, ok := ParseDecimal("12,34")
	if !ok {
		t.Fatalf("parse failed")
	}
	b, _ := ParseDecimal("12.34")
	if !a.Equal(b) {
		t.Fatalf("12,34 != 12.34: got %s vs %s", a, b)
	}
}

func TestRightmostSeparatorIsDecimalPoint(t *testing.T) {
	cases := map[string]string{
		"1.234,56":  "1234.56",
		"1,234.56":  "1234.56",
		"1 234,56":  "1234.56",
		"12.500,00": "12500",
	}
	for in, want := range cases {
		d, ok := ParseDecimal(in)
		if !ok {
			t.Fatalf("parse %q failed", in)
		}
		if d.String() != want {
			t.Fatalf("parse %q: got %s want %s", in, d, want)
		}
	}
}

func TestCleanNoise(t *testing.T) {
	if got := CleanNoise("12,00 m?"); got != "12,00 m2" {
		t.Fatalf("m? not repaired: %q", got)
	}
	if got := CleanNoise("O,50"); got != "0,50" {
		t.Fatalf("O, not repaired: %q", got)
	}
	if got := CleanNoise(""); got != "" {
		t.Fatalf("empty input changed: %q", got)
	}
}

func TestNormalizeCode(t *testing.T) {
	if got := NormalizeCode("00123-456 78"); got != "12345678" {
		t.Fatalf("got %q", got)
	}
}

func TestParseDecimalGarbage(t *testing.T) {
	if _, ok := ParseDecimal("12,34,56x"); ok {
		t.Fatalf("expected parse failure")
	}
}
