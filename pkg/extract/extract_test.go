package extract

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestAmountsFlags(t *testing.T) {
	am := Amounts("1,00 stu € 150,00")
	if len(am) != 2 {
		t.Fatalf("expected 2 amounts got %v", am)
	}
	if !am[0].Value.Equal(dec("1")) || am[0].HasCurrency || !am[0].HasUnit {
		t.Fatalf("first amount wrong: %+v", am[0])
	}
	if !am[1].Value.Equal(dec("150")) || !am[1].HasCurrency {
		t.Fatalf("second amount wrong: %+v", am[1])
	}
}

func TestAmountsDiscardsImplausible(t *testing.T) {
	if am := Amounts("999999,00"); len(am) != 0 {
		t.Fatalf("implausible amount kept: %v", am)
	}
}

func TestAmountsGroupedThousands(t *testing.T) {
	am := Amounts("totaal 1.234,56")
	if len(am) != 1 || !am[0].Value.Equal(dec("1234.56")) {
		t.Fatalf("got %v", am)
	}
}

func TestFilteredAmountsSuppressesBareQuantities(t *testing.T) {
	// unit-marked without currency, and small bare value: both dropped
	if got := FilteredAmounts("2,00 stu 4,00"); len(got) != 0 {
		t.Fatalf("expected nothing, got %v", got)
	}
	got := FilteredAmounts("2,00 stuk 150,00")
	if len(got) != 1 || !got[0].Equal(dec("150")) {
		t.Fatalf("got %v", got)
	}
}

func TestCodesLengthBounds(t *testing.T) {
	// 1234 -> too short even as raw run; 00123456 -> 123456; 1234567890123 -> 13 digits, dropped
	codes := Codes("ref 00123-456 x 1234567890123 y 12 34")
	if len(codes) != 1 || codes[0] != "123456" {
		t.Fatalf("got %v", codes)
	}
}

func TestLineContainsCode(t *testing.T) {
	if !LineContainsCode("taak 12 34-56 herstel", "123456") {
		t.Fatalf("embedded punctuation defeated containment")
	}
	if LineContainsCode("taak 123457", "123456") {
		t.Fatalf("false positive containment")
	}
}

func TestQuantityCandidatesCues(t *testing.T) {
	got := QuantityCandidates("3 x 50,00 aantal: 2 en 4,5 m2")
	want := []string{"3", "2", "4.5", "50"} // pattern order; trailing 50 via 'x 50'
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if !got[i].Equal(dec(want[i])) {
			t.Fatalf("candidate %d: got %s want %s (all %v)", i, got[i], want[i], got)
		}
	}
}

func TestQuantityBounds(t *testing.T) {
	if got := QuantityCandidates("200000 stuks"); len(got) != 0 {
		t.Fatalf("oversized quantity kept: %v", got)
	}
}

func TestBestQuantitySkipsCatalogCode(t *testing.T) {
	// "st 12345" would read the code as a quantity without the guard
	q := BestQuantity("st 12345", "12345")
	if !q.Equal(dec("1")) {
		t.Fatalf("got %s", q)
	}
}

func TestBestQuantityDefault(t *testing.T) {
	if q := BestQuantity("herstelwerkzaamheden dak", ""); !q.Equal(dec("1")) {
		t.Fatalf("got %s", q)
	}
}

func TestInvoiceNumber(t *testing.T) {
	if got := InvoiceNumber("Factuurnummer: 2024-00451\nregel", "x.pdf"); got != "2024-00451" {
		t.Fatalf("got %q", got)
	}
	if got := InvoiceNumber("geen label", "scan_20240451.pdf"); got != "20240451" {
		t.Fatalf("got %q", got)
	}
	if got := InvoiceNumber("", "los.pdf"); got != "los.pdf" {
		t.Fatalf("got %q", got)
	}
}
