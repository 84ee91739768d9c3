package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
)

func writeCatalog(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeCatalog(t, "catalog.csv",
		"Taakcode,Omschrijving,Koopprijs (ex BTW)\n"+
			"123456,vervangen kozijn,\"150,00\"\n"+
			"654321,schilderwerk,\"45,50\"\n"+
			",lege regel,\n")
	cat, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cat.Len() != 2 {
		t.Fatalf("entries: %d", cat.Len())
	}
	if price := cat.UnitPrice("654321"); !price.Equal(decimal.RequireFromString("45.50")) {
		t.Fatalf("price %s", price)
	}
	if desc := cat.Description("123456"); desc != "vervangen kozijn" {
		t.Fatalf("description %q", desc)
	}
}

func TestLoadCSVSemicolon(t *testing.T) {
	path := writeCatalog(t, "catalog.csv",
		"Code;Prijs;Omschrijving\n123456;150,00;kozijn\n")
	cat, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cat.Len() != 1 || !cat.Has("123456") {
		t.Fatalf("catalog %v", cat.Codes())
	}
}

func TestLoadCSVSkipsPreamble(t *testing.T) {
	path := writeCatalog(t, "catalog.csv",
		"Prijslijst 2026\n\nTaakcode,Koopprijs\n000789,\"12,50\"\n")
	cat, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	// leading zeros are stripped during normalization
	if !cat.Has("789") {
		t.Fatalf("codes %v", cat.Codes())
	}
}

func TestLoadEmptyCatalog(t *testing.T) {
	path := writeCatalog(t, "catalog.csv", "Taakcode,Koopprijs\n,\n")
	if _, err := Load(path); !errors.Is(err, ErrEmptyCatalog) {
		t.Fatalf("err = %v", err)
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := writeCatalog(t, "catalog.txt", "x")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoadMissingHeader(t *testing.T) {
	path := writeCatalog(t, "catalog.csv", "a,b\n1,2\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error")
	}
}
