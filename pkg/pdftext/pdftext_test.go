package pdftext

import (
	"image"
	"image/color"
	"reflect"
	"testing"
)

func TestSplitLines(t *testing.T) {
	got := SplitLines("  Factuur 2024-00451  \n\n\t123456 kozijn 2,00 stuk 300,00\n  \n")
	want := []string{"Factuur 2024-00451", "123456 kozijn 2,00 stuk 300,00"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %q", got)
	}
}

func TestSplitLinesEmpty(t *testing.T) {
	if got := SplitLines("  \n \t \n"); got != nil {
		t.Fatalf("got %q", got)
	}
}

func TestThresholdBinarizes(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{30, 30, 30, 255})
	img.SetNRGBA(1, 0, color.NRGBA{240, 240, 240, 255})
	out := threshold(img, 200)
	if out.NRGBAAt(0, 0).R != 0 || out.NRGBAAt(1, 0).R != 255 {
		t.Fatalf("pixels %v %v", out.NRGBAAt(0, 0), out.NRGBAAt(1, 0))
	}
}

func TestLinesMissingFile(t *testing.T) {
	e := NewExtractor(false)
	if _, _, err := e.Lines("/nonexistent/nope.pdf"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
