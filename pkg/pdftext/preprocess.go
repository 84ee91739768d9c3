package pdftext

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// prepare cleans a rendered page for Tesseract: grayscale, upscale small
// renders, a mild contrast/sharpen pass and a global threshold. Scanned
// invoices are dense text blocks, so one pass suffices.
func prepare(img image.Image) *image.NRGBA {
	gray := imaging.Grayscale(img)
	if gray.Bounds().Dy() < 1500 {
		gray = imaging.Resize(gray, 0, 2200, imaging.Lanczos)
	}
	gray = imaging.AdjustContrast(gray, 12)
	gray = imaging.Sharpen(gray, 0.6)
	return threshold(gray, 200)
}

// threshold maps every pixel to pure black or white around a global cutoff.
func threshold(img *image.NRGBA, cutoff uint8) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.GrayModel.Convert(img.At(x, y)).(color.Gray)
			v := uint8(255)
			if c.Y <= cutoff {
				v = 0
			}
			out.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return out
}
