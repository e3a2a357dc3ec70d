package forensics

import (
	"image"
	"math"
)

const DefaultNoiseThreshold = 8.0

// NoiseLevel is the population standard deviation of 8-bit luminance.
func NoiseLevel(img *image.RGBA) float64 {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	n := w * h
	if n == 0 {
		return 0
	}

	var sum, sumSq float64
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < len(row); x += 4 {
			l := float64(luma(row[x], row[x+1], row[x+2]))
			sum += l
			sumSq += l * l
		}
	}

	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return math.Sqrt(variance)
}

// luma uses the ITU-R 601 weights of color.GrayModel.
func luma(r, g, b uint8) uint8 {
	y := (19595*uint32(r) + 38470*uint32(g) + 7471*uint32(b) + 1<<15) >> 16
	return uint8(y)
}
