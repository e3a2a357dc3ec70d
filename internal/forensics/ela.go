package forensics

import (
	"fmt"
	"image"

	"inspectoradf/pkg/utils"
)

const DefaultELAQuality = 90

// ErrorLevel recompresses img as JPEG at quality and returns the mean absolute
// per-pixel difference, averaged over the R, G and B channels.
func ErrorLevel(p *utils.ImageProcessor, img *image.RGBA, quality int) (float64, error) {
	recompressed, err := p.Recompress(img, quality)
	if err != nil {
		return 0, fmt.Errorf("recompress: %w", err)
	}

	return meanAbsDiff(img, utils.ToRGBA(recompressed)), nil
}

func meanAbsDiff(a, b *image.RGBA) float64 {
	w, h := a.Rect.Dx(), a.Rect.Dy()
	if w == 0 || h == 0 {
		return 0
	}

	var total uint64
	for y := 0; y < h; y++ {
		ra := a.Pix[y*a.Stride : y*a.Stride+w*4]
		rb := b.Pix[y*b.Stride : y*b.Stride+w*4]
		for x := 0; x < len(ra); x += 4 {
			total += absDiff(ra[x], rb[x])
			total += absDiff(ra[x+1], rb[x+1])
			total += absDiff(ra[x+2], rb[x+2])
		}
	}

	return float64(total) / float64(w*h*3)
}

func absDiff(a, b uint8) uint64 {
	if a > b {
		return uint64(a - b)
	}
	return uint64(b - a)
}
