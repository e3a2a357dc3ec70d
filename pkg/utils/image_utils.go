package utils

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	_ "golang.org/x/image/webp"
)

var supportedExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

type ImageProcessor struct {
	log *zap.Logger
}

func NewImageProcessor(log *zap.Logger) *ImageProcessor {
	if log == nil {
		log = zap.NewNop()
	}
	return &ImageProcessor{log: log}
}

// Decode decodes any registered format and flattens it into an RGBA raster.
func (p *ImageProcessor) Decode(data []byte) (*image.RGBA, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}

	return ToRGBA(img), format, nil
}

// Recompress encodes img as JPEG at the given quality and decodes it back.
func (p *ImageProcessor) Recompress(img image.Image, quality int) (image.Image, error) {
	var buf bytes.Buffer

	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("jpeg encode: %w", err)
	}
	size := buf.Len()

	out, err := jpeg.Decode(&buf)
	if err != nil {
		return nil, fmt.Errorf("jpeg decode: %w", err)
	}

	p.log.Debug("Image recompressed",
		zap.Int("quality", quality),
		zap.Int("size", size))

	return out, nil
}

// ListImageFiles returns the supported image files directly inside dir.
func (p *ImageProcessor) ListImageFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		if !IsSupportedImage(entry.Name()) {
			p.log.Debug("Skipping unsupported file", zap.String("file", entry.Name()))
			continue
		}

		files = append(files, filepath.Join(dir, entry.Name()))
	}

	return files, nil
}

func IsSupportedImage(name string) bool {
	return supportedExt[strings.ToLower(filepath.Ext(name))]
}

func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}

	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}
