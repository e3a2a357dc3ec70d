package utils

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grayImage(w, h int, v uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{v, v, v, 255})
		}
	}
	return img
}

func TestDecodePNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, grayImage(10, 6, 200)))

	p := NewImageProcessor(nil)
	img, format, err := p.Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 10, img.Bounds().Dx())
	assert.Equal(t, 6, img.Bounds().Dy())
	assert.Equal(t, color.RGBA{200, 200, 200, 255}, img.RGBAAt(3, 3))
}

func TestDecodeGarbage(t *testing.T) {
	p := NewImageProcessor(nil)
	_, _, err := p.Decode([]byte("definitely not an image"))
	assert.Error(t, err)
}

func TestRecompressKeepsBounds(t *testing.T) {
	p := NewImageProcessor(nil)
	out, err := p.Recompress(grayImage(16, 8, 128), 90)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 16, 8), out.Bounds())
}

func TestToRGBAShiftsOrigin(t *testing.T) {
	src := grayImage(8, 8, 10)
	sub := src.SubImage(image.Rect(2, 2, 6, 6))

	rgba := ToRGBA(sub)
	assert.Equal(t, image.Rect(0, 0, 4, 4), rgba.Bounds())
}

func TestListImageFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.jpg", "b.PNG", "notes.txt", "c.webp"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.jpg"), 0755))

	files, err := NewImageProcessor(nil).ListImageFiles(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(dir, "a.jpg"),
		filepath.Join(dir, "b.PNG"),
		filepath.Join(dir, "c.webp"),
	}, files)
}
