package forensics

import (
	"bytes"
	"encoding/binary"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"

	"inspectoradf/internal/domain"
)

const (
	HintAbsent     = "❌ EXIF отсутствует — частый признак AI."
	HintUnreadable = "❌ Ошибка чтения EXIF — файл модифицирован."
	HintSuspicious = "⚠️ ПО изображения указывает на нейросеть."
	HintNatural    = "✔ EXIF выглядит естественно."

	maxTagValueLen = 64
)

var DefaultKeywords = []string{"ai", "stable", "diffusion", "midjourney", "generated"}

var exifHeader = []byte("Exif\x00\x00")

// ExtractExifHint classifies the metadata embedded in the raw file bytes.
// It never fails: parse errors are reported as ExifUnreadable.
func ExtractExifHint(data []byte, keywords []string) domain.ExifHint {
	block, ok := findExifBlock(data)
	if !ok {
		return domain.ExifHint{Status: domain.ExifAbsent, Text: HintAbsent}
	}

	x, err := exif.Decode(bytes.NewReader(block))
	if x == nil || (err != nil && exif.IsCriticalError(err)) {
		return domain.ExifHint{Status: domain.ExifUnreadable, Text: HintUnreadable}
	}

	c := &tagCollector{}
	if err := x.Walk(c); err != nil {
		return domain.ExifHint{Status: domain.ExifUnreadable, Text: HintUnreadable}
	}
	sort.Slice(c.tags, func(i, j int) bool { return c.tags[i].Name < c.tags[j].Name })

	hint := domain.ExifHint{Status: domain.ExifNatural, Text: HintNatural, Tags: c.tags}

	if tag, err := x.Get(exif.Software); err == nil {
		if sw, err := tag.StringVal(); err == nil {
			if kw, found := MatchKeyword(sw, keywords); found {
				hint.Status = domain.ExifSuspicious
				hint.Keyword = kw
				hint.Text = HintSuspicious
			}
		}
	}

	return hint
}

// MatchKeyword returns the first keyword contained in s, ignoring case.
func MatchKeyword(s string, keywords []string) (string, bool) {
	s = strings.ToLower(s)
	for _, kw := range keywords {
		kw = strings.ToLower(kw)
		if kw != "" && strings.Contains(s, kw) {
			return kw, true
		}
	}
	return "", false
}

type tagCollector struct {
	tags []domain.ExifTag
}

func (c *tagCollector) Walk(name exif.FieldName, tag *tiff.Tag) error {
	value, full := renderTag(tag)
	c.tags = append(c.tags, domain.ExifTag{Name: string(name), Value: value, Full: full})
	return nil
}

// renderTag returns the display value and, when that was shortened, the
// untruncated one.
func renderTag(tag *tiff.Tag) (string, string) {
	var s string
	if tag.Format() == tiff.StringVal {
		s, _ = tag.StringVal()
	} else {
		s = tag.String()
	}
	s = strings.TrimSpace(s)

	if utf8.RuneCountInString(s) > maxTagValueLen {
		return string([]rune(s)[:maxTagValueLen]) + "…", s
	}
	return s, ""
}

// findExifBlock returns the TIFF structure holding the metadata. TIFF files
// are returned whole; JPEG files are walked segment by segment up to the
// start of scan looking for an APP1 Exif block.
func findExifBlock(data []byte) ([]byte, bool) {
	if len(data) >= 4 {
		switch string(data[:4]) {
		case "II*\x00", "MM\x00*":
			return data, true
		}
	}

	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		return nil, false
	}

	i := 2
	for i+1 < len(data) {
		if data[i] != 0xFF {
			return nil, false
		}
		marker := data[i+1]
		i += 2

		switch {
		case marker == 0xFF:
			// fill byte
			i--
			continue
		case marker == 0x01 || (marker >= 0xD0 && marker <= 0xD7):
			continue
		case marker == 0xDA || marker == 0xD9:
			return nil, false
		}

		if i+2 > len(data) {
			return nil, false
		}
		length := int(binary.BigEndian.Uint16(data[i : i+2]))
		if length < 2 {
			return nil, false
		}
		end := i + length
		payload := data[i+2 : min(end, len(data))]

		if marker == 0xE1 && bytes.HasPrefix(payload, exifHeader) {
			// truncated blocks are handed to the parser and surface as unreadable
			return payload[len(exifHeader):], true
		}

		if end > len(data) {
			return nil, false
		}
		i = end
	}

	return nil, false
}
