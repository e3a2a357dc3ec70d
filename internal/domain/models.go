package domain

import (
	"fmt"
	"strings"
	"time"
)

type ExifStatus int

const (
	ExifAbsent ExifStatus = iota
	ExifUnreadable
	ExifSuspicious
	ExifNatural
)

func (s ExifStatus) String() string {
	switch s {
	case ExifAbsent:
		return "absent"
	case ExifUnreadable:
		return "unreadable"
	case ExifSuspicious:
		return "suspicious"
	case ExifNatural:
		return "natural"
	}
	return "unknown"
}

func (s ExifStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *ExifStatus) UnmarshalText(text []byte) error {
	for _, st := range []ExifStatus{ExifAbsent, ExifUnreadable, ExifSuspicious, ExifNatural} {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown exif status %q", text)
}

// ExifTag is one readable metadata entry, kept in display order.
type ExifTag struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	// Full is the untruncated value when Value was shortened for display.
	Full string `json:"-"`
}

type ExifHint struct {
	Status  ExifStatus `json:"status"`
	Keyword string     `json:"keyword,omitempty"` // set only for ExifSuspicious
	Text    string     `json:"text"`
	Tags    []ExifTag  `json:"tags,omitempty"`
}

// Render joins the hint line with the readable tag mapping, one tag per line.
func (h ExifHint) Render() string {
	return h.render(false)
}

// FullText is Render with untruncated tag values.
func (h ExifHint) FullText() string {
	return h.render(true)
}

func (h ExifHint) render(full bool) string {
	if len(h.Tags) == 0 {
		return h.Text
	}

	var b strings.Builder
	b.WriteString(h.Text)
	b.WriteString("\n")
	for _, tag := range h.Tags {
		value := tag.Value
		if full && tag.Full != "" {
			value = tag.Full
		}
		b.WriteString("\n")
		b.WriteString(tag.Name)
		b.WriteString(": ")
		b.WriteString(value)
	}
	return b.String()
}

type Verdict int

const (
	LowProbability Verdict = iota
	SomeIndicators
	HighProbability
)

func (v Verdict) String() string {
	switch v {
	case LowProbability:
		return "low"
	case SomeIndicators:
		return "some"
	case HighProbability:
		return "high"
	}
	return "unknown"
}

func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *Verdict) UnmarshalText(text []byte) error {
	for _, vv := range []Verdict{LowProbability, SomeIndicators, HighProbability} {
		if vv.String() == string(text) {
			*v = vv
			return nil
		}
	}
	return fmt.Errorf("unknown verdict %q", text)
}

// Text is the one-line explanation shown to the user.
func (v Verdict) Text() string {
	switch v {
	case LowProbability:
		return "✔ Низкая вероятность AI."
	case SomeIndicators:
		return "⚠️ Есть признаки AI."
	default:
		return "❌ Высокая вероятность AI-генерации."
	}
}

type Report struct {
	Width    int           `json:"width"`
	Height   int           `json:"height"`
	Format   string        `json:"format"`
	Exif     ExifHint      `json:"exif"`
	Noise    float64       `json:"noise"`
	ELA      float64       `json:"ela"`
	Score    float64       `json:"score"`
	Verdict  Verdict       `json:"verdict"`
	Duration time.Duration `json:"duration_ns"`
}

// Photo is one downloaded attachment waiting for analysis.
type Photo struct {
	Data         []byte
	ChatID       int64
	FileUniqueID string
	ContentType  string
}

// ArchiveRecord is what gets written to the optional report archive.
type ArchiveRecord struct {
	ID           string    `json:"id"`
	ChatID       int64     `json:"chat_id"`
	FileUniqueID string    `json:"file_unique_id"`
	ContentType  string    `json:"content_type"`
	Size         int64     `json:"size"`
	ReceivedAt   time.Time `json:"received_at"`
	Report       *Report   `json:"report"`
}
