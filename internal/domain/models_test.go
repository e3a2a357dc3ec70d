package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExifHintRender(t *testing.T) {
	assert.Equal(t, "absent", ExifHint{Text: "absent"}.Render())

	hint := ExifHint{
		Text: "natural",
		Tags: []ExifTag{{Name: "Make", Value: "Canon"}, {Name: "Software", Value: "GIMP"}},
	}
	assert.Equal(t, "natural\n\nMake: Canon\nSoftware: GIMP", hint.Render())
}

func TestExifHintFullText(t *testing.T) {
	hint := ExifHint{
		Text: "natural",
		Tags: []ExifTag{
			{Name: "Artist", Value: "Jane…", Full: "Jane Doe, Studio Rain"},
			{Name: "Make", Value: "Canon"},
		},
	}
	assert.Equal(t, "natural\n\nArtist: Jane…\nMake: Canon", hint.Render())
	assert.Equal(t, "natural\n\nArtist: Jane Doe, Studio Rain\nMake: Canon", hint.FullText())
}

func TestVerdictText(t *testing.T) {
	assert.Equal(t, "✔ Низкая вероятность AI.", LowProbability.Text())
	assert.Equal(t, "⚠️ Есть признаки AI.", SomeIndicators.Text())
	assert.Equal(t, "❌ Высокая вероятность AI-генерации.", HighProbability.Text())
}

func TestReportJSONUsesNames(t *testing.T) {
	report := Report{
		Exif:    ExifHint{Status: ExifSuspicious, Keyword: "stable"},
		Verdict: HighProbability,
	}

	body, err := json.Marshal(report)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"verdict":"high"`)
	assert.Contains(t, string(body), `"status":"suspicious"`)

	var back Report
	require.NoError(t, json.Unmarshal(body, &back))
	assert.Equal(t, HighProbability, back.Verdict)
	assert.Equal(t, ExifSuspicious, back.Exif.Status)
}

func TestUnmarshalUnknownVerdict(t *testing.T) {
	var v Verdict
	assert.Error(t, v.UnmarshalText([]byte("maybe")))
}
