package telegram

import (
	"fmt"
	"strings"

	"github.com/go-telegram/bot"

	"inspectoradf/internal/domain"
)

// Telegram rejects messages over 4096 characters, so long tag lists are cut.
const maxReportTags = 40

// FormatReport renders the report as MarkdownV2 in fixed order: header, EXIF
// hint and tags, noise, ELA, verdict.
func FormatReport(r *domain.Report) string {
	var b strings.Builder

	b.WriteString("🧾 *")
	b.WriteString(bot.EscapeMarkdown("Inspector ADF — Forensic Report"))
	b.WriteString("*\n\n")

	b.WriteString(bot.EscapeMarkdown("EXIF:"))
	b.WriteString("\n")
	b.WriteString(bot.EscapeMarkdown(renderExif(r.Exif)))
	b.WriteString("\n\n")

	b.WriteString(bot.EscapeMarkdown(fmt.Sprintf("📉 Noise: %.2f", r.Noise)))
	b.WriteString("\n")
	b.WriteString(bot.EscapeMarkdown(fmt.Sprintf("📊 ELA: %.2f", r.ELA)))
	b.WriteString("\n\n")

	b.WriteString("🔎 *")
	b.WriteString(bot.EscapeMarkdown("Вердикт:"))
	b.WriteString("* ")
	b.WriteString(bot.EscapeMarkdown(r.Verdict.Text()))

	return b.String()
}

func renderExif(h domain.ExifHint) string {
	if len(h.Tags) <= maxReportTags {
		return h.Render()
	}

	cut := h
	cut.Tags = h.Tags[:maxReportTags]
	return fmt.Sprintf("%s\n… и ещё %d тегов", cut.Render(), len(h.Tags)-maxReportTags)
}
