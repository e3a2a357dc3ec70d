package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"inspectoradf/internal/domain"
	"inspectoradf/internal/forensics"
	"inspectoradf/internal/service"
)

const (
	textGreeting = "👋 Привет! Я Inspector ADF.\n" +
		"Отправь фото, и я выполню forensic-анализ."
	textAnalyzing      = "🔍 Анализирую фото…"
	textSendPhoto      = "📷 Отправь фото (или изображение файлом), и я проверю его на признаки AI."
	textTooLarge       = "⚠️ Файл слишком большой для анализа."
	textDownloadFailed = "⚠️ Не удалось скачать фото, попробуй ещё раз."
	textDecodeFailed   = "⚠️ Не удалось прочитать изображение — формат не поддерживается или файл повреждён."
	textAnalysisFailed = "⚠️ Не удалось выполнить анализ, попробуй ещё раз."
)

var errTooLarge = errors.New("file exceeds size limit")

// Messenger is the part of *bot.Bot the handlers talk to.
type Messenger interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	GetFile(ctx context.Context, params *bot.GetFileParams) (*models.File, error)
	FileDownloadLink(f *models.File) string
}

type Handlers struct {
	svc     service.AnalysisService
	client  *http.Client
	maxSize int64
	log     *zap.Logger
}

func NewHandlers(svc service.AnalysisService, client *http.Client, maxSize int64, log *zap.Logger) *Handlers {
	return &Handlers{
		svc:     svc,
		client:  client,
		maxSize: maxSize,
		log:     log,
	}
}

// attachment is the image variant picked from a message.
type attachment struct {
	FileID       string
	FileUniqueID string
	Size         int64
	ContentType  string
}

func (h *Handlers) Start(ctx context.Context, m Messenger, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.send(ctx, m, update.Message, textGreeting, "")
}

// Default answers anything that is not a command or an image.
func (h *Handlers) Default(ctx context.Context, m Messenger, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.Chat.ID == 0 {
		return
	}
	h.send(ctx, m, msg, textSendPhoto, "")
}

func (h *Handlers) Photo(ctx context.Context, m Messenger, update *models.Update) {
	msg := update.Message
	if msg == nil {
		return
	}

	att, ok := pickAttachment(msg)
	if !ok {
		return
	}

	log := h.log.With(
		zap.Int64("chat_id", msg.Chat.ID),
		zap.String("file_unique_id", att.FileUniqueID))

	if att.Size > h.maxSize {
		log.Info("Photo rejected by size", zap.Int64("size", att.Size))
		h.send(ctx, m, msg, textTooLarge, "")
		return
	}

	h.send(ctx, m, msg, textAnalyzing, "")

	data, err := h.download(ctx, m, att.FileID)
	if err != nil {
		log.Error("Failed to download photo", zap.Error(err))
		if errors.Is(err, errTooLarge) {
			h.send(ctx, m, msg, textTooLarge, "")
		} else {
			h.send(ctx, m, msg, textDownloadFailed, "")
		}
		return
	}

	report, err := h.svc.Analyze(ctx, domain.Photo{
		Data:         data,
		ChatID:       msg.Chat.ID,
		FileUniqueID: att.FileUniqueID,
		ContentType:  att.ContentType,
	})
	if err != nil {
		log.Error("Failed to analyze photo", zap.Error(err))
		if errors.Is(err, forensics.ErrDecode) {
			h.send(ctx, m, msg, textDecodeFailed, "")
		} else {
			h.send(ctx, m, msg, textAnalysisFailed, "")
		}
		return
	}

	h.send(ctx, m, msg, FormatReport(report), models.ParseModeMarkdown)
}

func (h *Handlers) download(ctx context.Context, m Messenger, fileID string) ([]byte, error) {
	file, err := m.GetFile(ctx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}
	if file.FileSize > h.maxSize {
		return nil, errTooLarge
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.FileDownloadLink(file), nil)
	if err != nil {
		return nil, err
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, h.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	if int64(len(data)) > h.maxSize {
		return nil, errTooLarge
	}

	return data, nil
}

func (h *Handlers) send(ctx context.Context, m Messenger, msg *models.Message, text string, mode models.ParseMode) {
	_, err := m.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    msg.Chat.ID,
		Text:      text,
		ParseMode: mode,
		ReplyParameters: &models.ReplyParameters{
			MessageID:                msg.ID,
			AllowSendingWithoutReply: true,
		},
	})
	if err != nil {
		h.log.Error("Failed to send message",
			zap.Int64("chat_id", msg.Chat.ID),
			zap.Error(err))
	}
}

// pickAttachment takes the largest photo variant, or an image sent as a file.
func pickAttachment(msg *models.Message) (attachment, bool) {
	if len(msg.Photo) > 0 {
		best := msg.Photo[0]
		for _, p := range msg.Photo[1:] {
			if p.Width*p.Height > best.Width*best.Height {
				best = p
			}
		}
		return attachment{
			FileID:       best.FileID,
			FileUniqueID: best.FileUniqueID,
			Size:         int64(best.FileSize),
			ContentType:  "image/jpeg",
		}, true
	}

	if doc := msg.Document; doc != nil && strings.HasPrefix(doc.MimeType, "image/") {
		return attachment{
			FileID:       doc.FileID,
			FileUniqueID: doc.FileUniqueID,
			Size:         doc.FileSize,
			ContentType:  doc.MimeType,
		}, true
	}

	return attachment{}, false
}

func isImageMessage(update *models.Update) bool {
	if update.Message == nil {
		return false
	}
	_, ok := pickAttachment(update.Message)
	return ok
}
