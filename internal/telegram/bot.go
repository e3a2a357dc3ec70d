package telegram

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"inspectoradf/internal/config"
	"inspectoradf/internal/service"
)

// handlerWorkers bounds concurrent analyses. Handlers run on the workers
// themselves, so Start and StartWebhook return only after in-flight updates.
const handlerWorkers = 4

type Bot struct {
	bot *bot.Bot
	cfg config.TelegramConfig
	log *zap.Logger
}

// New builds the bot and registers its handlers. Extra options are appended
// after the defaults; tests use them to point the client at a fake API.
func New(cfg config.TelegramConfig, svc service.AnalysisService, log *zap.Logger, extra ...bot.Option) (*Bot, error) {
	if cfg.WebhookEnabled() && cfg.WebhookSecret == "" {
		cfg.WebhookSecret = uuid.NewString()
	}

	h := NewHandlers(svc, &http.Client{Timeout: cfg.DownloadTimeout}, cfg.MaxPhotoSize, log)

	opts := []bot.Option{
		bot.WithDefaultHandler(adapt(h.Default)),
		bot.WithErrorsHandler(func(err error) {
			log.Error("Telegram API error", zap.Error(err))
		}),
		bot.WithNotAsyncHandlers(),
		bot.WithWorkers(handlerWorkers),
	}
	if cfg.WebhookEnabled() {
		opts = append(opts, bot.WithWebhookSecretToken(cfg.WebhookSecret))
	}
	opts = append(opts, extra...)

	b, err := bot.New(cfg.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	b.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, adapt(h.Start))
	b.RegisterHandlerMatchFunc(isImageMessage, adapt(h.Photo))

	return &Bot{
		bot: b,
		cfg: cfg,
		log: log,
	}, nil
}

func adapt(f func(ctx context.Context, m Messenger, update *models.Update)) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		f(ctx, b, update)
	}
}

// WebhookHandler returns the update receiver for the HTTP server, or nil when
// the bot uses long polling.
func (b *Bot) WebhookHandler() http.Handler {
	if !b.cfg.WebhookEnabled() {
		return nil
	}
	return b.bot.WebhookHandler()
}

// Run blocks until ctx is cancelled and the handlers already running return.
func (b *Bot) Run(ctx context.Context) error {
	if !b.cfg.WebhookEnabled() {
		if _, err := b.bot.DeleteWebhook(ctx, &bot.DeleteWebhookParams{}); err != nil {
			b.log.Warn("Failed to delete webhook", zap.Error(err))
		}

		b.log.Info("Starting bot with long polling")
		b.bot.Start(ctx)
		return nil
	}

	url := b.cfg.WebhookURL()
	if _, err := b.bot.SetWebhook(ctx, &bot.SetWebhookParams{
		URL:            url,
		SecretToken:    b.cfg.WebhookSecret,
		AllowedUpdates: []string{"message"},
	}); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}

	b.log.Info("Starting bot with webhook", zap.String("url", url))
	b.bot.StartWebhook(ctx)
	return nil
}
