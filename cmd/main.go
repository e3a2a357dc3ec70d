package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"inspectoradf/internal/config"
	"inspectoradf/internal/forensics"
	"inspectoradf/internal/repository"
	"inspectoradf/internal/server"
	"inspectoradf/internal/service"
	"inspectoradf/internal/telegram"
	"inspectoradf/pkg/logger"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	log, err := logger.NewSugared(os.Getenv("LOG_LEVEL"))
	if err != nil {
		os.Stderr.WriteString("CRITICAL: Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	analyzer := forensics.NewAnalyzer(forensics.OptionsFromConfig(cfg.Forensic), log.Desugar())
	if cfg.Forensic.ScoringMode == config.ScoringLegacy {
		log.Warn("Legacy scoring enabled: the EXIF weight is matched against the rendered hint text")
	}

	var archive repository.S3Repository
	if cfg.S3.Enabled {
		archive, err = repository.NewS3Repository(ctx, &cfg.S3, log.Desugar())
		if err != nil {
			log.Fatal("Failed to create S3 repository: ", err)
		}
	}

	svc := service.NewAnalysisService(analyzer, archive, log.Desugar())

	tg, err := telegram.New(cfg.Telegram, svc, log.Desugar())
	if err != nil {
		log.Fatal("Failed to create bot: ", err)
	}

	srv := server.New(cfg, tg.WebhookHandler(), log.Desugar())

	go func() {
		log.Infof("Starting health server on %s:%s", cfg.Server.Host, cfg.Server.Port)
		if err := srv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed: ", err)
			stop()
		}
	}()

	botDone := make(chan struct{})
	go func() {
		defer close(botDone)
		if err := tg.Run(ctx); err != nil {
			log.Error("Bot failed: ", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	select {
	case <-botDone:
	case <-shutdownCtx.Done():
		log.Warn("Bot did not stop before the shutdown deadline")
	}

	if err := svc.Wait(shutdownCtx); err != nil {
		log.Warnf("Pending archive writes abandoned: %v", err)
	}

	log.Info("Server exited")
}
