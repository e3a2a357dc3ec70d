package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	ScoringStrict = "strict"
	ScoringLegacy = "legacy"

	// WebhookPath is where Telegram posts updates in webhook mode.
	WebhookPath = "/webhook"
)

var ErrNoToken = errors.New("TELEGRAM_TOKEN (or BOT_TOKEN) is not set")

type Config struct {
	Server   ServerConfig
	Telegram TelegramConfig
	Forensic ForensicConfig
	S3       S3Config
}

type ServerConfig struct {
	Host string
	Port string
}

type TelegramConfig struct {
	Token           string
	WebhookBaseURL  string
	WebhookSecret   string
	MaxPhotoSize    int64
	// DownloadTimeout comes from DOWNLOAD_TIMEOUT and needs a unit, e.g. "30s".
	// A bare number is read as nanoseconds and rejected by validation.
	DownloadTimeout time.Duration
}

const minDownloadTimeout = time.Second

// WebhookEnabled reports whether updates arrive via webhook instead of long polling.
func (t TelegramConfig) WebhookEnabled() bool {
	return t.WebhookBaseURL != ""
}

func (t TelegramConfig) WebhookURL() string {
	return t.WebhookBaseURL + WebhookPath
}

type ForensicConfig struct {
	ELAQuality     int
	NoiseThreshold float64
	ELAThreshold   float64
	ExifKeywords   []string
	ScoringMode    string
}

type S3Config struct {
	Enabled         bool
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Region          string
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("PORT", "10000")
	v.SetDefault("MAX_PHOTO_SIZE", 20*1024*1024) // Bot API download limit
	v.SetDefault("DOWNLOAD_TIMEOUT", 30*time.Second)
	v.SetDefault("ELA_QUALITY", 90)
	v.SetDefault("NOISE_THRESHOLD", 8.0)
	v.SetDefault("ELA_THRESHOLD", 20.0)
	v.SetDefault("EXIF_KEYWORDS", []string{"ai", "stable", "diffusion", "midjourney", "generated"})
	v.SetDefault("SCORING_MODE", ScoringStrict)
	v.SetDefault("S3_ENABLED", false)
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_ACCESS_KEY_ID", "")
	v.SetDefault("S3_SECRET_ACCESS_KEY", "")
	v.SetDefault("S3_BUCKET_NAME", "inspector-reports")
	v.SetDefault("S3_REGION", "us-east-1")

	v.AutomaticEnv()
	return v
}

// Load reads the bot configuration from the environment.
func Load() (*Config, error) {
	v := newViper()

	token := v.GetString("TELEGRAM_TOKEN")
	if token == "" {
		token = v.GetString("BOT_TOKEN")
	}
	if token == "" {
		return nil, ErrNoToken
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetString("PORT"),
		},
		Telegram: TelegramConfig{
			Token:           token,
			WebhookBaseURL:  strings.TrimRight(v.GetString("WEBHOOK_BASE_URL"), "/"),
			WebhookSecret:   v.GetString("WEBHOOK_SECRET"),
			MaxPhotoSize:    v.GetInt64("MAX_PHOTO_SIZE"),
			DownloadTimeout: v.GetDuration("DOWNLOAD_TIMEOUT"),
		},
		Forensic: forensicConfig(v),
		S3:       s3Config(v),
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadForensic reads only the scoring settings; the inspect CLI needs no token.
func LoadForensic() (ForensicConfig, error) {
	cfg := forensicConfig(newViper())
	if err := validateForensic(cfg); err != nil {
		return ForensicConfig{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadS3 reads only the archive settings.
func LoadS3() S3Config {
	return s3Config(newViper())
}

func forensicConfig(v *viper.Viper) ForensicConfig {
	return ForensicConfig{
		ELAQuality:     v.GetInt("ELA_QUALITY"),
		NoiseThreshold: v.GetFloat64("NOISE_THRESHOLD"),
		ELAThreshold:   v.GetFloat64("ELA_THRESHOLD"),
		ExifKeywords:   splitKeywords(v.GetStringSlice("EXIF_KEYWORDS")),
		ScoringMode:    strings.ToLower(v.GetString("SCORING_MODE")),
	}
}

func s3Config(v *viper.Viper) S3Config {
	return S3Config{
		Enabled:         v.GetBool("S3_ENABLED"),
		Endpoint:        v.GetString("S3_ENDPOINT"),
		AccessKeyID:     v.GetString("S3_ACCESS_KEY_ID"),
		SecretAccessKey: v.GetString("S3_SECRET_ACCESS_KEY"),
		BucketName:      v.GetString("S3_BUCKET_NAME"),
		Region:          v.GetString("S3_REGION"),
	}
}

func validateForensic(cfg ForensicConfig) error {
	switch cfg.ScoringMode {
	case ScoringStrict, ScoringLegacy:
	default:
		return fmt.Errorf("unknown SCORING_MODE %q", cfg.ScoringMode)
	}

	if q := cfg.ELAQuality; q < 1 || q > 100 {
		return fmt.Errorf("ELA_QUALITY must be in 1..100, got %d", q)
	}

	return nil
}

func validate(cfg *Config) error {
	if err := validateForensic(cfg.Forensic); err != nil {
		return err
	}

	if cfg.Telegram.MaxPhotoSize <= 0 {
		return fmt.Errorf("MAX_PHOTO_SIZE must be positive")
	}

	if d := cfg.Telegram.DownloadTimeout; d < minDownloadTimeout {
		return fmt.Errorf("DOWNLOAD_TIMEOUT must be at least %s (use a unit suffix such as 30s), got %s", minDownloadTimeout, d)
	}

	if cfg.S3.Enabled && cfg.S3.BucketName == "" {
		return fmt.Errorf("S3_BUCKET_NAME is required when S3_ENABLED is set")
	}

	return nil
}

// splitKeywords accepts both a real list and a single comma separated env value.
func splitKeywords(raw []string) []string {
	var out []string
	for _, item := range raw {
		for _, kw := range strings.Split(item, ",") {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				out = append(out, kw)
			}
		}
	}
	return out
}
