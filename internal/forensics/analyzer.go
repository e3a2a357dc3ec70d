package forensics

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"inspectoradf/internal/config"
	"inspectoradf/internal/domain"
	"inspectoradf/pkg/utils"
)

var ErrDecode = errors.New("cannot decode image")

type Options struct {
	ELAQuality int
	Keywords   []string
	Score      ScoreOptions
}

func DefaultOptions() Options {
	return Options{
		ELAQuality: DefaultELAQuality,
		Keywords:   DefaultKeywords,
		Score:      DefaultScoreOptions(),
	}
}

func OptionsFromConfig(cfg config.ForensicConfig) Options {
	return Options{
		ELAQuality: cfg.ELAQuality,
		Keywords:   cfg.ExifKeywords,
		Score: ScoreOptions{
			NoiseThreshold: cfg.NoiseThreshold,
			ELAThreshold:   cfg.ELAThreshold,
			Legacy:         cfg.ScoringMode == config.ScoringLegacy,
		},
	}
}

// Analyzer is stateless; one instance can serve concurrent calls.
type Analyzer struct {
	opts Options
	proc *utils.ImageProcessor
	log  *zap.Logger
}

func NewAnalyzer(opts Options, log *zap.Logger) *Analyzer {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.ELAQuality == 0 {
		opts.ELAQuality = DefaultELAQuality
	}
	if opts.Keywords == nil {
		opts.Keywords = DefaultKeywords
	}

	return &Analyzer{
		opts: opts,
		proc: utils.NewImageProcessor(log),
		log:  log,
	}
}

func (a *Analyzer) Analyze(data []byte) (*domain.Report, error) {
	start := time.Now()

	img, format, err := a.proc.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	hint := ExtractExifHint(data, a.opts.Keywords)
	noise := NoiseLevel(img)

	ela, err := ErrorLevel(a.proc, img, a.opts.ELAQuality)
	if err != nil {
		return nil, fmt.Errorf("error level analysis: %w", err)
	}

	score := Score(hint, noise, ela, a.opts.Score)

	report := &domain.Report{
		Width:    img.Rect.Dx(),
		Height:   img.Rect.Dy(),
		Format:   format,
		Exif:     hint,
		Noise:    noise,
		ELA:      ela,
		Score:    score,
		Verdict:  VerdictFor(score),
		Duration: time.Since(start),
	}

	a.log.Debug("Image analyzed",
		zap.String("format", format),
		zap.Int("width", report.Width),
		zap.Int("height", report.Height),
		zap.Stringer("exif", hint.Status),
		zap.Float64("noise", noise),
		zap.Float64("ela", ela),
		zap.Float64("score", score),
		zap.Stringer("verdict", report.Verdict),
		zap.Duration("took", report.Duration))

	return report, nil
}
