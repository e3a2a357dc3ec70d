package service

import (
	"bytes"
	"context"
	"encoding/json"
	"mime"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"inspectoradf/internal/domain"
	"inspectoradf/internal/repository"
)

// DefaultArchiveTimeout bounds one background archive write.
const DefaultArchiveTimeout = 30 * time.Second

type AnalysisService interface {
	Analyze(ctx context.Context, photo domain.Photo) (*domain.Report, error)
	// Wait blocks until pending archive writes finish or ctx is done.
	Wait(ctx context.Context) error
}

// Analyzer scores one encoded image.
type Analyzer interface {
	Analyze(data []byte) (*domain.Report, error)
}

type analysisService struct {
	analyzer Analyzer
	archive  repository.S3Repository
	log      *zap.Logger
	now      func() time.Time

	archiveTimeout time.Duration
	pending        sync.WaitGroup
}

// NewAnalysisService wires the analyzer to an optional archive; archive may be nil.
func NewAnalysisService(analyzer Analyzer, archive repository.S3Repository, log *zap.Logger) AnalysisService {
	return &analysisService{
		analyzer: analyzer,
		archive:  archive,
		log:      log,
		now:      time.Now,

		archiveTimeout: DefaultArchiveTimeout,
	}
}

func (s *analysisService) Analyze(ctx context.Context, photo domain.Photo) (*domain.Report, error) {
	report, err := s.analyzer.Analyze(photo.Data)
	if err != nil {
		return nil, err
	}

	s.log.Info("Photo analyzed",
		zap.Int64("chat_id", photo.ChatID),
		zap.String("file_unique_id", photo.FileUniqueID),
		zap.Stringer("exif", report.Exif.Status),
		zap.Float64("noise", report.Noise),
		zap.Float64("ela", report.ELA),
		zap.Stringer("verdict", report.Verdict))

	if s.archive != nil {
		s.pending.Add(1)
		go s.archiveAsync(context.WithoutCancel(ctx), photo, report)
	}

	return report, nil
}

// archiveAsync runs after the reply has been handed back; it outlives the
// request context but not archiveTimeout.
func (s *analysisService) archiveAsync(ctx context.Context, photo domain.Photo, report *domain.Report) {
	defer s.pending.Done()

	ctx, cancel := context.WithTimeout(ctx, s.archiveTimeout)
	defer cancel()

	if err := s.store(ctx, photo, report); err != nil {
		s.log.Warn("Failed to archive report",
			zap.String("file_unique_id", photo.FileUniqueID),
			zap.Error(err))
	}
}

func (s *analysisService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *analysisService) store(ctx context.Context, photo domain.Photo, report *domain.Report) error {
	record := domain.ArchiveRecord{
		ID:           uuid.New().String(),
		ChatID:       photo.ChatID,
		FileUniqueID: photo.FileUniqueID,
		ContentType:  photo.ContentType,
		Size:         int64(len(photo.Data)),
		ReceivedAt:   s.now().UTC(),
		Report:       report,
	}

	photoKey := repository.PhotoPrefix + record.ID + extensionFor(photo.ContentType)
	if err := s.archive.UploadFile(ctx, photoKey, bytes.NewReader(photo.Data), record.Size, photo.ContentType); err != nil {
		return err
	}

	body, err := json.Marshal(record)
	if err != nil {
		return err
	}

	reportKey := repository.ReportPrefix + record.ID + ".json"
	return s.archive.UploadFile(ctx, reportKey, bytes.NewReader(body), int64(len(body)), "application/json")
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg", "":
		return ".jpg"
	}
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".bin"
}
