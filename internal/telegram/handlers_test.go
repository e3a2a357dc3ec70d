package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"inspectoradf/internal/domain"
	"inspectoradf/internal/forensics"
)

type fakeMessenger struct {
	mu       sync.Mutex
	sent     []*bot.SendMessageParams
	fileReqs []string
	files    map[string]*models.File
	baseURL  string
}

func (f *fakeMessenger) SendMessage(_ context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, params)
	return &models.Message{}, nil
}

func (f *fakeMessenger) GetFile(_ context.Context, params *bot.GetFileParams) (*models.File, error) {
	f.fileReqs = append(f.fileReqs, params.FileID)
	file, ok := f.files[params.FileID]
	if !ok {
		return nil, errors.New("file not found")
	}
	return file, nil
}

func (f *fakeMessenger) FileDownloadLink(file *models.File) string {
	return f.baseURL + "/file/" + file.FilePath
}

func (f *fakeMessenger) texts() []string {
	var out []string
	for _, p := range f.sent {
		out = append(out, p.Text)
	}
	return out
}

type fakeService struct {
	report *domain.Report
	err    error
	photo  domain.Photo
}

func (s *fakeService) Analyze(_ context.Context, photo domain.Photo) (*domain.Report, error) {
	s.photo = photo
	return s.report, s.err
}

func (s *fakeService) Wait(context.Context) error { return nil }

func fileServer(t *testing.T, body []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/file/photos/big.jpg" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func photoUpdate() *models.Update {
	return &models.Update{Message: &models.Message{
		ID:   10,
		Chat: models.Chat{ID: 77},
		Photo: []models.PhotoSize{
			{FileID: "small", FileUniqueID: "u-small", Width: 90, Height: 90, FileSize: 1000},
			{FileID: "big", FileUniqueID: "u-big", Width: 1280, Height: 960, FileSize: 90000},
			{FileID: "mid", FileUniqueID: "u-mid", Width: 320, Height: 240, FileSize: 9000},
		},
	}}
}

func sampleReport() *domain.Report {
	return &domain.Report{
		Exif:    domain.ExifHint{Status: domain.ExifAbsent, Text: forensics.HintAbsent},
		Noise:   0,
		ELA:     0.12,
		Score:   0.3,
		Verdict: domain.SomeIndicators,
	}
}

func newTestHandlers(svc *fakeService, maxSize int64) *Handlers {
	return NewHandlers(svc, http.DefaultClient, maxSize, zap.NewNop())
}

func TestStartGreets(t *testing.T) {
	m := &fakeMessenger{}
	h := newTestHandlers(&fakeService{}, 1<<20)

	h.Start(context.Background(), m, &models.Update{Message: &models.Message{ID: 1, Chat: models.Chat{ID: 5}}})

	require.Len(t, m.sent, 1)
	assert.Equal(t, textGreeting, m.sent[0].Text)
	assert.Equal(t, int64(5), m.sent[0].ChatID)
}

func TestPhotoPicksLargestAndReplies(t *testing.T) {
	srv := fileServer(t, []byte("jpeg-bytes"))
	m := &fakeMessenger{
		baseURL: srv.URL,
		files:   map[string]*models.File{"big": {FileID: "big", FilePath: "photos/big.jpg"}},
	}
	svc := &fakeService{report: sampleReport()}
	h := newTestHandlers(svc, 1<<20)

	h.Photo(context.Background(), m, photoUpdate())

	assert.Equal(t, []string{"big"}, m.fileReqs)
	assert.Equal(t, []byte("jpeg-bytes"), svc.photo.Data)
	assert.Equal(t, int64(77), svc.photo.ChatID)
	assert.Equal(t, "u-big", svc.photo.FileUniqueID)
	assert.Equal(t, "image/jpeg", svc.photo.ContentType)

	require.Len(t, m.sent, 2)
	assert.Equal(t, textAnalyzing, m.sent[0].Text)
	assert.Equal(t, FormatReport(sampleReport()), m.sent[1].Text)
	assert.Equal(t, models.ParseModeMarkdown, m.sent[1].ParseMode)
	require.NotNil(t, m.sent[1].ReplyParameters)
	assert.Equal(t, 10, m.sent[1].ReplyParameters.MessageID)
}

func TestPhotoImageDocument(t *testing.T) {
	srv := fileServer(t, []byte("png-bytes"))
	m := &fakeMessenger{
		baseURL: srv.URL,
		files:   map[string]*models.File{"doc": {FileID: "doc", FilePath: "photos/big.jpg"}},
	}
	svc := &fakeService{report: sampleReport()}
	h := newTestHandlers(svc, 1<<20)

	h.Photo(context.Background(), m, &models.Update{Message: &models.Message{
		ID:       3,
		Chat:     models.Chat{ID: 8},
		Document: &models.Document{FileID: "doc", FileUniqueID: "u-doc", MimeType: "image/png", FileSize: 9},
	}})

	assert.Equal(t, "image/png", svc.photo.ContentType)
	assert.Equal(t, []string{textAnalyzing, FormatReport(sampleReport())}, m.texts())
}

func TestPhotoIgnoresNonImageDocument(t *testing.T) {
	m := &fakeMessenger{}
	h := newTestHandlers(&fakeService{}, 1<<20)

	update := &models.Update{Message: &models.Message{
		Chat:     models.Chat{ID: 8},
		Document: &models.Document{FileID: "doc", MimeType: "application/pdf"},
	}}
	assert.False(t, isImageMessage(update))

	h.Photo(context.Background(), m, update)
	assert.Empty(t, m.sent)
}

func TestPhotoTooLarge(t *testing.T) {
	m := &fakeMessenger{}
	svc := &fakeService{}
	h := newTestHandlers(svc, 500)

	h.Photo(context.Background(), m, photoUpdate())

	assert.Equal(t, []string{textTooLarge}, m.texts())
	assert.Empty(t, m.fileReqs)
	assert.Nil(t, svc.photo.Data)
}

func TestPhotoDownloadExceedsLimit(t *testing.T) {
	srv := fileServer(t, make([]byte, 2048))
	m := &fakeMessenger{
		baseURL: srv.URL,
		files:   map[string]*models.File{"big": {FileID: "big", FilePath: "photos/big.jpg"}},
	}
	update := photoUpdate()
	update.Message.Photo = update.Message.Photo[1:2]
	update.Message.Photo[0].FileSize = 0
	h := newTestHandlers(&fakeService{}, 1024)

	h.Photo(context.Background(), m, update)

	assert.Equal(t, []string{textAnalyzing, textTooLarge}, m.texts())
}

func TestPhotoDownloadFailure(t *testing.T) {
	m := &fakeMessenger{files: map[string]*models.File{}}
	svc := &fakeService{}
	h := newTestHandlers(svc, 1<<20)

	h.Photo(context.Background(), m, photoUpdate())

	assert.Equal(t, []string{textAnalyzing, textDownloadFailed}, m.texts())
	assert.Nil(t, svc.photo.Data)
}

func TestPhotoBadStatus(t *testing.T) {
	srv := fileServer(t, nil)
	m := &fakeMessenger{
		baseURL: srv.URL,
		files:   map[string]*models.File{"big": {FileID: "big", FilePath: "photos/missing.jpg"}},
	}
	h := newTestHandlers(&fakeService{}, 1<<20)

	h.Photo(context.Background(), m, photoUpdate())

	assert.Equal(t, []string{textAnalyzing, textDownloadFailed}, m.texts())
}

func TestPhotoDecodeFailure(t *testing.T) {
	srv := fileServer(t, []byte("garbage"))
	m := &fakeMessenger{
		baseURL: srv.URL,
		files:   map[string]*models.File{"big": {FileID: "big", FilePath: "photos/big.jpg"}},
	}
	svc := &fakeService{err: fmt.Errorf("%w: unknown format", forensics.ErrDecode)}
	h := newTestHandlers(svc, 1<<20)

	h.Photo(context.Background(), m, photoUpdate())

	assert.Equal(t, []string{textAnalyzing, textDecodeFailed}, m.texts())
}

func TestPhotoAnalysisFailure(t *testing.T) {
	srv := fileServer(t, []byte("jpeg"))
	m := &fakeMessenger{
		baseURL: srv.URL,
		files:   map[string]*models.File{"big": {FileID: "big", FilePath: "photos/big.jpg"}},
	}
	h := newTestHandlers(&fakeService{err: errors.New("boom")}, 1<<20)

	h.Photo(context.Background(), m, photoUpdate())

	assert.Equal(t, []string{textAnalyzing, textAnalysisFailed}, m.texts())
}

func TestDefaultHintsToSendPhoto(t *testing.T) {
	m := &fakeMessenger{}
	h := newTestHandlers(&fakeService{}, 1<<20)

	h.Default(context.Background(), m, &models.Update{Message: &models.Message{Chat: models.Chat{ID: 1}, Text: "hello"}})
	h.Default(context.Background(), m, &models.Update{})

	assert.Equal(t, []string{textSendPhoto}, m.texts())
}
