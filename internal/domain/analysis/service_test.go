package analysis

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/eclatderm/visage/internal/domain/catalog"
	"github.com/eclatderm/visage/internal/infra/llm/chatgpt"
	apperrors "github.com/eclatderm/visage/pkg/errors"
)

func newTestService(chat *stubChatClient, photos *stubPhotoStore, results *stubResultStore) *service {
	svc := &service{
		cfg: Config{
			Model:          "gpt-test",
			Temperature:    0.2,
			MaxTokens:      4000,
			RequestTimeout: 5 * time.Second,
			MaxPhotos:      4,
			MaxPhotoBytes:  8 << 20,
		},
		client:   chat,
		photos:   photos,
		resolver: &stubResolver{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) },
	}
	if results != nil {
		svc.results = results
	}
	return svc
}

func testRequest() Request {
	return Request{
		Profile: Profile{
			Age:         34,
			SkinType:    "mixte",
			MainConcern: "Déshydratation",
		},
		Photos: []PhotoRef{{Key: "photos/face/abc", Role: PhotoFace}},
	}
}

func TestServiceAnalyzeSuccess(t *testing.T) {
	chat := &stubChatClient{
		responses: []chatgpt.ChatCompletionResponse{{
			Choices: []chatgpt.Choice{{
				Message: chatgpt.ResponseMessage{Role: "assistant", Content: validAnalysisJSON},
			}},
			Usage: chatgpt.Usage{PromptTokens: 900, CompletionTokens: 400, TotalTokens: 1300},
		}},
	}
	photos := &stubPhotoStore{blobs: map[string]StoredPhoto{
		"photos/face/abc": {Data: []byte("fake-jpeg"), MimeType: "image/jpeg"},
	}}
	results := &stubResultStore{saved: map[uuid.UUID]Response{}}

	svc := newTestService(chat, photos, results)
	resp, err := svc.Analyze(context.Background(), testRequest())
	require.NoError(t, err)

	require.False(t, resp.Degraded)
	require.Empty(t, resp.DegradedReason)
	require.NotEqual(t, uuid.Nil, resp.ID)
	require.Equal(t, svc.now(), resp.CreatedAt)

	// Overall is recomputed, never taken from the model: hydration 62
	// (0.15) and wrinkles 74 (0.20) give (9.3+14.8)/0.35 = 68.86.
	require.Equal(t, 69, resp.Scores.Overall)

	require.Equal(t, "Déshydratation légère", resp.Diagnostic.PrimaryCondition)
	require.Equal(t, "Déshydratation légère", resp.Assessment.MainConcern)
	require.Equal(t, IntensityLight, resp.Assessment.Intensity)
	require.Equal(t, 34, resp.Assessment.EstimatedSkinAge)

	require.Len(t, resp.Routine, 2)
	require.Equal(t, PhaseImmediate, resp.Routine[0].Phase)
	require.Equal(t, PhaseAdaptation, resp.Routine[1].Phase)
	// Resolved product references point at catalog records.
	require.Equal(t, "HYAL000001", resp.Routine[1].RecommendedProducts[0].CatalogID)

	require.NotEmpty(t, resp.Timing.Immediate.Duration)
	require.Equal(t, "En continu", resp.Timing.Maintenance.Duration)
	require.NotEmpty(t, resp.Schedule.Morning)

	// Reported usage wins over the local estimate.
	require.Equal(t, 1300, resp.Usage.TotalTokens)

	require.Equal(t, 1, chat.calls)
	require.Len(t, results.saved, 1)
	require.Contains(t, results.saved, resp.ID)
}

func TestServiceAnalyzeNoPhotos(t *testing.T) {
	svc := newTestService(&stubChatClient{}, &stubPhotoStore{}, nil)
	req := testRequest()
	req.Photos = nil

	_, err := svc.Analyze(context.Background(), req)
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}

func TestServiceAnalyzeTooManyPhotos(t *testing.T) {
	svc := newTestService(&stubChatClient{}, &stubPhotoStore{}, nil)
	req := testRequest()
	for i := 0; i < 5; i++ {
		req.Photos = append(req.Photos, PhotoRef{Key: "photos/zone/x", Role: PhotoZone})
	}

	_, err := svc.Analyze(context.Background(), req)
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}

func TestServiceAnalyzeMissingConcern(t *testing.T) {
	svc := newTestService(&stubChatClient{}, &stubPhotoStore{}, nil)
	req := testRequest()
	req.Profile.MainConcern = "  "

	_, err := svc.Analyze(context.Background(), req)
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}

func TestServiceAnalyzeAllPhotosUnloadable(t *testing.T) {
	photos := &stubPhotoStore{getErr: errors.New("object not found")}
	svc := newTestService(&stubChatClient{}, photos, nil)

	_, err := svc.Analyze(context.Background(), testRequest())
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}

func TestServiceAnalyzeDegradedOnChatError(t *testing.T) {
	chat := &stubChatClient{err: errors.New("upstream down")}
	photos := &stubPhotoStore{blobs: map[string]StoredPhoto{
		"photos/face/abc": {Data: []byte("fake-jpeg"), MimeType: "image/jpeg"},
	}}
	results := &stubResultStore{saved: map[uuid.UUID]Response{}}
	svc := newTestService(chat, photos, results)

	resp, err := svc.Analyze(context.Background(), testRequest())
	require.NoError(t, err)

	require.True(t, resp.Degraded)
	require.Equal(t, "llm_error", resp.DegradedReason)

	// The degraded response is fully populated: scores, a basic routine,
	// timings and a schedule.
	require.Len(t, resp.Scores.Details, len(ScoreKeys))
	require.Equal(t, 68, resp.Scores.Overall)
	require.Len(t, resp.Routine, 3)
	require.NotEmpty(t, resp.Schedule.Morning)
	require.NotEmpty(t, resp.Timing.Immediate.Duration)
	require.Equal(t, "Déshydratation", resp.Diagnostic.PrimaryCondition)

	// Degraded results are still cached for retrieval.
	require.Len(t, results.saved, 1)
}

func TestServiceAnalyzeDegradedOnTimeout(t *testing.T) {
	chat := &stubChatClient{err: context.DeadlineExceeded}
	photos := &stubPhotoStore{blobs: map[string]StoredPhoto{
		"photos/face/abc": {Data: []byte("fake-jpeg"), MimeType: "image/jpeg"},
	}}
	svc := newTestService(chat, photos, nil)

	resp, err := svc.Analyze(context.Background(), testRequest())
	require.NoError(t, err)
	require.True(t, resp.Degraded)
	require.Equal(t, "llm_timeout", resp.DegradedReason)
}

func TestServiceAnalyzeDegradedOnUnparsableResponse(t *testing.T) {
	chat := &stubChatClient{
		responses: []chatgpt.ChatCompletionResponse{{
			Choices: []chatgpt.Choice{{
				Message: chatgpt.ResponseMessage{Role: "assistant", Content: "Je ne peux pas analyser ces photos."},
			}},
		}},
	}
	photos := &stubPhotoStore{blobs: map[string]StoredPhoto{
		"photos/face/abc": {Data: []byte("fake-jpeg"), MimeType: "image/jpeg"},
	}}
	svc := newTestService(chat, photos, nil)

	resp, err := svc.Analyze(context.Background(), testRequest())
	require.NoError(t, err)
	require.True(t, resp.Degraded)
	require.Equal(t, "parse_error", resp.DegradedReason)
}

func TestServiceAnalyzeDegradedOnEmptyChoices(t *testing.T) {
	chat := &stubChatClient{responses: []chatgpt.ChatCompletionResponse{{}}}
	photos := &stubPhotoStore{blobs: map[string]StoredPhoto{
		"photos/face/abc": {Data: []byte("fake-jpeg"), MimeType: "image/jpeg"},
	}}
	svc := newTestService(chat, photos, nil)

	resp, err := svc.Analyze(context.Background(), testRequest())
	require.NoError(t, err)
	require.True(t, resp.Degraded)
	require.Equal(t, "llm_error", resp.DegradedReason)
}

func TestServiceAnalyzeSkipsFailedPhotos(t *testing.T) {
	chat := &stubChatClient{
		responses: []chatgpt.ChatCompletionResponse{{
			Choices: []chatgpt.Choice{{
				Message: chatgpt.ResponseMessage{Role: "assistant", Content: validAnalysisJSON},
			}},
		}},
	}
	photos := &stubPhotoStore{blobs: map[string]StoredPhoto{
		"photos/face/abc": {Data: []byte("fake-jpeg"), MimeType: "image/jpeg"},
	}}
	svc := newTestService(chat, photos, nil)

	req := testRequest()
	req.Photos = append(req.Photos, PhotoRef{Key: "photos/zone/missing", Role: PhotoZone})

	resp, err := svc.Analyze(context.Background(), req)
	require.NoError(t, err)
	require.False(t, resp.Degraded)
}

func TestServiceStorePhoto(t *testing.T) {
	photos := &stubPhotoStore{blobs: map[string]StoredPhoto{}}
	svc := newTestService(&stubChatClient{}, photos, nil)

	ref, err := svc.StorePhoto(context.Background(), PhotoProfileLeft, []byte("fake-jpeg"), "image/jpeg")
	require.NoError(t, err)
	require.Equal(t, PhotoProfileLeft, ref.Role)
	require.True(t, strings.HasPrefix(ref.Key, "photos/profil-gauche/"))
	require.Contains(t, photos.blobs, ref.Key)
}

func TestServiceStorePhotoEmpty(t *testing.T) {
	svc := newTestService(&stubChatClient{}, &stubPhotoStore{}, nil)
	_, err := svc.StorePhoto(context.Background(), PhotoFace, nil, "image/jpeg")
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}

func TestServiceStorePhotoTooLarge(t *testing.T) {
	svc := newTestService(&stubChatClient{}, &stubPhotoStore{}, nil)
	svc.cfg.MaxPhotoBytes = 4

	_, err := svc.StorePhoto(context.Background(), PhotoFace, []byte("too large"), "image/jpeg")
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}

func TestServiceGet(t *testing.T) {
	id := uuid.New()
	results := &stubResultStore{saved: map[uuid.UUID]Response{
		id: {ID: id},
	}}
	svc := newTestService(&stubChatClient{}, &stubPhotoStore{}, results)

	resp, found, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, id, resp.ID)

	_, found, err = svc.Get(context.Background(), uuid.New())
	require.NoError(t, err)
	require.False(t, found)
}

type stubChatClient struct {
	responses []chatgpt.ChatCompletionResponse
	err       error
	calls     int
}

func (s *stubChatClient) CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error) {
	if s.err != nil {
		return chatgpt.ChatCompletionResponse{}, s.err
	}
	if s.calls >= len(s.responses) {
		return chatgpt.ChatCompletionResponse{}, nil
	}
	resp := s.responses[s.calls]
	s.calls++
	return resp, nil
}

type stubPhotoStore struct {
	blobs  map[string]StoredPhoto
	getErr error
}

func (s *stubPhotoStore) Put(ctx context.Context, key string, data []byte, mimeType string) error {
	if s.blobs == nil {
		s.blobs = map[string]StoredPhoto{}
	}
	s.blobs[key] = StoredPhoto{Data: data, MimeType: mimeType}
	return nil
}

func (s *stubPhotoStore) Get(ctx context.Context, key string) (StoredPhoto, error) {
	if s.getErr != nil {
		return StoredPhoto{}, s.getErr
	}
	photo, ok := s.blobs[key]
	if !ok {
		return StoredPhoto{}, errors.New("not found")
	}
	return photo, nil
}

func (s *stubPhotoStore) Delete(ctx context.Context, keys []string) error {
	for _, key := range keys {
		delete(s.blobs, key)
	}
	return nil
}

func (s *stubPhotoStore) Clear(ctx context.Context) error {
	s.blobs = map[string]StoredPhoto{}
	return nil
}

type stubResolver struct{}

func (s *stubResolver) Resolve(ctx context.Context, identifier, fallbackName string) catalog.Product {
	if strings.Contains(identifier, "HYAL000001") {
		return catalog.Product{
			ID:       "HYAL000001",
			Name:     "Sérum Acide Hyaluronique",
			Brand:    "Éclat Derm",
			Category: "soin",
		}
	}
	product := catalog.Product{ID: "PLACEHOLDER", Name: fallbackName}
	return product
}

type stubResultStore struct {
	saved map[uuid.UUID]Response
}

func (s *stubResultStore) Save(ctx context.Context, res Response, ttl time.Duration) error {
	if s.saved == nil {
		s.saved = map[uuid.UUID]Response{}
	}
	s.saved[res.ID] = res
	return nil
}

func (s *stubResultStore) Get(ctx context.Context, id uuid.UUID) (Response, bool, error) {
	res, ok := s.saved[id]
	return res, ok, nil
}
