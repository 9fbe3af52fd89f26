package analysis

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/eclatderm/visage/internal/infra/llm/chatgpt"
	apperrors "github.com/eclatderm/visage/pkg/errors"
	"github.com/eclatderm/visage/pkg/metrics"
)

// Config drives analysis limits and LLM parameters.
type Config struct {
	Model          string
	Temperature    float32
	MaxTokens      int
	RequestTimeout time.Duration
	MaxPhotos      int
	MaxPhotoBytes  int64
	CacheTTL       time.Duration
}

// Service exposes the skin analysis pipeline.
type Service interface {
	Analyze(ctx context.Context, req Request) (Response, error)
	Get(ctx context.Context, id uuid.UUID) (Response, bool, error)
	StorePhoto(ctx context.Context, role PhotoRole, data []byte, mimeType string) (PhotoRef, error)
	DeletePhotos(ctx context.Context, keys []string) error
}

type service struct {
	cfg      Config
	client   ChatClient
	photos   PhotoStore
	resolver ProductResolver
	results  ResultStore
	logger   *slog.Logger
	now      func() time.Time
}

// NewService wires up the analysis domain.
func NewService(cfg Config, client ChatClient, photos PhotoStore, resolver ProductResolver, results ResultStore, logger *slog.Logger) Service {
	return &service{
		cfg:      cfg,
		client:   client,
		photos:   photos,
		resolver: resolver,
		results:  results,
		logger:   logger.With("component", "analysis.service"),
		now:      time.Now,
	}
}

// StorePhoto persists an uploaded photo blob and returns its reference.
func (s *service) StorePhoto(ctx context.Context, role PhotoRole, data []byte, mimeType string) (PhotoRef, error) {
	if len(data) == 0 {
		return PhotoRef{}, apperrors.Wrap("invalid_input", "photo content cannot be empty", nil)
	}
	if s.cfg.MaxPhotoBytes > 0 && int64(len(data)) > s.cfg.MaxPhotoBytes {
		return PhotoRef{}, apperrors.Wrap("invalid_input", "photo exceeds maximum allowed size", nil)
	}
	if role == "" {
		role = PhotoFace
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	key := fmt.Sprintf("photos/%s/%s", role, uuid.New().String())
	if err := s.photos.Put(ctx, key, data, mimeType); err != nil {
		return PhotoRef{}, apperrors.Wrap("storage_error", "failed to store photo", err)
	}
	return PhotoRef{Key: key, Role: role}, nil
}

// DeletePhotos removes stored photo blobs.
func (s *service) DeletePhotos(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.photos.Delete(ctx, keys); err != nil {
		return apperrors.Wrap("storage_error", "failed to delete photos", err)
	}
	return nil
}

// Get returns a cached analysis by id.
func (s *service) Get(ctx context.Context, id uuid.UUID) (Response, bool, error) {
	res, found, err := s.results.Get(ctx, id)
	if err != nil {
		return Response{}, false, apperrors.Wrap("storage_error", "failed to load analysis", err)
	}
	return res, found, nil
}

// Analyze runs the full pipeline: photo retrieval, vision inference,
// parsing, score aggregation, timing, schedule, and product resolution.
// Inference and parsing failures degrade to a fallback result instead of
// failing the request; only invalid input is surfaced as an error.
func (s *service) Analyze(ctx context.Context, req Request) (Response, error) {
	if len(req.Photos) == 0 {
		return Response{}, apperrors.Wrap("invalid_input", "at least one photo is required", nil)
	}
	if s.cfg.MaxPhotos > 0 && len(req.Photos) > s.cfg.MaxPhotos {
		return Response{}, apperrors.Wrap("invalid_input", fmt.Sprintf("at most %d photos are allowed", s.cfg.MaxPhotos), nil)
	}
	if strings.TrimSpace(req.Profile.MainConcern) == "" {
		return Response{}, apperrors.Wrap("invalid_input", "profile.mainConcern is required", nil)
	}

	images, loaded := s.loadPhotos(ctx, req.Photos)
	if len(images) == 0 {
		return Response{}, apperrors.Wrap("invalid_input", "none of the referenced photos could be loaded", nil)
	}

	systemPrompt := BuildSystemPrompt()
	userPrompt := BuildUserPrompt(req.Profile, loaded)
	estimated := EstimateUsage(systemPrompt, userPrompt)

	callCtx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()

	completion, err := s.client.CreateChatCompletion(callCtx, chatgpt.ChatCompletionRequest{
		Model: s.cfg.Model,
		Messages: []chatgpt.Message{
			chatgpt.TextMessage("system", systemPrompt),
			chatgpt.VisionMessage("user", userPrompt, images),
		},
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokens,
	})
	if err != nil {
		reason := "llm_error"
		if errors.Is(err, context.DeadlineExceeded) {
			reason = "llm_timeout"
		}
		s.logger.Warn("inference failed, serving degraded analysis", "reason", reason, "error", err)
		return s.buildResponse(ctx, fallbackParsed(req.Profile), req.Profile, estimated, reason), nil
	}
	if len(completion.Choices) == 0 {
		s.logger.Warn("inference returned no choices, serving degraded analysis")
		return s.buildResponse(ctx, fallbackParsed(req.Profile), req.Profile, estimated, "llm_error"), nil
	}

	usage := metrics.Merge(metrics.TokenUsage{
		PromptTokens:     completion.Usage.PromptTokens,
		CompletionTokens: completion.Usage.CompletionTokens,
		TotalTokens:      completion.Usage.TotalTokens,
	}, estimated)

	parsed, err := Parse(completion.Choices[0].Message.Content)
	if err != nil {
		s.logger.Warn("inference response unusable, serving degraded analysis", "error", err)
		return s.buildResponse(ctx, fallbackParsed(req.Profile), req.Profile, usage, "parse_error"), nil
	}

	return s.buildResponse(ctx, parsed, req.Profile, usage, ""), nil
}

func (s *service) timeout() time.Duration {
	if s.cfg.RequestTimeout > 0 {
		return s.cfg.RequestTimeout
	}
	return 120 * time.Second
}

// loadPhotos fetches the referenced blobs in parallel. A failed fetch is
// dropped rather than failing the batch; ordering follows the request.
func (s *service) loadPhotos(ctx context.Context, refs []PhotoRef) ([]string, []PhotoRef) {
	type slot struct {
		image string
		ref   PhotoRef
		ok    bool
	}
	slots := make([]slot, len(refs))
	var wg sync.WaitGroup
	for i, ref := range refs {
		wg.Add(1)
		go func(i int, ref PhotoRef) {
			defer wg.Done()
			photo, err := s.photos.Get(ctx, ref.Key)
			if err != nil {
				s.logger.Warn("photo fetch failed, skipping", "key", ref.Key, "error", err)
				return
			}
			mime := photo.MimeType
			if mime == "" {
				mime = "image/jpeg"
			}
			slots[i] = slot{
				image: "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(photo.Data),
				ref:   ref,
				ok:    true,
			}
		}(i, ref)
	}
	wg.Wait()

	images := make([]string, 0, len(refs))
	loaded := make([]PhotoRef, 0, len(refs))
	for _, sl := range slots {
		if sl.ok {
			images = append(images, sl.image)
			loaded = append(loaded, sl.ref)
		}
	}
	return images, loaded
}

// buildResponse derives everything the UI renders from a parsed analysis.
// The overall score is always recomputed locally; the model's value is only
// logged when it disagrees.
func (s *service) buildResponse(ctx context.Context, parsed ParsedAnalysis, profile Profile, usage metrics.TokenUsage, degradedReason string) Response {
	overall := ComputeOverall(parsed.Scores)
	if parsed.ReportedOverall != 0 && parsed.ReportedOverall != overall {
		s.logger.Info("overall score recomputed", "reported", parsed.ReportedOverall, "computed", overall)
	}

	assessment := deriveAssessment(parsed, profile)
	steps := expandRoutine(parsed.Recommendations.Routine, assessment.ConcernedZones)
	s.resolveProducts(ctx, steps)

	res := Response{
		ID:         uuid.New(),
		CreatedAt:  s.now(),
		Scores:     ScoreSet{Details: parsed.Scores, Overall: overall},
		Diagnostic: parsed.Diagnostic,
		Assessment: assessment,
		Routine:    steps,
		Timing:     CalculateCompleteTiming(&assessment, steps),
		Schedule:   OrganizeBySchedule(steps),
		Immediate:  parsed.Recommendations.Immediate,

		Restrictions:   parsed.Recommendations.Restrictions,
		Usage:          usage,
		Degraded:       degradedReason != "",
		DegradedReason: degradedReason,
	}

	if s.results != nil {
		if err := s.results.Save(ctx, res, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("failed to cache analysis", "id", res.ID, "error", err)
		}
	}
	return res
}

// resolveProducts enriches step product references in place with catalog
// records. Resolution misses fall back to the placeholder and never block.
func (s *service) resolveProducts(ctx context.Context, steps []RoutineStep) {
	for i := range steps {
		for j, ref := range steps[i].RecommendedProducts {
			identifier := ref.CatalogID
			if identifier == "" {
				identifier = ref.Name
			}
			product := s.resolver.Resolve(ctx, identifier, ref.Name)
			steps[i].RecommendedProducts[j] = ProductRef{
				Name:          product.Name,
				Brand:         product.Brand,
				Category:      product.Category,
				AffiliateLink: product.AffiliateLink,
				CatalogID:     product.ID,
			}
			if product.Placeholder() {
				steps[i].RecommendedProducts[j].CatalogID = ""
			}
		}
	}
}
