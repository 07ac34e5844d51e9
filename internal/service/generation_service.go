package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"log/slog"
	"time"

	"github.com/petos-app/petos/internal/models"
)

const (
	jpegQuality    = 80
	persistTimeout = 2 * time.Minute

	// Stored in the usage log when the object upload fails; the log entry
	// still counts toward quota.
	placeholderImageURL = "upload_failed"
)

type CaptionGenerator interface {
	Generate(ctx context.Context, lang models.Language, imageBytes []byte, mimeType string) (string, error)
}

type Compositor interface {
	Compose(photo image.Image, caption string, lang models.Language) *image.RGBA
}

type ImageStorage interface {
	Upload(ctx context.Context, identity string, data []byte, contentType string) (string, error)
}

type UsageLog interface {
	Append(ctx context.Context, entry models.UsageLogEntry) error
}

// GenerationService runs one generation cycle: caption, composite, encode,
// then best-effort persistence. The cycle succeeds once the encoded image
// exists; upload and log-write failures never reach the user.
type GenerationService struct {
	log        *slog.Logger
	captions   CaptionGenerator
	compositor Compositor
	storage    ImageStorage
	usage      UsageLog
}

// GenerationResult is what the user sees: the caption and the final JPEG.
type GenerationResult struct {
	Caption string
	JPEG    []byte
}

func NewGenerationService(log *slog.Logger, captions CaptionGenerator, compositor Compositor, storage ImageStorage, usage UsageLog) *GenerationService {
	return &GenerationService{
		log:        log,
		captions:   captions,
		compositor: compositor,
		storage:    storage,
		usage:      usage,
	}
}

// Generate produces the captioned polaroid for one uploaded photo. The
// caller has already passed the access gate. Caption failure aborts the
// cycle with nothing persisted; after that point the result is final and
// persistence happens in the background.
func (s *GenerationService) Generate(ctx context.Context, identity string, lang models.Language, photo image.Image, photoBytes []byte, mimeType string) (*GenerationResult, error) {
	caption, err := s.captions.Generate(ctx, lang, photoBytes, mimeType)
	if err != nil {
		return nil, err
	}

	composite := s.compositor.Compose(photo, caption, lang)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, composite, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	encoded := buf.Bytes()

	// Fire and forget: the user's result does not wait on storage, and the
	// request context may be gone by the time the upload finishes.
	persisted := make([]byte, len(encoded))
	copy(persisted, encoded)
	go s.persist(identity, caption, persisted)

	return &GenerationResult{Caption: caption, JPEG: encoded}, nil
}

func (s *GenerationService) persist(identity, caption string, data []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	url, err := s.storage.Upload(ctx, identity, data, "image/jpeg")
	if err != nil {
		s.log.Error("polaroid upload failed", "identity", identity, "err", err)
		url = placeholderImageURL
	}

	entry := models.UsageLogEntry{
		Identity: identity,
		ImageURL: url,
		Caption:  caption,
		GroupKey: models.GroupKey(time.Now()),
	}
	if err := s.usage.Append(ctx, entry); err != nil {
		s.log.Error("usage log write failed", "identity", identity, "err", err)
	}
}
