package service

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"github.com/petos-app/petos/internal/models"
)

type fakeCaptions struct {
	text string
	err  error
}

func (f *fakeCaptions) Generate(context.Context, models.Language, []byte, string) (string, error) {
	return f.text, f.err
}

type fakeCompositor struct{}

func (fakeCompositor) Compose(image.Image, string, models.Language) *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, 10, 10))
}

type fakeStorage struct {
	mu       sync.Mutex
	err      error
	uploaded bool
}

func (f *fakeStorage) Upload(_ context.Context, _ string, _ []byte, _ string) (string, error) {
	f.mu.Lock()
	f.uploaded = true
	f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return "https://cdn.example.com/polaroids/x.jpg", nil
}

type fakeUsage struct {
	entries chan models.UsageLogEntry
}

func (f *fakeUsage) Append(_ context.Context, entry models.UsageLogEntry) error {
	f.entries <- entry
	return nil
}

func testPhoto() image.Image {
	return image.NewRGBA(image.Rect(0, 0, 4, 4))
}

func TestGenerateProducesJPEGAndPersistsAsync(t *testing.T) {
	storage := &fakeStorage{}
	usage := &fakeUsage{entries: make(chan models.UsageLogEntry, 1)}
	s := NewGenerationService(discardLogger(), &fakeCaptions{text: "snack radar active"}, fakeCompositor{}, storage, usage)

	result, err := s.Generate(context.Background(), "client-1", models.LanguageEnglish, testPhoto(), []byte{0xFF, 0xD8}, "image/jpeg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Caption != "snack radar active" {
		t.Fatalf("unexpected caption %q", result.Caption)
	}
	if len(result.JPEG) == 0 {
		t.Fatal("result must carry encoded image bytes")
	}

	select {
	case entry := <-usage.entries:
		if entry.Identity != "client-1" {
			t.Fatalf("log entry bound to wrong identity: %q", entry.Identity)
		}
		if entry.Caption != "snack radar active" {
			t.Fatalf("log entry carries wrong caption: %q", entry.Caption)
		}
		if entry.ImageURL == "" || entry.GroupKey == "" {
			t.Fatalf("log entry incomplete: %+v", entry)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("persistence never ran")
	}
}

func TestGenerateUploadFailureDegradesToPlaceholder(t *testing.T) {
	storage := &fakeStorage{err: errors.New("bucket gone")}
	usage := &fakeUsage{entries: make(chan models.UsageLogEntry, 1)}
	s := NewGenerationService(discardLogger(), &fakeCaptions{text: "ok"}, fakeCompositor{}, storage, usage)

	// Upload failure must not surface: the user still gets the image and
	// the log entry still counts toward quota.
	result, err := s.Generate(context.Background(), "client-1", models.LanguageEnglish, testPhoto(), []byte{0xFF}, "image/jpeg")
	if err != nil {
		t.Fatalf("upload failure must not fail the cycle: %v", err)
	}
	if len(result.JPEG) == 0 {
		t.Fatal("result must still carry the image")
	}

	select {
	case entry := <-usage.entries:
		if entry.ImageURL != placeholderImageURL {
			t.Fatalf("expected placeholder image url, got %q", entry.ImageURL)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("log append never ran")
	}
}

func TestGenerateCaptionFailurePersistsNothing(t *testing.T) {
	storage := &fakeStorage{}
	usage := &fakeUsage{entries: make(chan models.UsageLogEntry, 1)}
	wantErr := errors.New("all models down")
	s := NewGenerationService(discardLogger(), &fakeCaptions{err: wantErr}, fakeCompositor{}, storage, usage)

	_, err := s.Generate(context.Background(), "client-1", models.LanguageThai, testPhoto(), []byte{0xFF}, "image/jpeg")
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected caption error to pass through, got %v", err)
	}

	storage.mu.Lock()
	uploaded := storage.uploaded
	storage.mu.Unlock()
	if uploaded {
		t.Fatal("nothing must be uploaded when the caption fails")
	}
	select {
	case entry := <-usage.entries:
		t.Fatalf("nothing must be logged when the caption fails, got %+v", entry)
	default:
	}
}
