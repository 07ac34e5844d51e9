package polaroid

import (
	"image"
	"image/color"
	"io"
	"log/slog"
	"testing"

	"github.com/petos-app/petos/internal/models"
)

func newTestCompositor(t *testing.T) *Compositor {
	t.Helper()
	// Empty assets dir: font loading degrades to the built-in face, which is
	// exactly the fallback path production hits when an asset goes missing.
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewCompositor(t.TempDir(), log)
}

func uniformPhoto(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestComposeOutputSizeIsFixed(t *testing.T) {
	c := newTestCompositor(t)
	red := color.RGBA{R: 0xFF, A: 0xFF}

	inputs := map[string]*image.RGBA{
		"square":    uniformPhoto(500, 500, red),
		"wide":      uniformPhoto(1600, 400, red),
		"tall":      uniformPhoto(300, 1800, red),
		"tiny":      uniformPhoto(10, 10, red),
		"exact fit": uniformPhoto(960, 910, red),
	}
	for name, photo := range inputs {
		out := c.Compose(photo, "hello", models.LanguageEnglish)
		b := out.Bounds()
		if b.Dx() != 1080 || b.Dy() != 1350 {
			t.Fatalf("%s input: canvas is %dx%d, want 1080x1350", name, b.Dx(), b.Dy())
		}
	}
}

func TestComposeEmptyCaptionDoesNotFail(t *testing.T) {
	c := newTestCompositor(t)
	out := c.Compose(uniformPhoto(400, 400, color.RGBA{G: 0xFF, A: 0xFF}), "", models.LanguageChinese)
	if out == nil {
		t.Fatal("compose returned nil for empty caption")
	}
}

func TestComposeFillsPhotoRegionWithoutLetterboxing(t *testing.T) {
	c := newTestCompositor(t)
	blue := color.RGBA{B: 0xFF, A: 0xFF}

	// A wide photo must be cropped, never letterboxed: every pixel of the
	// photo region stays photo-colored, corners stay background-colored.
	out := c.Compose(uniformPhoto(2000, 500, blue), "", models.LanguageEnglish)

	checkups := []struct {
		x, y int
		want color.RGBA
		desc string
	}{
		{540, 515, blue, "photo region center"},
		{61, 61, blue, "photo region top-left"},
		{1018, 968, blue, "photo region bottom-right"},
		{30, 30, backgroundColor, "top margin"},
		{540, 1200, backgroundColor, "text band"},
	}
	for _, cu := range checkups {
		got := out.RGBAAt(cu.x, cu.y)
		if got != cu.want {
			t.Fatalf("%s at (%d,%d): got %v, want %v", cu.desc, cu.x, cu.y, got, cu.want)
		}
	}
}

func TestComposeRendersCaptionInk(t *testing.T) {
	c := newTestCompositor(t)
	white := color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}

	out := c.Compose(uniformPhoto(400, 400, white), "snacks now", models.LanguageEnglish)

	// Some pixel in the bottom band must differ from the background once a
	// caption is drawn.
	found := false
	for y := topPadding + photoHeight; y < canvasHeight && !found; y++ {
		for x := 0; x < canvasWidth; x++ {
			if out.RGBAAt(x, y) == textColor {
				found = true
				break
			}
		}
	}
	if !found {
		t.Fatal("caption left no ink in the text band")
	}
}

func TestComposeVeryLongCaptionDoesNotPanic(t *testing.T) {
	c := newTestCompositor(t)
	long := ""
	for i := 0; i < 60; i++ {
		long += "extremely chatty pet monologue "
	}
	out := c.Compose(uniformPhoto(400, 400, color.RGBA{A: 0xFF}), long, models.LanguageThai)
	if b := out.Bounds(); b.Dx() != 1080 || b.Dy() != 1350 {
		t.Fatalf("overflowing caption must not resize the canvas, got %dx%d", b.Dx(), b.Dy())
	}
}
