package polaroid

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
)

const (
	thaiFontFile  = "font_th.ttf"
	hanFontFile   = "font_tc.ttf" // shared by Chinese and English captions
	watermarkSize = 28
)

// fontSet holds the caption and watermark faces for one script.
type fontSet struct {
	caption   font.Face
	watermark font.Face
}

// loadFonts builds the per-language face sets from the assets directory.
// A missing or unparsable font file degrades to the built-in bitmap face so
// a lost asset produces ugly text rather than no image at all.
func loadFonts(assetsDir string, log *slog.Logger) (thai, han fontSet) {
	thai = loadFontSet(filepath.Join(assetsDir, thaiFontFile), metricsThai.fontSize, log)
	han = loadFontSet(filepath.Join(assetsDir, hanFontFile), metricsHan.fontSize, log)
	return thai, han
}

func loadFontSet(path string, captionSize float64, log *slog.Logger) fontSet {
	fallback := fontSet{caption: basicfont.Face7x13, watermark: basicfont.Face7x13}

	caption, err := loadFace(path, captionSize)
	if err != nil {
		log.Warn("font asset unavailable, using built-in face", "path", path, "err", err)
		return fallback
	}
	watermark, err := loadFace(path, watermarkSize)
	if err != nil {
		watermark = basicfont.Face7x13
	}
	return fontSet{caption: caption, watermark: watermark}
}

func loadFace(path string, size float64) (font.Face, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font: %w", err)
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("build face: %w", err)
	}
	return face, nil
}
