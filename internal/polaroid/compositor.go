package polaroid

import (
	"image"
	"image/color"
	"log/slog"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/petos-app/petos/internal/models"
)

// Canvas layout, tuned for Instagram's 4:5 portrait format.
const (
	canvasWidth  = 1080
	canvasHeight = 1350

	sidePadding    = 60
	topPadding     = 60
	bottomTextArea = 380

	photoWidth  = canvasWidth - 2*sidePadding
	photoHeight = canvasHeight - topPadding - bottomTextArea
)

var (
	// Near-white background and near-black ink read softer in print than
	// pure #FFFFFF on #000000.
	backgroundColor = color.RGBA{R: 0xFD, G: 0xFD, B: 0xFD, A: 0xFF}
	textColor       = color.RGBA{R: 0x22, G: 0x22, B: 0x22, A: 0xFF}
)

// typeMetrics captures the per-script typography. Thai script runs taller
// and thinner than Han glyphs, so it gets a larger face and a wider wrap.
type typeMetrics struct {
	fontSize    float64
	lineSpacing int
	wrapWidth   int
}

var (
	metricsThai = typeMetrics{fontSize: 65, lineSpacing: 30, wrapWidth: 30}
	metricsHan  = typeMetrics{fontSize: 58, lineSpacing: 25, wrapWidth: 22}
)

const watermarkText = "PetOS"

// Compositor lays the uploaded photo and caption onto a fixed polaroid
// canvas. Fonts are loaded once at construction; Compose itself does no I/O
// and is deterministic for a given input.
type Compositor struct {
	thai fontSet
	han  fontSet
}

func NewCompositor(assetsDir string, log *slog.Logger) *Compositor {
	thai, han := loadFonts(assetsDir, log)
	return &Compositor{thai: thai, han: han}
}

// Compose produces the 1080x1350 polaroid: photo scaled and center-cropped
// into the upper region, caption wrapped and centered in the bottom band.
// An empty caption leaves the band blank. An over-long caption simply runs
// past the band; the canvas never resizes.
func (c *Compositor) Compose(photo image.Image, caption string, lang models.Language) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, canvasWidth, canvasHeight))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(backgroundColor), image.Point{}, draw.Src)

	photoRect := image.Rect(sidePadding, topPadding, sidePadding+photoWidth, topPadding+photoHeight)
	drawCoverCropped(canvas, photoRect, photo)

	metrics, fonts := c.styleFor(lang)
	lines := Wrap(caption, metrics.wrapWidth)
	drawCaption(canvas, lines, metrics, fonts.caption)
	drawWatermark(canvas, fonts.watermark)

	return canvas
}

func (c *Compositor) styleFor(lang models.Language) (typeMetrics, fontSet) {
	if lang == models.LanguageThai {
		return metricsThai, c.thai
	}
	return metricsHan, c.han
}

// drawCoverCropped scales src to fill dst completely, cropping the longer
// dimension around the center. The photo is never letterboxed or distorted,
// which keeps the layout identical for portrait, landscape and square input.
func drawCoverCropped(dst *image.RGBA, dstRect image.Rectangle, src image.Image) {
	srcBounds := src.Bounds()
	srcW, srcH := srcBounds.Dx(), srcBounds.Dy()
	if srcW == 0 || srcH == 0 {
		return
	}

	dstW, dstH := dstRect.Dx(), dstRect.Dy()
	crop := srcBounds
	if srcW*dstH > dstW*srcH {
		// Source is wider than the target: trim the sides.
		cropW := srcH * dstW / dstH
		x0 := srcBounds.Min.X + (srcW-cropW)/2
		crop = image.Rect(x0, srcBounds.Min.Y, x0+cropW, srcBounds.Max.Y)
	} else if srcW*dstH < dstW*srcH {
		// Source is taller than the target: trim top and bottom.
		cropH := srcW * dstH / dstW
		y0 := srcBounds.Min.Y + (srcH-cropH)/2
		crop = image.Rect(srcBounds.Min.X, y0, srcBounds.Max.X, y0+cropH)
	}

	draw.CatmullRom.Scale(dst, dstRect, src, crop, draw.Src, nil)
}

func drawCaption(canvas *image.RGBA, lines []string, metrics typeMetrics, face font.Face) {
	if len(lines) == 0 {
		return
	}

	lineHeight := int(metrics.fontSize) + metrics.lineSpacing
	blockHeight := len(lines) * lineHeight

	bandTop := topPadding + photoHeight
	bandHeight := bottomTextArea - 2*watermarkSize

	// Center the block in the band; an oversized block is top-anchored and
	// allowed to run past the bottom edge.
	offset := (bandHeight - blockHeight) / 2
	if offset < metrics.lineSpacing {
		offset = metrics.lineSpacing
	}

	drawer := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(textColor),
		Face: face,
	}

	baseline := bandTop + offset + int(metrics.fontSize)
	for _, line := range lines {
		width := drawer.MeasureString(line)
		x := (canvasWidth - width.Round()) / 2
		drawer.Dot = fixed.P(x, baseline)
		drawer.DrawString(line)
		baseline += lineHeight
	}
}

func drawWatermark(canvas *image.RGBA, face font.Face) {
	drawer := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(textColor),
		Face: face,
	}
	width := drawer.MeasureString(watermarkText)
	x := (canvasWidth - width.Round()) / 2
	drawer.Dot = fixed.P(x, canvasHeight-watermarkSize)
	drawer.DrawString(watermarkText)
}
