package qr

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/fogleman/gg"
	qrcode "github.com/skip2/go-qrcode"
	"golang.org/x/image/font/basicfont"
)

// Card layout constants.
const (
	cardQRSize    = 440
	cardPadding   = 20
	captionHeight = 76

	titleFontSize    = 22.0
	subtitleFontSize = 16.0
)

var (
	cardBgColor     = color.White
	titleTextColor  = color.RGBA{20, 24, 28, 255}
	subtleTextColor = color.RGBA{90, 95, 100, 255}
)

// CardRenderer draws a student's QR card: the code itself with a caption
// strip (name and roll number) underneath.
type CardRenderer struct {
	fontPath string
}

// NewCardRenderer creates a renderer. fontPath may be empty; basicfont is
// used as fallback when no TTF is available.
func NewCardRenderer(fontPath string) *CardRenderer {
	return &CardRenderer{fontPath: fontPath}
}

// Render encodes payload as a QR code and returns the finished card as PNG.
func (r *CardRenderer) Render(payload, title, subtitle string) ([]byte, error) {
	code, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}

	width := cardQRSize + cardPadding*2
	height := cardQRSize + cardPadding*2 + captionHeight

	dc := gg.NewContext(width, height)
	dc.SetColor(cardBgColor)
	dc.Clear()
	dc.DrawImage(code.Image(cardQRSize), cardPadding, cardPadding)

	captionTop := float64(cardQRSize + cardPadding*2)
	centerX := float64(width) / 2

	r.loadFont(dc, titleFontSize)
	dc.SetColor(titleTextColor)
	dc.DrawStringAnchored(title, centerX, captionTop+22, 0.5, 0.5)

	r.loadFont(dc, subtitleFontSize)
	dc.SetColor(subtleTextColor)
	dc.DrawStringAnchored(subtitle, centerX, captionTop+52, 0.5, 0.5)

	return encodeImage(dc)
}

// loadFont loads the configured TTF at the given size or falls back to the
// built-in bitmap font.
func (r *CardRenderer) loadFont(dc *gg.Context, size float64) {
	if r.fontPath != "" {
		if err := dc.LoadFontFace(r.fontPath, size); err == nil {
			return
		}
	}
	dc.SetFontFace(basicfont.Face7x13)
}

func encodeImage(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
