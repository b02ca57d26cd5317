package qr

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderCard(t *testing.T) {
	renderer := NewCardRenderer("")

	data, err := renderer.Render("v|1|1|nonce|signature", "Mess Pass", "Ananya Nair · B21ME1042")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	bounds := img.Bounds()
	assert.Equal(t, cardQRSize+2*cardPadding, bounds.Dx())
	assert.Equal(t, cardQRSize+2*cardPadding+captionHeight, bounds.Dy())
}

func TestRenderCardMissingFontFallsBack(t *testing.T) {
	renderer := NewCardRenderer("/nonexistent/font.ttf")

	data, err := renderer.Render("payload", "Mess Pass", "caption")
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
