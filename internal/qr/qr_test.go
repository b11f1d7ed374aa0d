package qr_test

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tally/internal/qr"
)

func TestVerificationURL(t *testing.T) {
	assert.Equal(t, "https://host/verify/rcpt-1", qr.VerificationURL("https://host", "rcpt-1"))
	assert.Equal(t, "https://host/verify/rcpt-1", qr.VerificationURL("https://host/", "rcpt-1"))
}

func TestPNG_IsDecodableImage(t *testing.T) {
	data, err := qr.PNG("https://host/verify/rcpt-1")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, img.Bounds().Dx(), img.Bounds().Dy())
}

func TestRender_ProducesBlock(t *testing.T) {
	block, err := qr.Render("rcpt-1")
	require.NoError(t, err)
	assert.NotEmpty(t, block)
}
