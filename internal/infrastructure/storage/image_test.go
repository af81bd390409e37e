package storage

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodedImage(t *testing.T, width, height int, format imaging.Format) []byte {
	t.Helper()
	img := imaging.New(width, height, color.NRGBA{R: 40, G: 160, B: 80, A: 255})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, format))
	return buf.Bytes()
}

func TestPrepareImageDownscalesWideImages(t *testing.T) {
	data := encodedImage(t, 400, 200, imaging.JPEG)

	out, contentType, err := PrepareImage(data, "image/jpg", 100)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", contentType)

	decoded, _, err := image.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 100, decoded.Bounds().Dx())
	assert.Equal(t, 50, decoded.Bounds().Dy())
}

func TestPrepareImageKeepsNarrowImages(t *testing.T) {
	data := encodedImage(t, 80, 80, imaging.PNG)

	out, contentType, err := PrepareImage(data, "image/png", 100)
	require.NoError(t, err)
	assert.Equal(t, "image/png", contentType)
	assert.Equal(t, data, out)
}

func TestPrepareImageRejectsGarbage(t *testing.T) {
	_, _, err := PrepareImage([]byte("not an image"), "image/png", 100)
	assert.Error(t, err)
}

func TestObjectNameFromURL(t *testing.T) {
	name, err := ObjectNameFromURL("https://storage.googleapis.com/eco-bucket/ecotrack/reports/a.jpg", "eco-bucket")
	require.NoError(t, err)
	assert.Equal(t, "ecotrack/reports/a.jpg", name)

	_, err = ObjectNameFromURL("https://storage.googleapis.com/other/a.jpg", "eco-bucket")
	assert.Error(t, err)

	_, err = ObjectNameFromURL("https://example.com/a.jpg", "eco-bucket")
	assert.Error(t, err)
}
