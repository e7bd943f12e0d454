package imageproc

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0}, "jpeg"},
		{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, "png"},
		{"gif", []byte("GIF89a......"), "gif"},
		{"bmp", []byte("BM......"), "bmp"},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), "webp"},
		{"unknown", []byte("not an image"), ""},
		{"empty", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectFormat(tt.data))
		})
	}
}

func TestProbe(t *testing.T) {
	data := encodePNG(t, 640, 480)

	format, w, h := Probe(data)
	assert.Equal(t, "png", format)
	assert.Equal(t, 640, w)
	assert.Equal(t, 480, h)
}

func TestProbeUnknown(t *testing.T) {
	format, w, h := Probe([]byte("garbage"))
	assert.Empty(t, format)
	assert.Zero(t, w)
	assert.Zero(t, h)
}

func TestThumbnailShrinks(t *testing.T) {
	data := encodePNG(t, 1600, 900)

	thumb, ok, err := Thumbnail(data, ThumbnailMaxEdge)
	require.NoError(t, err)
	require.True(t, ok)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(thumb))
	require.NoError(t, err)
	assert.LessOrEqual(t, cfg.Width, ThumbnailMaxEdge)
	assert.LessOrEqual(t, cfg.Height, ThumbnailMaxEdge)
	// aspect ratio preserved: 16:9 at 320 wide is 180 tall
	assert.Equal(t, 320, cfg.Width)
	assert.Equal(t, 180, cfg.Height)
}

func TestThumbnailDoesNotEnlarge(t *testing.T) {
	data := encodePNG(t, 100, 80)

	thumb, ok, err := Thumbnail(data, ThumbnailMaxEdge)
	require.NoError(t, err)
	require.True(t, ok)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(thumb))
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Width)
	assert.Equal(t, 80, cfg.Height)
}

func TestThumbnailSkipsGIF(t *testing.T) {
	thumb, ok, err := Thumbnail([]byte("GIF89a......"), ThumbnailMaxEdge)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, thumb)
}

func TestThumbnailRejectsUnknown(t *testing.T) {
	_, _, err := Thumbnail([]byte("definitely not an image"), ThumbnailMaxEdge)
	assert.Error(t, err)
}
