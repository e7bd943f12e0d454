package imageproc

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// ThumbnailMaxEdge is the bounding box edge for listing thumbnails.
const ThumbnailMaxEdge = 320

// DetectFormat inspects the raw bytes and returns the image format:
// "jpeg", "png", "gif", "bmp", "webp", or "" if unknown.
func DetectFormat(data []byte) string {
	// JPEG: starts with FF D8 FF
	if len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return "jpeg"
	}
	// PNG: starts with 89 50 4E 47 0D 0A 1A 0A
	if len(data) >= 8 && data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 &&
		data[4] == 0x0D && data[5] == 0x0A && data[6] == 0x1A && data[7] == 0x0A {
		return "png"
	}
	// GIF: starts with GIF87a or GIF89a
	if len(data) >= 6 && data[0] == 'G' && data[1] == 'I' && data[2] == 'F' {
		return "gif"
	}
	// BMP: starts with BM
	if len(data) >= 2 && data[0] == 'B' && data[1] == 'M' {
		return "bmp"
	}
	// WebP: starts with RIFF....WEBP
	if len(data) >= 12 && data[0] == 'R' && data[1] == 'I' && data[2] == 'F' && data[3] == 'F' &&
		data[8] == 'W' && data[9] == 'E' && data[10] == 'B' && data[11] == 'P' {
		return "webp"
	}
	return ""
}

// Probe returns the detected format and, when the image header can be
// decoded, its pixel dimensions. Dimensions are best-effort: a format we can
// sniff but not decode yields (format, 0, 0).
func Probe(data []byte) (format string, width, height int) {
	format = DetectFormat(data)
	if format == "" {
		return "", 0, 0
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return format, 0, 0
	}
	return format, cfg.Width, cfg.Height
}

// Thumbnail renders a JPEG thumbnail fitting within maxEdge x maxEdge,
// preserving aspect ratio. GIFs are skipped (resizing would drop frames)
// and reported via the bool return.
func Thumbnail(data []byte, maxEdge int) ([]byte, bool, error) {
	format := DetectFormat(data)
	if format == "" {
		return nil, false, fmt.Errorf("unsupported or unrecognized image format")
	}
	if format == "gif" {
		return nil, false, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, false, fmt.Errorf("decoding image: %w", err)
	}

	// Only shrink, never enlarge.
	if img.Bounds().Dx() > maxEdge || img.Bounds().Dy() > maxEdge {
		img = imaging.Fit(img, maxEdge, maxEdge, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return nil, false, fmt.Errorf("encoding thumbnail: %w", err)
	}
	return buf.Bytes(), true, nil
}
