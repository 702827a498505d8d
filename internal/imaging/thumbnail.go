package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/nfnt/resize"
)

// JPEGQuality is used for every generated thumbnail.
const JPEGQuality = 85

// Thumbnail decodes an image data URL and returns a JPEG scaled to fit in a
// maxSize x maxSize box. Images already inside the box are re-encoded at
// their original size.
func Thumbnail(payload string, maxSize uint) ([]byte, error) {
	d, err := ParseDataURL(payload)
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(d.Data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	thumbnail := resize.Thumbnail(maxSize, maxSize, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumbnail, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
