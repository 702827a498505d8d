package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngDataURL(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestParseDataURL(t *testing.T) {
	d, err := ParseDataURL("data:image/png;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "image/png", d.MediaType)
	assert.Equal(t, []byte("hello"), d.Data)
	assert.Equal(t, ".png", d.Extension())

	d, err = ParseDataURL("data:image/jpeg;base64,aGVsbG8")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), d.Data, "unpadded base64")
	assert.Equal(t, ".jpg", d.Extension())

	d, err = ParseDataURL("data:,hello%20world")
	require.NoError(t, err)
	assert.Equal(t, "text/plain", d.MediaType)
	assert.Equal(t, []byte("hello world"), d.Data)
	assert.Equal(t, ".bin", d.Extension())
}

func TestParseDataURL_Errors(t *testing.T) {
	_, err := ParseDataURL("https://example.com/a.png")
	assert.ErrorIs(t, err, ErrNotDataURL)

	_, err = ParseDataURL("data:image/png;base64")
	assert.Error(t, err)

	_, err = ParseDataURL("data:image/png;base64,!!!")
	assert.Error(t, err)
}

func TestIsImageSource(t *testing.T) {
	assert.True(t, IsImageSource("data:image/png;base64,AA=="))
	assert.True(t, IsImageSource("https://cdn.example.com/a.jpg"))
	assert.False(t, IsImageSource("javascript:alert(1)"))
	assert.False(t, IsImageSource("data:text/html,<script>"))
	assert.False(t, IsImageSource(""))
}

func TestThumbnail(t *testing.T) {
	out, err := Thumbnail(pngDataURL(t, 200, 100), 50)
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 50, img.Bounds().Dx())
	assert.Equal(t, 25, img.Bounds().Dy())
}

func TestThumbnail_SmallImageKeepsSize(t *testing.T) {
	out, err := Thumbnail(pngDataURL(t, 20, 10), 50)
	require.NoError(t, err)

	img, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 20, img.Bounds().Dx())
	assert.Equal(t, 10, img.Bounds().Dy())
}

func TestThumbnail_Errors(t *testing.T) {
	_, err := Thumbnail("https://example.com/a.png", 50)
	assert.ErrorIs(t, err, ErrNotDataURL)

	_, err = Thumbnail("data:image/png;base64,aGVsbG8=", 50)
	assert.Error(t, err, "not an image")
}
