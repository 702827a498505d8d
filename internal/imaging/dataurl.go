// Package imaging decodes photo payloads and produces preview thumbnails.
package imaging

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrNotDataURL is returned when a payload is not a data: URL.
var ErrNotDataURL = errors.New("payload is not a data URL")

// DataURL is a decoded data: URL.
type DataURL struct {
	MediaType string
	Data      []byte
}

// IsDataURL reports whether the payload is an inline data: URL.
func IsDataURL(payload string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(payload)), "data:")
}

// IsImageSource reports whether the payload can be used as an <img> source:
// an image data URL or an absolute http(s) URL.
func IsImageSource(payload string) bool {
	p := strings.ToLower(strings.TrimSpace(payload))
	return strings.HasPrefix(p, "data:image/") ||
		strings.HasPrefix(p, "https://") ||
		strings.HasPrefix(p, "http://")
}

// ParseDataURL decodes a data: URL of the form
// data:[<mediatype>][;base64],<data>.
func ParseDataURL(payload string) (*DataURL, error) {
	payload = strings.TrimSpace(payload)
	if !IsDataURL(payload) {
		return nil, ErrNotDataURL
	}

	header, body, ok := strings.Cut(payload[len("data:"):], ",")
	if !ok {
		return nil, fmt.Errorf("malformed data URL: missing comma")
	}

	params := strings.Split(header, ";")
	mediaType := strings.ToLower(strings.TrimSpace(params[0]))
	if mediaType == "" {
		mediaType = "text/plain"
	}
	isBase64 := false
	for _, p := range params[1:] {
		if strings.EqualFold(strings.TrimSpace(p), "base64") {
			isBase64 = true
		}
	}

	var data []byte
	if isBase64 {
		decoded, err := decodeBase64(body)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 payload: %w", err)
		}
		data = decoded
	} else {
		unescaped, err := url.PathUnescape(body)
		if err != nil {
			return nil, fmt.Errorf("failed to unescape payload: %w", err)
		}
		data = []byte(unescaped)
	}

	return &DataURL{MediaType: mediaType, Data: data}, nil
}

// decodeBase64 accepts padded and unpadded input, standard and URL alphabets.
func decodeBase64(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, s)
	encodings := []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	}
	var lastErr error
	for _, enc := range encodings {
		data, err := enc.DecodeString(s)
		if err == nil {
			return data, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// Extension returns a file extension for the media type.
func (d *DataURL) Extension() string {
	switch d.MediaType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}
