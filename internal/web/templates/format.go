// Package templates holds the templ components of the admin page. The
// *_templ.go files are generated from the .templ sources by `templ generate`.
package templates

import (
	"net/url"
	"time"

	"photobooth-admin/internal/imaging"
	"photobooth-admin/internal/model"
)

// TimestampLayout is how capture times are shown to the operator.
const TimestampLayout = "Jan 2, 2006, 3:04:05 PM"

// UnknownTimestamp is shown for photos whose capture time could not be read.
const UnknownTimestamp = "Unknown date"

// FormatTimestamp renders t in loc for display.
func FormatTimestamp(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return UnknownTimestamp
	}
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(TimestampLayout)
}

// PhotoPath returns the URL path of a photo resource.
func PhotoPath(id string, suffix string) string {
	p := "/photos/" + url.PathEscape(id)
	if suffix != "" {
		p += "/" + suffix
	}
	return p
}

// PreviewSource picks the <img> source for a card: the thumbnail endpoint for
// inline payloads, the payload itself for remote URLs, nothing otherwise.
func PreviewSource(p model.Photo) string {
	if !imaging.IsImageSource(p.ImageData) {
		return ""
	}
	if imaging.IsDataURL(p.ImageData) {
		return PhotoPath(p.ID, "thumbnail")
	}
	return p.ImageData
}
