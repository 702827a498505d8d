// Package terminal presents a controller on a terminal: the photo list as a
// table, prints spooled to files, and confirmations read from stdin.
package terminal

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"photobooth-admin/internal/controller"
	"photobooth-admin/internal/imaging"
	"photobooth-admin/internal/model"
)

// TimestampLayout matches the web page.
const TimestampLayout = "Jan 2, 2006, 3:04:05 PM"

// Presenter writes renders to out and spools prints into a directory.
type Presenter struct {
	out      io.Writer
	spoolDir string
	loc      *time.Location
	log      *zap.Logger

	mu      sync.Mutex
	quiet   bool
	spooled []string
}

// NewPresenter creates a terminal presenter. Prints of inline images are
// written below spoolDir; remote images are reported by URL.
func NewPresenter(out io.Writer, spoolDir string, loc *time.Location, log *zap.Logger) *Presenter {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Presenter{out: out, spoolDir: spoolDir, loc: loc, log: log}
}

// SetQuiet suppresses renders while set. Prints are always reported.
func (p *Presenter) SetQuiet(quiet bool) {
	p.mu.Lock()
	p.quiet = quiet
	p.mu.Unlock()
}

// Render prints the view as a table, or the empty state.
func (p *Presenter) Render(view controller.View) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.quiet {
		return
	}

	if view.Empty() {
		fmt.Fprintf(p.out, "No photos found (%s, %d total)\n", view.Filter.Label(), view.Total)
		fmt.Fprintln(p.out, "Photos will appear here once uploaded from the photobooth.")
		return
	}

	tw := tabwriter.NewWriter(p.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tSTATUS")
	for _, photo := range view.Photos {
		status := "Not Printed"
		if photo.Printed {
			status = "Printed"
		}
		created := "Unknown date"
		if !photo.CreatedAt.IsZero() {
			created = photo.CreatedAt.In(p.loc).Format(TimestampLayout)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", photo.ID, created, status)
	}
	tw.Flush()
	fmt.Fprintf(p.out, "%d of %d photos (%s)\n", len(view.Photos), view.Total, view.Filter.Label())
}

// Print spools the photo's image to a file.
func (p *Presenter) Print(photo model.Photo) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !imaging.IsDataURL(photo.ImageData) {
		if imaging.IsImageSource(photo.ImageData) {
			fmt.Fprintf(p.out, "print %s: %s\n", photo.ID, photo.ImageData)
			return
		}
		p.log.Warn("photo has no printable image", zap.String("photo_id", photo.ID))
		return
	}

	path, err := p.spool(photo)
	if err != nil {
		p.log.Error("failed to spool print", zap.String("photo_id", photo.ID), zap.Error(err))
		return
	}
	p.spooled = append(p.spooled, path)
	fmt.Fprintf(p.out, "print %s: %s\n", photo.ID, path)
}

// Spooled lists the files written by Print.
func (p *Presenter) Spooled() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.spooled...)
}

func (p *Presenter) spool(photo model.Photo) (string, error) {
	d, err := imaging.ParseDataURL(photo.ImageData)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(p.spoolDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create spool directory: %w", err)
	}
	path := filepath.Join(p.spoolDir, fileName(photo.ID)+d.Extension())
	if err := os.WriteFile(path, d.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write print file: %w", err)
	}
	return path, nil
}

// fileName maps an id onto characters safe in a file name.
func fileName(id string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		}
		return '_'
	}, id)
	name = strings.Trim(name, ".")
	if name == "" {
		return "photo"
	}
	return name
}
