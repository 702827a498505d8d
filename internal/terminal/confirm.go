package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"photobooth-admin/internal/controller"
)

// Prompt asks the operator on out and reads the answer from in. Anything
// but y or yes, including EOF and cancellation, is a no.
//
// A single goroutine reads in line by line for the life of the Prompt, so a
// cancelled Confirm leaves no reader behind and the next Confirm receives the
// next line. The goroutine exits once in returns an error.
type Prompt struct {
	in    *bufio.Reader
	out   io.Writer
	once  sync.Once
	lines chan string
}

// NewPrompt creates a y/N prompt.
func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{
		in:    bufio.NewReader(in),
		out:   out,
		lines: make(chan string),
	}
}

func (p *Prompt) Confirm(ctx context.Context, prompt string) bool {
	fmt.Fprintf(p.out, "%s [y/N]: ", prompt)
	p.once.Do(func() { go p.read() })

	select {
	case <-ctx.Done():
		fmt.Fprintln(p.out)
		return false
	case line, ok := <-p.lines:
		if !ok {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		}
		return false
	}
}

func (p *Prompt) read() {
	defer close(p.lines)
	for {
		line, err := p.in.ReadString('\n')
		if line != "" {
			p.lines <- line
		}
		if err != nil {
			return
		}
	}
}

// AlwaysConfirm accepts every prompt, for non-interactive use.
var AlwaysConfirm controller.Confirmer = controller.ConfirmFunc(func(context.Context, string) bool {
	return true
})
