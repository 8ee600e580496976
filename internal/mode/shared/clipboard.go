// Package shared provides common utilities for mode controllers.
package shared

import (
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"
)

// Clipboard copies text for the user.
type Clipboard interface {
	Copy(text string) error
}

// SystemClipboard uses the OS clipboard locally and OSC 52 escape
// sequences over SSH or inside a multiplexer.
type SystemClipboard struct {
	// Out receives OSC 52 sequences. Nil means stderr.
	Out io.Writer
}

// MockClipboard records the last copied text.
type MockClipboard struct {
	Text *string
}

// Copy stores text if a destination was given.
func (m MockClipboard) Copy(text string) error {
	if m.Text != nil {
		*m.Text = text
	}
	return nil
}

// Copy copies text to the system clipboard.
func (c SystemClipboard) Copy(text string) error {
	out := c.Out
	if out == nil {
		out = os.Stderr
	}
	if shouldUseOSC52() {
		return writeOSC52(out, text)
	}
	if err := clipboard.WriteAll(text); err != nil {
		// no clipboard utility installed; the terminal may still accept OSC 52
		return writeOSC52(out, text)
	}
	return nil
}

// shouldUseOSC52 reports whether the session is remote or multiplexed.
func shouldUseOSC52() bool {
	for _, env := range []string{"SSH_TTY", "SSH_CLIENT", "SSH_CONNECTION", "TMUX", "STY"} {
		if os.Getenv(env) != "" {
			return true
		}
	}
	return false
}

func writeOSC52(w io.Writer, text string) error {
	seq := osc52.New(text)
	switch {
	case os.Getenv("TMUX") != "":
		seq = seq.Tmux()
	case os.Getenv("STY") != "":
		seq = seq.Screen()
	}
	if _, err := seq.WriteTo(w); err != nil {
		return fmt.Errorf("writing osc52 sequence: %w", err)
	}
	return nil
}
