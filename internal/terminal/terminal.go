// Package terminal detects what the attached terminal can do and restores it
// after the TUI exits.
package terminal

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/mattn/go-isatty"
)

type Capabilities struct {
	// Interactive is true when stdout is a terminal; headless output is used otherwise.
	Interactive           bool
	SupportsKittyGraphics bool
	TermProgram           string
}

// DetectCapabilities inspects f and the environment. Kitty graphics are
// opt-in through KRAKEN_USE_KITTY_GRAPHICS.
func DetectCapabilities(f *os.File) *Capabilities {
	caps := &Capabilities{
		Interactive: isInteractive(f),
		TermProgram: os.Getenv("TERM_PROGRAM"),
	}

	switch strings.ToLower(os.Getenv("KRAKEN_USE_KITTY_GRAPHICS")) {
	case "1", "true", "yes", "on":
		caps.SupportsKittyGraphics = caps.Interactive
		if caps.TermProgram == "" {
			caps.TermProgram = "kitty"
		}
	}

	return caps
}

func isInteractive(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Reset shows the cursor, clears attributes, leaves the alternate screen and
// disables mouse reporting.
func Reset(w io.Writer) {
	for _, seq := range []string{
		"\033[?25h",
		"\033[0m",
		"\033[?1049l",
		"\033[?1000l",
		"\033[?1002l",
		"\033[?1003l",
		"\033[?1006l",
	} {
		io.WriteString(w, seq)
	}
	if f, ok := w.(*os.File); ok {
		f.Sync()
	}
}

const kittyChunkSize = 4096

// EncodeImageForKitty returns img as a kitty graphics escape sequence sized
// to cols x rows cells, or "" when it cannot be encoded.
func EncodeImageForKitty(img image.Image, cols int, rows int) string {
	if img == nil || cols <= 0 || rows <= 0 {
		return ""
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return ""
	}

	// roughly 10x20 pixels per cell
	fitted := imaging.Fit(img, cols*10, rows*20, imaging.Lanczos)

	var buf bytes.Buffer
	if err := png.Encode(&buf, fitted); err != nil {
		return ""
	}
	encoded := base64.StdEncoding.EncodeToString(buf.Bytes())

	var out strings.Builder
	for i := 0; i < len(encoded); i += kittyChunkSize {
		end := min(i+kittyChunkSize, len(encoded))
		more := 1
		if end == len(encoded) {
			more = 0
		}
		if i == 0 {
			fmt.Fprintf(&out, "\x1b_Ga=T,f=100,c=%d,r=%d,m=%d;%s\x1b\\", cols, rows, more, encoded[i:end])
		} else {
			fmt.Fprintf(&out, "\x1b_Gm=%d;%s\x1b\\", more, encoded[i:end])
		}
	}
	return out.String()
}
