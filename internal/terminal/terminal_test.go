package terminal

import (
	"bytes"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDetectCapabilitiesNonTerminal(t *testing.T) {
	t.Setenv("KRAKEN_USE_KITTY_GRAPHICS", "1")
	f, err := os.Create(filepath.Join(t.TempDir(), "out"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	caps := DetectCapabilities(f)
	if caps.Interactive {
		t.Fatal("regular file reported as terminal")
	}
	if caps.SupportsKittyGraphics {
		t.Fatal("kitty graphics enabled without a terminal")
	}
}

func TestReset(t *testing.T) {
	var buf bytes.Buffer
	Reset(&buf)
	if !strings.HasPrefix(buf.String(), "\033[?25h") || !strings.Contains(buf.String(), "\033[?1049l") {
		t.Fatalf("unexpected reset sequence %q", buf.String())
	}
}

func TestEncodeImageForKitty(t *testing.T) {
	if got := EncodeImageForKitty(nil, 4, 2); got != "" {
		t.Fatalf("nil image encoded to %q", got)
	}

	img := image.NewRGBA(image.Rect(0, 0, 32, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 8), G: uint8(y * 8), B: 90, A: 255})
		}
	}

	out := EncodeImageForKitty(img, 4, 2)
	if !strings.HasPrefix(out, "\x1b_Ga=T,f=100,c=4,r=2,") {
		t.Fatalf("unexpected header %q", out[:min(len(out), 40)])
	}
	if !strings.HasSuffix(out, "\x1b\\") {
		t.Fatal("missing terminator")
	}
}
