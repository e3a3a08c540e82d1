package tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Magick resizes images and probes their dimensions via ImageMagick.
type Magick struct {
	Runner Runner
	Bin    string // ImageMagick binary, defaults to "magick"
}

// NewMagick creates a Magick backed by a real command runner.
func NewMagick() *Magick {
	return &Magick{Runner: &ExecRunner{}, Bin: "magick"}
}

func (m *Magick) bin() string {
	if m.Bin != "" {
		return m.Bin
	}
	return "magick"
}

// Resize writes a resized copy of src to dst. Both dimensions non-zero
// forces the exact pixel size (aspect ratio not preserved); a single
// dimension scales the other proportionally.
func (m *Magick) Resize(ctx context.Context, src, dst string, width, height int) error {
	geometry, err := resizeGeometry(width, height)
	if err != nil {
		return err
	}

	_, stderr, err := m.Runner.Run(ctx, m.bin(), src, "-resize", geometry, dst)
	if err != nil {
		return fmt.Errorf("resizing %q: %s: %w", src, strings.TrimSpace(stderr), err)
	}
	return nil
}

// Dimensions reports the natural pixel dimensions of the image at path.
func (m *Magick) Dimensions(ctx context.Context, path string) (int, int, error) {
	stdout, stderr, err := m.Runner.Run(ctx, m.bin(), "identify", "-format", "%w %h", path)
	if err != nil {
		return 0, 0, fmt.Errorf("identifying %q: %s: %w", path, strings.TrimSpace(stderr), err)
	}

	fields := strings.Fields(stdout)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("identifying %q: unexpected output %q", path, stdout)
	}
	width, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("identifying %q: bad width %q", path, fields[0])
	}
	height, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, fmt.Errorf("identifying %q: bad height %q", path, fields[1])
	}
	return width, height, nil
}

// resizeGeometry builds the ImageMagick geometry argument.
// "WxH!" ignores aspect ratio; "W" and "xH" preserve it.
func resizeGeometry(width, height int) (string, error) {
	switch {
	case width > 0 && height > 0:
		return fmt.Sprintf("%dx%d!", width, height), nil
	case width > 0:
		return strconv.Itoa(width), nil
	case height > 0:
		return "x" + strconv.Itoa(height), nil
	default:
		return "", fmt.Errorf("resize requires at least one dimension")
	}
}
