package tools

import (
	"context"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
)

// FileProber detects a file's media type using file(1), falling back to the
// extension table when the tool produces nothing useful.
type FileProber struct {
	Runner Runner
}

// NewFileProber creates a FileProber backed by a real command runner.
func NewFileProber() *FileProber {
	return &FileProber{Runner: &ExecRunner{}}
}

// MIMEType reports the media type of the file at path.
func (p *FileProber) MIMEType(ctx context.Context, path string) (string, error) {
	stdout, stderr, err := p.Runner.Run(ctx, "file", "--brief", "--mime-type", path)
	if err != nil {
		return "", fmt.Errorf("probing %q: %s: %w", path, strings.TrimSpace(stderr), err)
	}

	mimeType := strings.TrimSpace(stdout)
	if mimeType == "" || mimeType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(filepath.Ext(path)); byExt != "" {
			return byExt, nil
		}
	}
	if mimeType == "" {
		return "", fmt.Errorf("probing %q: empty media type", path)
	}
	return mimeType, nil
}
