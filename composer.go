package makamail

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/quentin/makamail/internal/document"
	"github.com/quentin/makamail/internal/pipeline"
	"github.com/quentin/makamail/internal/tools"
)

// Compile-time interface implementation checks.
// These ensure implementations satisfy their interfaces at compile time,
// catching signature mismatches before runtime.
var (
	_ pipeline.FormatConverter = (*pipeline.GoldmarkConverter)(nil)
	_ pipeline.MIMEProber      = (*tools.FileProber)(nil)
	_ pipeline.Resizer         = (*tools.Magick)(nil)
	_ pipeline.DimensionProber = (*tools.Magick)(nil)
)

// Composer orchestrates the document-to-multipart pipeline.
// Create with New(), then call Compose() per message. A Composer is safe
// for concurrent use: each run owns its own staging directory and tree.
type Composer struct {
	cfg       composerConfig
	converter pipeline.FormatConverter
	prober    pipeline.MIMEProber
	resizer   pipeline.Resizer
	dims      pipeline.DimensionProber
}

// New creates a Composer with default configuration.
// Use options to customize behavior (e.g., WithTimeout, WithWorkers).
func New(opts ...Option) *Composer {
	c := &Composer{
		cfg: composerConfig{timeout: defaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	// Create real collaborators if not injected (e.g., by tests).
	if c.converter == nil {
		c.converter = pipeline.NewGoldmarkConverter()
	}
	if c.prober == nil {
		c.prober = tools.NewFileProber()
	}
	magick := tools.NewMagick()
	if c.resizer == nil {
		c.resizer = magick
	}
	if c.dims == nil {
		c.dims = magick
	}

	return c
}

// Compose runs the full pipeline and returns the assembled message bytes.
// The context is used for cancellation; the configured timeout applies on
// top of it. Nothing is written anywhere: promotion of the result to a
// destination is the caller's concern, which keeps failed runs from
// touching the destination at all.
func (c *Composer) Compose(ctx context.Context, input Input) ([]byte, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.timeout)
	defer cancel()

	markup, baseDir, err := c.loadSource(ctx, input.SourcePath)
	if err != nil {
		return nil, err
	}

	doc, err := document.Parse(markup, baseDir)
	if err != nil {
		return nil, err
	}
	refs := doc.Images()

	// One staging directory per run, partitioned by per-identifier file
	// names. Removed on every exit path, success or failure.
	staging, err := os.MkdirTemp("", "makamail-*")
	if err != nil {
		return nil, fmt.Errorf("creating staging directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(staging) }()

	parts, err := c.embedImages(ctx, refs, doc.BaseDir(), staging)
	if err != nil {
		return nil, err
	}

	body, err := doc.Render()
	if err != nil {
		return nil, err
	}

	boundary := c.cfg.boundary
	if boundary == "" {
		boundary = "=_makamail_" + uuid.NewString()
	}

	var buf bytes.Buffer
	if err := assemble(&buf, input.Headers, boundary, body, parts); err != nil {
		return nil, fmt.Errorf("assembling message: %w", err)
	}
	return buf.Bytes(), nil
}

// loadSource reads the source file, converting Markdown to HTML first.
// Returns the markup and the directory image locators resolve against.
func (c *Composer) loadSource(ctx context.Context, path string) (string, string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", "", fmt.Errorf("resolving source path: %w", err)
	}
	baseDir := filepath.Dir(abs)

	if isMarkdown(path) {
		markup, err := c.converter.ConvertFile(ctx, abs)
		if err != nil {
			return "", "", err
		}
		return markup, baseDir, nil
	}

	content, err := os.ReadFile(abs) // #nosec G304 -- user-provided input path
	if err != nil {
		return "", "", fmt.Errorf("reading source: %w", err)
	}
	return string(content), baseDir, nil
}

// validateInput checks that required fields are present and valid.
func validateInput(input Input) error {
	if input.SourcePath == "" {
		return ErrEmptySource
	}
	switch strings.ToLower(filepath.Ext(input.SourcePath)) {
	case ".md", ".markdown", ".html", ".htm":
		return nil
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidExtension, filepath.Ext(input.SourcePath))
	}
}

// isMarkdown reports whether the path needs format conversion first.
func isMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}
