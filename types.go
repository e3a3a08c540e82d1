package makamail

import (
	"time"

	"github.com/quentin/makamail/internal/pipeline"
)

// Input contains composition parameters.
type Input struct {
	SourcePath string   // Markdown or HTML file (required)
	Headers    []string // raw header lines emitted before the MIME headers
}

// Option configures a Composer.
type Option func(*Composer)

// composerConfig holds internal configuration for Composer.
type composerConfig struct {
	timeout  time.Duration
	workers  int
	boundary string
}

// defaultTimeout is used when no timeout is specified.
const defaultTimeout = 2 * time.Minute

// WithTimeout sets the overall composition timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("makamail: WithTimeout duration must be positive")
	}
	return func(c *Composer) {
		c.cfg.timeout = d
	}
}

// WithWorkers bounds the number of images processed concurrently.
// Zero (the default) means one task per image with no bound.
func WithWorkers(n int) Option {
	return func(c *Composer) {
		if n > 0 {
			c.cfg.workers = n
		}
	}
}

// WithBoundary fixes the multipart boundary string instead of generating
// one per message, making output reproducible across runs.
func WithBoundary(boundary string) Option {
	return func(c *Composer) {
		c.cfg.boundary = boundary
	}
}

// WithConverter replaces the Markdown format converter (e.g., by tests).
func WithConverter(conv pipeline.FormatConverter) Option {
	return func(c *Composer) {
		c.converter = conv
	}
}

// WithMIMEProber replaces the media-type prober (e.g., by tests).
func WithMIMEProber(p pipeline.MIMEProber) Option {
	return func(c *Composer) {
		c.prober = p
	}
}

// WithResizer replaces the image resizer (e.g., by tests).
func WithResizer(r pipeline.Resizer) Option {
	return func(c *Composer) {
		c.resizer = r
	}
}

// WithDimensionProber replaces the dimension prober (e.g., by tests).
func WithDimensionProber(d pipeline.DimensionProber) Option {
	return func(c *Composer) {
		c.dims = d
	}
}
