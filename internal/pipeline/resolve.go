package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/quentin/makamail/internal/document"
)

// Sentinel errors for image classification.
var (
	// ErrUnsupportedEncoding indicates an inline image whose payload is not
	// base64. Embedded images are emitted exclusively in base64; unencoded
	// or otherwise-encoded inline payloads are rejected.
	ErrUnsupportedEncoding = errors.New("unsupported inline image encoding")
)

// SourceKind discriminates the Source variant.
type SourceKind int

const (
	// KindInline marks an image whose bytes are embedded in the reference
	// value as a base64 data URI.
	KindInline SourceKind = iota
	// KindExternal marks an image located by a filesystem path.
	KindExternal
)

// Source is the classified origin of one image, produced once by the
// Resolver and consumed exhaustively by the Transformer. No further string
// inspection of the reference value happens downstream.
type Source struct {
	Kind     SourceKind
	MIMEType string
	Payload  string // inline only: base64 text exactly as found
	Path     string // external only: absolute filesystem path
}

// MIMEProber reports the media type of a file.
type MIMEProber interface {
	MIMEType(ctx context.Context, path string) (string, error)
}

// Resolver classifies image references. Pure classification: no side
// effects on the document or the filesystem.
type Resolver struct {
	Prober MIMEProber
}

// Resolve determines the Source for one image reference. Data URIs must
// carry an explicit base64 marker; anything else inline fails with
// ErrUnsupportedEncoding. Every other value is treated as a locator,
// resolved against baseDir, and probed for its media type.
func (r *Resolver) Resolve(ctx context.Context, ref *document.ImageRef, baseDir string) (Source, error) {
	if strings.HasPrefix(ref.Src, "data:") {
		return resolveDataURI(ref)
	}

	path := ref.Src
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}

	mimeType, err := r.Prober.MIMEType(ctx, path)
	if err != nil {
		return Source{}, fmt.Errorf("probing media type of %s: %w", ref.ID, err)
	}

	return Source{Kind: KindExternal, MIMEType: mimeType, Path: path}, nil
}

// resolveDataURI parses data:<mime>[;param...];base64,<payload>.
func resolveDataURI(ref *document.ImageRef) (Source, error) {
	meta, payload, found := strings.Cut(strings.TrimPrefix(ref.Src, "data:"), ",")
	if !found {
		return Source{}, fmt.Errorf("%w: %s: malformed data URI", ErrUnsupportedEncoding, ref.ID)
	}

	fields := strings.Split(meta, ";")
	mimeType := fields[0]

	encoding := ""
	if len(fields) > 1 {
		encoding = fields[len(fields)-1]
	}
	if encoding != "base64" {
		if encoding == "" {
			encoding = "none"
		}
		return Source{}, fmt.Errorf("%w: %s: %q", ErrUnsupportedEncoding, ref.ID, encoding)
	}

	return Source{Kind: KindInline, MIMEType: mimeType, Payload: payload}, nil
}
