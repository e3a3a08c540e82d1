package pipeline

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/quentin/makamail/internal/document"
)

// ErrTransform indicates a probe, resize, read, or encode failure for a
// specific image. Fatal to the whole run: no partial output is produced.
var ErrTransform = errors.New("image transform failed")

// base64LineLength is the RFC 2045 maximum encoded line length.
const base64LineLength = 76

// Part is one finished mail part: the encoded image plus the metadata the
// assembler needs to emit it.
type Part struct {
	ID       string
	Filename string
	MIMEType string
	Payload  string // base64, wrapped at 76 columns with CRLF
}

// Resizer produces a resized copy of an image file. A zero width or height
// means that dimension is computed to preserve aspect ratio; both non-zero
// means resize to exactly that pixel size.
type Resizer interface {
	Resize(ctx context.Context, src, dst string, width, height int) error
}

// DimensionProber reports an image's natural pixel dimensions.
type DimensionProber interface {
	Dimensions(ctx context.Context, path string) (width, height int, err error)
}

// Transformer turns a classified Source into a Part. Each concurrent task
// gets its own staging namespace (files named by the ref ID), so
// transformers never contend with each other.
type Transformer struct {
	Resizer    Resizer
	Dims       DimensionProber
	StagingDir string
}

// Transform produces the Part for one image reference.
//
// Inline sources pass through: the payload is already base64, so it is only
// re-wrapped for transport, and the filename is the identifier itself since
// no extension information exists. External sources are resized according
// to the requested dimensions, or, when none are requested, have their
// natural dimensions probed and written back onto the document node.
func (t *Transformer) Transform(ctx context.Context, ref *document.ImageRef, src Source) (*Part, error) {
	switch src.Kind {
	case KindInline:
		return &Part{
			ID:       ref.ID,
			Filename: ref.ID,
			MIMEType: src.MIMEType,
			Payload:  wrapBase64(src.Payload),
		}, nil
	case KindExternal:
		return t.transformExternal(ctx, ref, src)
	default:
		return nil, fmt.Errorf("%w: %s: unknown source kind %d", ErrTransform, ref.ID, src.Kind)
	}
}

func (t *Transformer) transformExternal(ctx context.Context, ref *document.ImageRef, src Source) (*Part, error) {
	path := src.Path

	switch {
	case ref.Width > 0 || ref.Height > 0:
		staged := filepath.Join(t.StagingDir, ref.ID+filepath.Ext(src.Path))
		if err := t.Resizer.Resize(ctx, src.Path, staged, ref.Width, ref.Height); err != nil {
			return nil, fmt.Errorf("%w: %s: resizing: %v", ErrTransform, ref.ID, err)
		}
		path = staged
	default:
		// No resize requested: back-fill the natural dimensions so a
		// rendering client knows the intrinsic size without decoding.
		w, h, err := t.Dims.Dimensions(ctx, src.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: probing dimensions: %v", ErrTransform, ref.ID, err)
		}
		ref.SetDimensions(w, h)
	}

	data, err := os.ReadFile(path) // #nosec G304 -- path derives from the document being converted
	if err != nil {
		return nil, fmt.Errorf("%w: %s: reading: %v", ErrTransform, ref.ID, err)
	}

	return &Part{
		ID:       ref.ID,
		Filename: filepath.Base(src.Path),
		MIMEType: src.MIMEType,
		Payload:  encodeBase64(data),
	}, nil
}

// encodeBase64 encodes data and wraps it for mail transport.
func encodeBase64(data []byte) string {
	return wrapBase64(base64.StdEncoding.EncodeToString(data))
}

// wrapBase64 re-flows base64 text into 76-column CRLF lines. Existing
// whitespace is stripped first so inline payloads round-trip byte-exact
// after decoding, whatever their original line breaks.
func wrapBase64(encoded string) string {
	compact := strings.Map(func(r rune) rune {
		switch r {
		case '\r', '\n', ' ', '\t':
			return -1
		}
		return r
	}, encoded)

	var b strings.Builder
	b.Grow(len(compact) + 2*(len(compact)/base64LineLength+1))
	for len(compact) > base64LineLength {
		b.WriteString(compact[:base64LineLength])
		b.WriteString("\r\n")
		compact = compact[base64LineLength:]
	}
	b.WriteString(compact)
	return b.String()
}
