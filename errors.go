package makamail

import (
	"errors"

	"github.com/quentin/makamail/internal/document"
	"github.com/quentin/makamail/internal/pipeline"
)

// Sentinel errors for library operations. The pipeline taxonomy is defined
// next to the stages that raise it and re-exported here so callers match
// with errors.Is against a single package.
var (
	// ErrParse indicates the source markup could not be parsed.
	ErrParse = document.ErrParse

	// ErrConversion indicates Markdown-to-HTML conversion failed.
	ErrConversion = pipeline.ErrConversion

	// ErrUnsupportedEncoding indicates an inline image whose payload is not
	// in the required base64 encoding.
	ErrUnsupportedEncoding = pipeline.ErrUnsupportedEncoding

	// ErrTransform indicates a probe, resize, or encode failure for a
	// specific image reference.
	ErrTransform = pipeline.ErrTransform

	// ErrEmptySource indicates no source path was provided.
	ErrEmptySource = errors.New("source path cannot be empty")

	// ErrInvalidExtension indicates a source file whose extension is
	// neither Markdown nor HTML.
	ErrInvalidExtension = errors.New("source must have .md, .markdown, .html, or .htm extension")
)
