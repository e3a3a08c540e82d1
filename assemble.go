package makamail

import (
	"fmt"
	"io"
	"strings"

	"github.com/quentin/makamail/internal/pipeline"
)

// crlf is the MIME line terminator. Every structural line of the message
// uses it; the document body keeps its own line endings.
const crlf = "\r\n"

// assemble serializes the rewritten document and its parts into one
// ordered multipart/related stream. Pure function of its arguments: no
// nondeterminism from the concurrent phase reaches the emitted bytes.
//
// Layout: caller header lines, MIME envelope headers, blank line, the
// document body part, each image part in scan order, closing delimiter.
func assemble(w io.Writer, headers []string, boundary, body string, parts []*pipeline.Part) error {
	b := &strings.Builder{}

	for _, h := range headers {
		b.WriteString(strings.TrimRight(h, "\r\n"))
		b.WriteString(crlf)
	}
	b.WriteString("MIME-Version: 1.0" + crlf)
	fmt.Fprintf(b, "Content-Type: multipart/related; boundary=%q"+crlf, boundary)
	b.WriteString(crlf)

	// Document body part.
	b.WriteString("--" + boundary + crlf)
	b.WriteString("Content-Type: text/html; charset=utf-8" + crlf)
	b.WriteString(crlf)
	b.WriteString(body)
	b.WriteString(crlf)

	// Image parts, in original scan order.
	for _, p := range parts {
		b.WriteString("--" + boundary + crlf)
		fmt.Fprintf(b, "Content-Type: %s"+crlf, p.MIMEType)
		b.WriteString("Content-Transfer-Encoding: base64" + crlf)
		fmt.Fprintf(b, "Content-ID: <%s>"+crlf, p.ID)
		fmt.Fprintf(b, "Content-Disposition: inline; filename=%q"+crlf, p.Filename)
		b.WriteString(crlf)
		b.WriteString(p.Payload)
		b.WriteString(crlf)
	}

	b.WriteString("--" + boundary + "--" + crlf)

	_, err := io.WriteString(w, b.String())
	return err
}
