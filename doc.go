// Package makamail converts a document that references images into a
// self-contained, mail-transportable multipart/related message: every image
// is embedded as a base64 part referenced by a cid: identifier, optionally
// resized to the dimensions requested on its node.
//
// # Quick Start
//
//	comp := makamail.New()
//	msg, err := comp.Compose(ctx, makamail.Input{
//	    SourcePath: "report.md",
//	    Headers:    []string{"From: a@example.com", "To: b@example.com", "Subject: Report"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("report.eml", msg, 0644)
//
// # Pipeline
//
//  1. Markdown sources are converted to HTML via goldmark; HTML sources are
//     read as-is.
//  2. The document is parsed into a mutable tree and its image nodes are
//     enumerated in scan order, each assigned a sequential part identifier.
//  3. One concurrent task per image classifies the reference (inline data
//     URI vs external file), resizes and base64-encodes as needed, and
//     rewrites its node to a cid: reference. Results are observed strictly
//     in scan order, so output bytes never depend on completion order.
//  4. The rewritten document and all parts are assembled into one ordered
//     multipart/related stream.
//
// Any failure aborts the whole run; nothing is retried and no partial
// output is produced.
//
// # Configuration
//
// Use functional options to customize the composer:
//
//	comp := makamail.New(
//	    makamail.WithTimeout(2 * time.Minute),
//	    makamail.WithWorkers(4),
//	    makamail.WithBoundary("my-boundary"),
//	)
//
// # Tool Requirements
//
// Resizing and probing shell out to ImageMagick (magick) and file(1).
// Documents without external images need neither.
package makamail
