package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	makamail "github.com/quentin/makamail"
	"github.com/quentin/makamail/internal/config"
	"github.com/quentin/makamail/internal/fileutil"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput        = errors.New("exactly one input file is required")
	ErrInvalidTimeout = errors.New("invalid timeout")
	ErrWriteOutput    = errors.New("failed to write output")
)

// composer is the interface for the composition service.
type composer interface {
	Compose(ctx context.Context, input makamail.Input) ([]byte, error)
}

// run composes the message for the single positional input and writes it to
// the destination. Destination files are promoted atomically only after
// full success, so a failed run never leaves a partially written file.
func run(ctx context.Context, f *cliFlags, cfg *config.Config, args []string, comp composer, stdout, stderr io.Writer) error {
	if len(args) != 1 {
		return ErrNoInput
	}
	src := args[0]

	if f.common.verbose {
		fmt.Fprintf(stderr, "Composing %s\n", src)
	}

	msg, err := comp.Compose(ctx, makamail.Input{
		SourcePath: src,
		Headers:    buildHeaders(f, cfg),
	})
	if err != nil {
		return err
	}

	if f.output == "" {
		if _, err := stdout.Write(msg); err != nil {
			return fmt.Errorf("%w: %v", ErrWriteOutput, err)
		}
		return nil
	}

	if err := fileutil.WriteFileAtomic(f.output, msg, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	if !f.common.quiet {
		fmt.Fprintf(stderr, "Created %s\n", f.output)
	}
	return nil
}

// buildHeaders merges header flags over config defaults into raw lines.
// Flag values win; extra headers from both sources are carried.
func buildHeaders(f *cliFlags, cfg *config.Config) []string {
	from := f.headers.from
	if from == "" {
		from = cfg.From
	}
	to := f.headers.to
	if len(to) == 0 {
		to = cfg.To
	}
	cc := f.headers.cc
	if len(cc) == 0 {
		cc = cfg.Cc
	}
	subject := f.headers.subject
	if subject == "" {
		subject = cfg.Subject
	}

	var headers []string
	if from != "" {
		headers = append(headers, "From: "+from)
	}
	if len(to) > 0 {
		headers = append(headers, "To: "+strings.Join(to, ", "))
	}
	if len(cc) > 0 {
		headers = append(headers, "Cc: "+strings.Join(cc, ", "))
	}
	if subject != "" {
		headers = append(headers, "Subject: "+subject)
	}
	headers = append(headers, cfg.Headers...)
	headers = append(headers, f.headers.extra...)
	return headers
}

// composerOptions translates flags and config into library options.
func composerOptions(f *cliFlags, cfg *config.Config) ([]makamail.Option, error) {
	workers := f.workers
	if workers == 0 {
		workers = cfg.Workers
	}
	opts := []makamail.Option{
		makamail.WithWorkers(makamail.ResolveWorkers(workers)),
	}

	boundary := f.boundary
	if boundary == "" {
		boundary = cfg.Boundary
	}
	if boundary != "" {
		opts = append(opts, makamail.WithBoundary(boundary))
	}

	if f.timeout != "" {
		d, err := time.ParseDuration(f.timeout)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidTimeout, f.timeout)
		}
		opts = append(opts, makamail.WithTimeout(d))
	}
	return opts, nil
}

// printUsage writes the usage banner and flag help.
func printUsage(w io.Writer, fs *flag.FlagSet) {
	fmt.Fprintln(w, "Usage: makamail [flags] <input.md|input.markdown|input.html>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Embeds every image of the document as a base64 part of a")
	fmt.Fprintln(w, "multipart/related message, resizing images whose nodes request")
	fmt.Fprintln(w, "explicit dimensions.")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Flags:")
	fmt.Fprint(w, fs.FlagUsages())
}
