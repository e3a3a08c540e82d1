package main

import (
	"os"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared with config discovery and logging.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// headerFlags holds mail header composition flags.
type headerFlags struct {
	from    string
	to      []string
	cc      []string
	subject string
	extra   []string // raw "Name: value" lines
}

// cliFlags holds all flags for the makamail command.
type cliFlags struct {
	common      commonFlags
	headers     headerFlags
	output      string
	boundary    string
	workers     int
	timeout     string
	showVersion bool
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file path (default: .makamail.yaml in CWD or $HOME)")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show per-stage progress")
}

// addHeaderFlags adds mail header flags to a FlagSet.
func addHeaderFlags(fs *flag.FlagSet, f *headerFlags) {
	fs.StringVar(&f.from, "from", "", "From address")
	fs.StringSliceVar(&f.to, "to", nil, "To address (repeatable)")
	fs.StringSliceVar(&f.cc, "cc", nil, "Cc address (repeatable)")
	fs.StringVarP(&f.subject, "subject", "s", "", "Subject line")
	fs.StringArrayVar(&f.extra, "header", nil, "extra raw header line \"Name: value\" (repeatable)")
}

// parseFlags parses command-line flags and returns positional args.
func parseFlags(args []string) (*cliFlags, []string, error) {
	fs := flag.NewFlagSet("makamail", flag.ContinueOnError)
	f := &cliFlags{}

	fs.StringVarP(&f.output, "output", "o", "", "output file (default: stdout)")
	fs.StringVar(&f.boundary, "boundary", "", "multipart boundary override")
	fs.IntVarP(&f.workers, "workers", "w", 0, "concurrent image tasks (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "composition timeout (e.g., 30s, 2m)")
	fs.BoolVar(&f.showVersion, "version", false, "print version and exit")

	addCommonFlags(fs, &f.common)
	addHeaderFlags(fs, &f.headers)

	fs.Usage = func() { printUsage(os.Stderr, fs) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return f, fs.Args(), nil
}
