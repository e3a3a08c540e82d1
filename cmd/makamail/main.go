package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/automaxprocs/maxprocs"

	makamail "github.com/quentin/makamail"
	"github.com/quentin/makamail/internal/config"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	flags, args, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(ExitUsage)
	}

	if flags.showVersion {
		fmt.Println("makamail " + Version)
		os.Exit(ExitSuccess)
	}

	// Configure GOMAXPROCS for containers. Error ignored: maxprocs.Set only
	// fails if the GOMAXPROCS env is invalid, in which case Go runtime
	// defaults apply and the program continues safely.
	if flags.common.verbose {
		_, _ = maxprocs.Set(maxprocs.Logger(func(format string, a ...interface{}) {
			fmt.Fprintf(os.Stderr, format+"\n", a...)
		}))
	} else {
		_, _ = maxprocs.Set(maxprocs.Logger(func(string, ...interface{}) {}))
	}

	cfg, err := config.Load(flags.common.config)
	if err != nil {
		fail(err)
	}

	opts, err := composerOptions(flags, cfg)
	if err != nil {
		fail(err)
	}
	comp := makamail.New(opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, flags, cfg, args, comp, os.Stdout, os.Stderr); err != nil {
		fail(err)
	}
}

// fail reports the diagnostic and terminates with the mapped exit code.
func fail(err error) {
	fmt.Fprintln(os.Stderr, "makamail: "+err.Error())
	os.Exit(exitCodeFor(err))
}
