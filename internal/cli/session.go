package cli

import (
	"context"
	"io"
	"os"

	"github.com/JanMattner/cuevox"
	"github.com/JanMattner/cuevox/internal/presentation/tui"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// SessionOptions configures an interactive session.
type SessionOptions struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool
	// Watch reloads items and rules when their files change.
	Watch bool
}

// RunSession reads utterances from opts.Input until EOF, "exit" or a signal.
func RunSession(ctx context.Context, app *App, opts SessionOptions) error {
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	profile := termenv.Ascii
	if !opts.Headless && isTerminal(opts.Output) {
		profile = termenv.EnvColorProfile()
	}
	if !opts.Headless {
		tui.PrintBanner(opts.Output, profile, cuevox.Version)
	}

	sigCtx := NewSignalContext(ctx)
	defer sigCtx.Cancel()

	if opts.Watch {
		if err := app.Watch(sigCtx, func(path string) {
			if !opts.Headless {
				printSystemMessage(opts.Output, "Change detected in '%s'.", path)
			}
		}); err != nil {
			return err
		}
	}

	r := cuevox.NewRunner()
	r.Input = opts.Input
	r.Output = opts.Output
	r.Headless = opts.Headless
	r.Format = tui.NewFormatter(profile)

	err := r.Run(sigCtx, app.Serialized())
	if sig := sigCtx.Signal(); sig != nil && !opts.Headless {
		printSystemMessage(opts.Output, "Interrupted (%s).", sig)
	}
	return handleExecutionError(err)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
