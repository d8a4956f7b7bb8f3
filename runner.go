package cuevox

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/JanMattner/cuevox/pkg/domain"
	"github.com/JanMattner/cuevox/pkg/ports"
)

// Runner is a line-based interactive harness: every input line is an
// utterance. This allows for easy testing and integration with different
// frontends (CLI, TUI, etc).
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool
	Format   AnnotationFormatter
}

// AnnotationFormatter renders the outcome of one utterance.
type AnnotationFormatter func(ann domain.Annotation, err error) string

// NewRunner creates a Runner. Input and Output must be set before Run.
func NewRunner() *Runner {
	return &Runner{Format: FormatAnnotation}
}

// Run reads utterances until EOF, "exit" or "quit", or until ctx is done.
// The ":rules" command lists the rules of interp.
func (r *Runner) Run(ctx context.Context, interp ports.Interpreter) error {
	if r.Input == nil {
		return fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}
	format := r.Format
	if format == nil {
		format = FormatAnnotation
	}

	lineReader := bufio.NewReader(r.Input)
	if !r.Headless {
		fmt.Fprintln(r.Output, "--- cuevox (type 'exit' to quit, ':rules' to list rules) ---")
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !r.Headless {
			fmt.Fprint(r.Output, "> ")
		}

		line, err := lineReader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("input error: %w", err)
		}
		eof := errors.Is(err, io.EOF)

		input := strings.TrimSpace(line)
		switch input {
		case "":
		case "exit", "quit":
			if !r.Headless {
				fmt.Fprintln(r.Output, "Bye!")
			}
			return nil
		case ":rules":
			for _, info := range interp.Rules() {
				fmt.Fprintln(r.Output, FormatRule(info))
			}
		default:
			ann, ierr := interp.InterpretUtterance(ctx, input)
			fmt.Fprintln(r.Output, format(ann, ierr))
		}

		if eof {
			return nil
		}
	}
}

// FormatAnnotation is the default plain-text formatter.
func FormatAnnotation(ann domain.Annotation, err error) string {
	var b strings.Builder
	switch {
	case err != nil:
		fmt.Fprintf(&b, "error: %v", err)
	case ann.Success:
		b.WriteString("ok")
	case ann.Rule == domain.NoRule:
		b.WriteString("no match")
	default:
		b.WriteString("failed")
	}
	if ann.Rule != domain.NoRule {
		fmt.Fprintf(&b, " [rule %d", ann.Rule)
		if ann.RuleName != "" {
			fmt.Fprintf(&b, " %q", ann.RuleName)
		}
		fmt.Fprintf(&b, ": %s", ann.Action)
		if names := ann.Parameter.EntityNames(); len(names) > 0 {
			fmt.Fprintf(&b, " -> %s", strings.Join(names, ", "))
		}
		b.WriteString("]")
	}
	if len(ann.Remaining) > 0 {
		fmt.Fprintf(&b, " (ignored: %s)", strings.Join(ann.Remaining, " "))
	}
	return b.String()
}

// FormatRule renders a rule description on one line.
func FormatRule(info ports.RuleInfo) string {
	s := fmt.Sprintf("%d", info.Index)
	if info.Name != "" {
		s += " " + info.Name
	}
	s += ": " + info.Grammar
	if info.Fallback != "" {
		s += " => " + info.Fallback
	}
	return s
}
