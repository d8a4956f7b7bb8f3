package cuevox_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/JanMattner/cuevox"
	"github.com/JanMattner/cuevox/pkg/domain"
	g "github.com/JanMattner/cuevox/pkg/grammar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunner_Run(t *testing.T) {
	interp, rec := newInterpreter(t)
	require.NoError(t, interp.LoadRuleSet("en"))

	var out bytes.Buffer
	r := cuevox.NewRunner()
	r.Input = strings.NewReader("turn the hallway light on\n\nmake coffee\n:rules\nexit\nturn the hallway light off\n")
	r.Output = &out

	require.NoError(t, r.Run(context.Background(), interp))

	got := out.String()
	assert.Contains(t, got, "--- cuevox")
	assert.Contains(t, got, `ok [rule 1 "turn entity on/off": send_command(ON) -> Hallway_Light]`)
	assert.Contains(t, got, "no match")
	assert.Contains(t, got, "0 lights in location: seq(")
	assert.Contains(t, got, "Bye!")
	assert.Equal(t, []any{"ON"}, rec.For("Hallway_Light"), "input after exit is not read")
}

func TestRunner_Headless(t *testing.T) {
	interp, _ := newInterpreter(t)
	interp.AddRule(g.Lit("hello"), domain.SendCommandAction("ON"))

	var out bytes.Buffer
	r := &cuevox.Runner{
		Input:    strings.NewReader("hello world"),
		Output:   &out,
		Headless: true,
		Format: func(ann domain.Annotation, err error) string {
			return ann.Input + "|" + strings.Join(ann.Remaining, ",")
		},
	}

	require.NoError(t, r.Run(context.Background(), interp))
	assert.Equal(t, "hello world|world\n", out.String(), "last line without newline is interpreted")
}

func TestRunner_RequiresIO(t *testing.T) {
	interp, _ := newInterpreter(t)
	assert.Error(t, cuevox.NewRunner().Run(context.Background(), interp))
	assert.Error(t, (&cuevox.Runner{Input: strings.NewReader("")}).Run(context.Background(), interp))
}

func TestRunner_Cancelled(t *testing.T) {
	interp, _ := newInterpreter(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &cuevox.Runner{Input: strings.NewReader("hello\n"), Output: &bytes.Buffer{}}
	assert.ErrorIs(t, r.Run(ctx, interp), context.Canceled)
}

func TestFormatAnnotation(t *testing.T) {
	tests := []struct {
		name string
		ann  domain.Annotation
		err  error
		want string
	}{
		{"no match", domain.Annotation{Rule: domain.NoRule}, nil, "no match"},
		{
			"failed dispatch",
			domain.Annotation{Rule: 2, Action: "send_command(OFF)"},
			nil,
			"failed [rule 2: send_command(OFF)]",
		},
		{
			"trailing tokens",
			domain.Annotation{Rule: 0, RuleName: "x", Success: true, Action: "cb", Remaining: []string{"please"}},
			nil,
			`ok [rule 0 "x": cb] (ignored: please)`,
		},
		{"error", domain.Annotation{Rule: 0, Action: "cb"}, errors.New("boom"), "error: boom [rule 0: cb]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cuevox.FormatAnnotation(tt.ann, tt.err))
		})
	}
}
