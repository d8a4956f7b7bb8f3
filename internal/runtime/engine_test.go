package runtime_test

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/JanMattner/cuevox/internal/runtime"
	"github.com/JanMattner/cuevox/internal/testutils"
	"github.com/JanMattner/cuevox/pkg/adapters/memory"
	"github.com/JanMattner/cuevox/pkg/domain"
	g "github.com/JanMattner/cuevox/pkg/grammar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	calls  int
	params []*domain.Parameter
	result bool
	err    error
}

func (c *counter) action(name string) *domain.Action {
	return domain.NewCallback(name, func(_ context.Context, p *domain.Parameter) (bool, error) {
		c.calls++
		c.params = append(c.params, p)
		return c.result, c.err
	})
}

func setup(specs ...domain.ItemSpec) (*memory.Registry, *memory.Recorder) {
	rec := memory.NewRecorder()
	return memory.NewRegistryFromSpecs(specs, rec), rec
}

func TestEngine_LiteralRule(t *testing.T) {
	reg, _ := setup()
	eng := runtime.NewEngine(reg)
	c := &counter{result: true}
	eng.AddRule(g.Lit("foo"), c.action("foo"))
	ctx := context.Background()

	ann, err := eng.InterpretUtterance(ctx, "Foo!")
	require.NoError(t, err)
	assert.True(t, ann.Success)
	assert.Equal(t, 1, c.calls)
	assert.Equal(t, "foo", ann.Action)
	assert.Equal(t, 0, ann.Rule)
	assert.NotEmpty(t, ann.ID)

	for _, utterance := range []string{"fo", "fooo", "fo'o", "foo'", "fooö", "fooò", "bar", "", "  !? "} {
		ann, err := eng.InterpretUtterance(ctx, utterance)
		require.NoError(t, err)
		assert.False(t, ann.Success, utterance)
		assert.Equal(t, domain.NoRule, ann.Rule)
	}
	assert.Equal(t, 1, c.calls)
}

func TestEngine_ActionResultIsSuccess(t *testing.T) {
	reg, _ := setup()
	eng := runtime.NewEngine(reg)
	c := &counter{result: false}
	eng.AddRule(g.Seq(g.Lit("bar"), g.Lit("foo"), g.Lit("foobar")), c.action("fails"))

	ann, err := eng.InterpretUtterance(context.Background(), "bar foo foobar")
	require.NoError(t, err)
	assert.False(t, ann.Success)
	assert.Equal(t, 1, c.calls)
	assert.Equal(t, 0, ann.Rule, "the rule still performed its action")
}

func TestEngine_StopsAfterFirstAction(t *testing.T) {
	reg, _ := setup()
	eng := runtime.NewEngine(reg)
	first := &counter{result: false}
	second := &counter{result: true}
	eng.AddRule(g.Lit("foo"), first.action("first"))
	eng.AddRule(g.Lit("foo"), second.action("second"))

	ann, err := eng.InterpretUtterance(context.Background(), "foo")
	require.NoError(t, err)
	assert.False(t, ann.Success)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, second.calls)
}

func TestEngine_RuleWithoutActionContinues(t *testing.T) {
	reg, _ := setup()
	eng := runtime.NewEngine(reg)
	c := &counter{result: true}
	eng.AddRule(g.Lit("foo"), nil)
	eng.AddRule(g.Seq(g.Lit("foo"), g.Opt(g.Lit("bar"))), c.action("second"))

	ann, err := eng.InterpretUtterance(context.Background(), "foo")
	require.NoError(t, err)
	assert.True(t, ann.Success)
	assert.Equal(t, 1, ann.Rule)
	assert.Equal(t, 1, c.calls)
}

func TestEngine_NoRuleMatches(t *testing.T) {
	reg, _ := setup()
	eng := runtime.NewEngine(reg)
	eng.AddRule(g.Lit("foo"), nil)

	ann, err := eng.InterpretUtterance(context.Background(), "foo bar")
	require.NoError(t, err)
	assert.False(t, ann.Success)
	assert.Empty(t, ann.Action)
	assert.Equal(t, []string{"foo", "bar"}, ann.Remaining)
}

func TestEngine_ExpressionActionOverridesFallback(t *testing.T) {
	reg, rec := setup(domain.ItemSpec{Name: "lamp", Label: "lamp"})
	eng := runtime.NewEngine(reg)
	c := &counter{result: true}
	eng.AddRule(g.Seq(g.Entity(g.EntityOptions{}), g.Cmd(g.Lit("on"), "ON")), c.action("fallback"))

	ann, err := eng.InterpretUtterance(context.Background(), "lamp on")
	require.NoError(t, err)
	assert.True(t, ann.Success)
	assert.Equal(t, "send_command(ON)", ann.Action)
	assert.Equal(t, 0, c.calls)
	assert.Equal(t, []any{"ON"}, rec.For("lamp"))
}

func TestEngine_FallbackReceivesParameter(t *testing.T) {
	reg, _ := setup(domain.ItemSpec{Name: "lamp", Label: "lamp"})
	eng := runtime.NewEngine(reg)
	c := &counter{result: true}
	eng.AddRule(g.Seq(g.Lit("status"), g.Entity(g.EntityOptions{})), c.action("status"))

	ann, err := eng.InterpretUtterance(context.Background(), "status lamp")
	require.NoError(t, err)
	assert.True(t, ann.Success)
	require.Len(t, c.params, 1)
	assert.Equal(t, []string{"lamp"}, c.params[0].EntityNames())
	assert.Equal(t, []string{"lamp"}, ann.Parameter.EntityNames())
}

func TestEngine_CallbackErrorPropagates(t *testing.T) {
	reg, _ := setup()
	boom := errors.New("boom")
	eng := runtime.NewEngine(reg)
	c := &counter{err: boom}
	eng.AddRule(g.Lit("foo"), c.action("explode"))

	ann, err := eng.InterpretUtterance(context.Background(), "foo")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.False(t, ann.Success)
}

func TestEngine_CallbackWithoutFunction(t *testing.T) {
	reg, _ := setup()
	eng := runtime.NewEngine(reg)
	eng.AddRule(g.Lit("foo"), &domain.Action{Kind: domain.ActionCallback, Name: "missing"})

	_, err := eng.InterpretUtterance(context.Background(), "foo")
	assert.ErrorIs(t, err, domain.ErrUnknownAction)
}

func TestEngine_AnonymousCallbackDescriptor(t *testing.T) {
	reg, _ := setup()
	eng := runtime.NewEngine(reg)
	eng.AddRule(g.Lit("foo"), domain.CallbackOf(func(context.Context, *domain.Parameter) (bool, error) {
		return true, nil
	}))

	ann, err := eng.InterpretUtterance(context.Background(), "foo")
	require.NoError(t, err)
	assert.True(t, ann.Success)
	assert.True(t, strings.Contains(ann.Action, "TestEngine_AnonymousCallbackDescriptor"), ann.Action)
}

func TestEngine_SendsToEveryTaggedEntity(t *testing.T) {
	reg, rec := setup(
		domain.ItemSpec{Name: "one", Label: "one", Tags: []string{"bar"}},
		domain.ItemSpec{Name: "two", Label: "two", Tags: []string{"bar"}},
		domain.ItemSpec{Name: "three", Label: "three"},
	)
	eng := runtime.NewEngine(reg)
	eng.AddRule(g.Seq(
		g.EntityOf(g.EntityOptions{Tags: []string{"bar"}, MatchMultiple: true}, g.Inner{Expr: g.Lit("something")}),
		g.Cmd(g.Lit("works"), 123),
	), nil)

	ann, err := eng.InterpretUtterance(context.Background(), "something works")
	require.NoError(t, err)
	assert.True(t, ann.Success)
	assert.Equal(t, []any{123}, rec.For("one"))
	assert.Equal(t, []any{123}, rec.For("two"))
	assert.Empty(t, rec.For("three"))
}

func TestEngine_DuplicatesReceiveCommandTwice(t *testing.T) {
	reg, rec := setup(domain.ItemSpec{Name: "itemA", Label: "itemA"}, domain.ItemSpec{Name: "itemB", Label: "itemB"})
	eng := runtime.NewEngine(reg)
	eng.AddRule(g.Seq(g.Entity(g.EntityOptions{}), g.Entity(g.EntityOptions{}), g.Cmd(g.Lit("foo"), 123)), nil)
	ctx := context.Background()

	_, err := eng.InterpretUtterance(ctx, "itemA itemB foo")
	require.NoError(t, err)
	assert.Equal(t, []any{123}, rec.For("itemA"))
	assert.Equal(t, []any{123}, rec.For("itemB"))

	rec.Reset()
	_, err = eng.InterpretUtterance(ctx, "itemA itemA foo")
	require.NoError(t, err)
	assert.Equal(t, []any{123, 123}, rec.For("itemA"))
}

func TestEngine_NoDispatchUnlessWholeRuleMatches(t *testing.T) {
	reg, rec := setup(domain.ItemSpec{Name: "lamp", Label: "lamp"})
	eng := runtime.NewEngine(reg, runtime.WithCompleteMatch(true))
	eng.AddRule(g.Seq(g.Entity(g.EntityOptions{}), g.Cmd(g.Lit("on"), "ON"), g.Lit("please")), nil)

	for _, utterance := range []string{"lamp on thanks", "lamp on please now", "lamp off please"} {
		ann, err := eng.InterpretUtterance(context.Background(), utterance)
		require.NoError(t, err)
		assert.False(t, ann.Success, utterance)
	}
	assert.Empty(t, rec.Commands())

	ann, err := eng.InterpretUtterance(context.Background(), "lamp on please")
	require.NoError(t, err)
	assert.True(t, ann.Success)
	assert.Len(t, rec.Commands(), 1)
}

func TestEngine_TrailingTokensAllowedByDefault(t *testing.T) {
	reg, _ := setup()
	eng := runtime.NewEngine(reg)
	c := &counter{result: true}
	eng.AddRule(g.Seq(g.Lit("foo bar")), c.action("foo"))

	ann, err := eng.InterpretUtterance(context.Background(), "foo abc")
	require.NoError(t, err)
	assert.True(t, ann.Success)
	assert.Equal(t, []string{"abc"}, ann.Remaining)
}

func TestEngine_SendCommandWithoutEntitiesFails(t *testing.T) {
	reg, rec := setup(domain.ItemSpec{Name: "lamp", Label: "lamp"})
	eng := runtime.NewEngine(reg)
	eng.AddRule(g.Seq(g.Lit("turn"), g.Cmd(g.Lit("on"), "ON"), g.Opt(g.Lit("the")), g.Entity(g.EntityOptions{})), nil)

	ann, err := eng.InterpretUtterance(context.Background(), "turn on")
	require.NoError(t, err)
	assert.False(t, ann.Success)
	assert.Equal(t, "send_command(ON)", ann.Action)
	assert.Empty(t, rec.Commands())
}

func TestEngine_SendErrorsDoNotAbort(t *testing.T) {
	reg, rec := setup(
		domain.ItemSpec{Name: "a", Label: "a", Tags: []string{"t"}},
		domain.ItemSpec{Name: "b", Label: "b", Tags: []string{"t"}},
	)
	rec.FailFor("a", errors.New("offline"))
	logger, logs := testutils.NewLogger()
	eng := runtime.NewEngine(reg, runtime.WithLogger(logger))
	eng.AddRule(g.Seq(g.EntityOf(g.EntityOptions{Tags: []string{"t"}, MatchMultiple: true}, g.Inner{Expr: g.Lit("all")}), g.Cmd(g.Lit("on"), "ON")), nil)

	ann, err := eng.InterpretUtterance(context.Background(), "all on")
	require.NoError(t, err)
	assert.False(t, ann.Success)
	assert.Equal(t, []any{"ON"}, rec.For("b"))
	assert.Contains(t, logs.Messages(slog.LevelError), "send command failed")
}

func TestEngine_TurnOnLightsInLocation(t *testing.T) {
	reg, rec := setup(
		domain.ItemSpec{Name: "itemOne", Label: "itemOne", Kind: "Switch", Tags: []string{"Light"}, Groups: []string{"itemTwo"}},
		domain.ItemSpec{Name: "itemTwo", Label: "itemTwo", Kind: domain.KindGroup, Groups: []string{"itemThree"}},
		domain.ItemSpec{Name: "itemThree", Label: "itemThree", Kind: domain.KindGroup},
	)
	onOff := g.Alt(g.Cmd(g.Lit("on"), "ON"), g.Cmd(g.Lit("off"), "OFF"))
	the := g.Opt(g.Lit("the"))
	location := g.Entity(g.EntityOptions{Kinds: []string{domain.KindGroup}, Include: g.Bool(false)})
	rule := g.Seq(
		g.Words("turn", "switch"),
		g.Opt(onOff),
		g.Alt(g.Seq(g.Lit("all"), the), the),
		g.EntityOf(
			g.EntityOptions{Tags: []string{"Light"}, Kinds: []string{"Switch"}, MatchMultiple: true},
			g.Inner{Expr: g.Seq(g.Words("light", "lights"), g.Opt(onOff), g.Seq(g.Words("in", "of"), the), location), GroupContext: g.GroupContextLast},
		),
		g.Opt(onOff),
	)
	c := &counter{result: true}
	eng := runtime.NewEngine(reg)
	eng.AddRule(rule, c.action("fallback"))

	ann, err := eng.InterpretUtterance(context.Background(), "turn on all the lights in itemThree")
	require.NoError(t, err)
	assert.True(t, ann.Success)
	assert.Equal(t, 0, c.calls)
	assert.Equal(t, []any{"ON"}, rec.For("itemOne"))
	assert.Empty(t, rec.For("itemTwo"))
	assert.Empty(t, rec.For("itemThree"))
}

func TestEngine_ClearRulesAndIntrospection(t *testing.T) {
	reg, _ := setup()
	eng := runtime.NewEngine(reg)
	c := &counter{result: true}
	eng.Add(runtime.Rule{Name: "greeting", Expression: g.Words("hi", "hello"), Fallback: c.action("greet")})
	eng.AddRule(g.Lit("foo"), nil)

	rules := eng.Rules()
	require.Len(t, rules, 2)
	assert.Equal(t, "greeting", rules[0].Name)
	assert.Equal(t, "alt(hi | hello)", rules[0].Grammar)
	assert.Equal(t, "greet", rules[0].Fallback)
	assert.Equal(t, 1, rules[1].Index)
	assert.Empty(t, rules[1].Fallback)

	grammars := eng.Grammars()
	require.Len(t, grammars, 2)
	assert.Equal(t, "foo", grammars[1].String())

	eng.ClearRules()
	assert.Empty(t, eng.Grammars())
	assert.Empty(t, eng.Rules())
	ann, err := eng.InterpretUtterance(context.Background(), "hi")
	require.NoError(t, err)
	assert.False(t, ann.Success)
	assert.Equal(t, 0, c.calls)
}

func TestEngine_DiagnosticsLoggedOnAdd(t *testing.T) {
	reg, _ := setup()
	logger, logs := testutils.NewLogger()
	eng := runtime.NewEngine(reg, runtime.WithLogger(logger))

	eng.AddRule(g.Seq(
		g.Lit("foo bar"),
		g.EntityFromMap(map[string]any{"include": "yes", "tagMode": "invalid"}, nil),
	), nil)

	assert.Equal(t, []string{
		"Found expression with multiple tokens, only 1 token is supported: foo bar",
		`entity(): 'include' must be boolean - got: "yes"`,
		`entity(): 'tagMode' must be 'all' or 'any' - got: "invalid"; defaulting to 'all'`,
	}, logs.Warnings())
}
