package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/JanMattner/cuevox"
	"github.com/JanMattner/cuevox/pkg/adapters/memory"
	"github.com/JanMattner/cuevox/pkg/domain"
	g "github.com/JanMattner/cuevox/pkg/grammar"
	"github.com/JanMattner/cuevox/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, opts ...Option) (*Server, *memory.Recorder) {
	t.Helper()
	rec := memory.NewRecorder()
	interp := cuevox.New(memory.NewRegistryFromSpecs(ports.ContractItems, rec))
	require.NoError(t, interp.LoadRuleSet("en"))
	interp.AddNamedRule("explode", g.Lit("explode"), domain.NewCallback("explode", func(context.Context, *domain.Parameter) (bool, error) {
		return false, errors.New("boom")
	}))
	return NewServer(interp, opts...), rec
}

func callTool(t *testing.T, s *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	tool := s.MCPServer().GetTool(name)
	require.NotNil(t, tool, "tool %s should be registered", name)

	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	res, err := tool.Handler(context.Background(), req)
	require.NoError(t, err)
	return res
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := mcp.AsTextContent(res.Content[0])
	require.True(t, ok)
	return tc.Text
}

func TestInterpretUtterance(t *testing.T) {
	s, rec := newTestServer(t)

	res := callTool(t, s, "interpret_utterance", map[string]any{"text": "switch off the garden light"})
	require.False(t, res.IsError)

	out, ok := res.StructuredContent.(InterpretResult)
	require.True(t, ok)
	assert.True(t, out.Success)
	assert.Equal(t, "send_command(OFF)", out.Action)
	assert.Equal(t, []string{"Garden_Light"}, out.Entities)
	assert.Equal(t, []any{"OFF"}, rec.For("Garden_Light"))
	assert.Contains(t, text(t, res), `"success":true`)
}

func TestInterpretUtterance_CallbackError(t *testing.T) {
	s, _ := newTestServer(t)

	res := callTool(t, s, "interpret_utterance", map[string]any{"text": "explode"})
	require.False(t, res.IsError)

	out := res.StructuredContent.(InterpretResult)
	assert.False(t, out.Success)
	assert.Contains(t, out.Error, "boom")
}

func TestInterpretUtterance_Rejected(t *testing.T) {
	s, _ := newTestServer(t)

	res := callTool(t, s, "interpret_utterance", map[string]any{"text": " "})
	assert.True(t, res.IsError)

	res = callTool(t, s, "interpret_utterance", map[string]any{"text": strings.Repeat("a", MaxUtteranceSize+1)})
	assert.True(t, res.IsError)
	assert.Contains(t, text(t, res), "input rejected")
}

func TestListRules(t *testing.T) {
	s, _ := newTestServer(t)

	var rules []ports.RuleInfo
	require.NoError(t, json.Unmarshal([]byte(text(t, callTool(t, s, "list_rules", nil))), &rules))
	require.Len(t, rules, 6)
	assert.Equal(t, "turn entity on/off", rules[1].Name)
	assert.Equal(t, "explode", rules[5].Fallback)
}

func TestRulesResource(t *testing.T) {
	s, _ := newTestServer(t)

	var req mcp.ReadResourceRequest
	req.Params.URI = RulesURI
	contents, err := s.readRules(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, contents, 1)

	tc, ok := mcp.AsTextResourceContents(contents[0])
	require.True(t, ok)
	assert.Equal(t, "application/json", tc.MIMEType)
	assert.Contains(t, tc.Text, "lights in location")
}

func TestRecentInterpretations(t *testing.T) {
	s, _ := newTestServer(t)
	assert.Nil(t, s.MCPServer().GetTool("recent_interpretations"), "history needs a journal")

	journal := memory.NewJournal(0)
	rec := memory.NewRecorder()
	interp := cuevox.New(memory.NewRegistryFromSpecs(ports.ContractItems, rec), cuevox.WithJournal(journal))
	require.NoError(t, interp.LoadRuleSet("en"))
	s = NewServer(interp, WithJournal(journal))

	callTool(t, s, "interpret_utterance", map[string]any{"text": "turn on the garden light"})
	callTool(t, s, "interpret_utterance", map[string]any{"text": "turn off the garden light"})

	var records []domain.Record
	res := callTool(t, s, "recent_interpretations", map[string]any{"limit": 1})
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "turn off the garden light", records[0].Input)

	res = callTool(t, s, "recent_interpretations", nil)
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &records))
	assert.Len(t, records, 2)
}
