package ports

import (
	"context"

	"github.com/JanMattner/cuevox/pkg/domain"
)

// RuleInfo describes a registered rule for introspection.
type RuleInfo struct {
	Index    int    `json:"index"`
	Name     string `json:"name,omitempty"`
	Grammar  string `json:"grammar"`
	Fallback string `json:"fallback,omitempty"`
}

// Interpreter is the engine surface used by the adapters (HTTP, MCP, CLI).
type Interpreter interface {
	InterpretUtterance(ctx context.Context, text string) (domain.Annotation, error)
	Rules() []RuleInfo
}
