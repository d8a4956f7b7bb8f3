package domain

import "time"

// NoRule marks an annotation for which no rule performed an action.
const NoRule = -1

// Annotation is the outcome of interpreting one utterance. It is meant for
// observability and tests, not for further processing.
type Annotation struct {
	ID        string
	Time      time.Time
	Success   bool
	Input     string
	Tokens    []string
	Remaining []string
	Action    string
	Parameter *Parameter
	Rule      int
	RuleName  string
}

// Record is the serializable form of an Annotation, stored by journals and
// returned by the HTTP and MCP adapters.
type Record struct {
	ID        string         `json:"id"`
	Time      time.Time      `json:"time"`
	Success   bool           `json:"success"`
	Input     string         `json:"input"`
	Tokens    []string       `json:"tokens"`
	Remaining []string       `json:"remaining,omitempty"`
	Action    string         `json:"action,omitempty"`
	Entities  []string       `json:"entities,omitempty"`
	Values    map[string]any `json:"values,omitempty"`
	Rule      int            `json:"rule"`
	RuleName  string         `json:"rule_name,omitempty"`
}

// Record converts the annotation into its serializable form.
func (a Annotation) Record() Record {
	r := Record{
		ID:        a.ID,
		Time:      a.Time,
		Success:   a.Success,
		Input:     a.Input,
		Tokens:    a.Tokens,
		Remaining: a.Remaining,
		Action:    a.Action,
		Rule:      a.Rule,
		RuleName:  a.RuleName,
	}
	if a.Parameter != nil {
		r.Entities = a.Parameter.EntityNames()
		r.Values = a.Parameter.Values
	}
	return r
}
