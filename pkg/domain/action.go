package domain

import (
	"context"
	"fmt"
	"reflect"
	"runtime"
)

// ActionKind tells the rule engine how to perform an Action.
type ActionKind string

const (
	// ActionSendCommand sends Payload to every entity of the parameter.
	ActionSendCommand ActionKind = "send_command"

	// ActionCallback invokes a host function with the parameter.
	ActionCallback ActionKind = "callback"
)

// Callback is a host-provided action. The boolean result becomes the success
// flag of the interpretation; an error is returned to the caller unchanged.
type Callback func(ctx context.Context, param *Parameter) (bool, error)

// Action describes a deferred effect. Evaluation only builds actions; they
// are performed by the rule engine after a whole rule matched.
type Action struct {
	Kind     ActionKind
	Name     string
	Payload  any
	Callback Callback
}

// SendCommandAction describes sending payload to the matched entities.
func SendCommandAction(payload any) *Action {
	return &Action{
		Kind:    ActionSendCommand,
		Name:    fmt.Sprintf("send_command(%v)", payload),
		Payload: payload,
	}
}

// NewCallback wraps fn as a named action.
func NewCallback(name string, fn Callback) *Action {
	return &Action{Kind: ActionCallback, Name: name, Callback: fn}
}

// CallbackOf wraps fn, naming it after the Go function it refers to.
// Anonymous functions get their compiler name (e.g. "main.main.func1").
func CallbackOf(fn Callback) *Action {
	return NewCallback(funcName(fn), fn)
}

// Descriptor returns a human-readable identification of the action.
func (a *Action) Descriptor() string {
	if a == nil {
		return ""
	}
	if a.Name != "" {
		return a.Name
	}
	if a.Kind == ActionCallback {
		return funcName(a.Callback)
	}
	return string(a.Kind)
}

func funcName(fn Callback) string {
	if fn == nil {
		return ""
	}
	if f := runtime.FuncForPC(reflect.ValueOf(fn).Pointer()); f != nil {
		return f.Name()
	}
	return "callback"
}
