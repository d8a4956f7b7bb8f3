package domain

import "errors"

// ErrUnknownAction is returned when a rule references an action that is not registered.
var ErrUnknownAction = errors.New("unknown action")

// ErrInvalidExpression is returned when a grammar definition cannot be compiled.
var ErrInvalidExpression = errors.New("invalid expression")

// ErrEntityNotFound is returned by adapters when an entity name cannot be resolved.
var ErrEntityNotFound = errors.New("entity not found")

// ErrNoSink is returned when a command is sent to an item without a command sink.
var ErrNoSink = errors.New("no command sink configured")
