/*
Package cuevox is a rule-based interpreter for short voice commands, built for home automation.

An utterance like "turn on all the lights in the kitchen" is normalized, split into tokens and matched against an ordered list of grammar rules. The first rule that matches and yields an action wins: the action sends a command to the matched entities (items of the automation backend) or calls a host function.

# Concept

Grammars are built from a handful of combinators (package grammar): literals, sequences, alternatives, optionals, commands carrying a payload and entity expressions that resolve item labels, aliases, tags, kinds and group membership through a Registry (package ports). Matching is deterministic and greedy: there is no backtracking across combinators, and an ambiguous entity reference fails the rule instead of guessing.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/JanMattner/cuevox"
		"github.com/JanMattner/cuevox/pkg/adapters/memory"
		"github.com/JanMattner/cuevox/pkg/domain"
	)

	func main() {
		sink := memory.LogSink{}
		reg := memory.NewRegistryFromSpecs([]domain.ItemSpec{
			{Name: "Kitchen_Light", Label: "Kitchen Light", Kind: "Switch"},
		}, sink)

		interp := cuevox.New(reg)
		if err := interp.LoadRuleSet("en"); err != nil {
			log.Fatal(err)
		}

		ann, err := interp.InterpretUtterance(context.Background(), "turn the kitchen light on")
		if err != nil {
			log.Fatal(err)
		}
		log.Println(ann.Success, ann.RuleName)
	}

Rules can also be written in YAML and loaded with LoadRules; named callback actions referenced by those files are registered on Actions().

# Adapters

Entities come from YAML item files or the openHAB REST API; commands go to openHAB, MQTT or Redis. Interpretations can be journaled in memory, bbolt or Redis, observed through lifecycle hooks and exported as Prometheus metrics. The cmd/cuevox binary wires all of them behind a REPL, an HTTP API and an MCP server.
*/
package cuevox
