package main

import (
	"fmt"

	"github.com/JanMattner/cuevox/internal/config"
	"github.com/JanMattner/cuevox/internal/presentation/graph"
	"github.com/JanMattner/cuevox/pkg/domain"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the rule grammars as a diagram",
	Long: `Outputs a Mermaid diagram (graph TD) of the grammar tree of every rule.
With --utterance the rule that handles the utterance is highlighted. Commands
are only logged, never sent.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		utterance, _ := cmd.Flags().GetString("utterance")

		app, err := loadApp(cmd.Context(), cmd, func(c *config.Config) {
			c.Sink = config.SinkLog
			c.Journal.Type = config.JournalNone
		})
		if err != nil {
			return err
		}
		defer app.Close()

		infos := app.Interpreter.Rules()
		grammars := app.Interpreter.Grammars()
		rules := make([]graph.Rule, len(infos))
		for i, info := range infos {
			rules[i] = graph.Rule{Name: info.Name, Expression: grammars[i], Fallback: info.Fallback}
		}

		var overlay *graph.GraphOverlay
		if utterance != "" {
			ann, err := app.Interpreter.InterpretUtterance(cmd.Context(), utterance)
			if err != nil {
				return err
			}
			overlay = &graph.GraphOverlay{MatchedRule: ann.Rule, Remaining: ann.Remaining}
			if ann.Rule == domain.NoRule {
				app.Logger.Warn("No rule handled the utterance", "input", ann.Input)
			}
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(rules, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("utterance", "u", "", "Highlight the rule handling this utterance")
}

