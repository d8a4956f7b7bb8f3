package main

import (
	"fmt"

	"github.com/JanMattner/cuevox/internal/cli"
	"github.com/JanMattner/cuevox/internal/compiler"
	"github.com/JanMattner/cuevox/internal/config"
	"github.com/JanMattner/cuevox/internal/runtime"
	"github.com/JanMattner/cuevox/internal/validator"
	"github.com/JanMattner/cuevox/pkg/adapters/file"
	"github.com/JanMattner/cuevox/pkg/adapters/memory"
	"github.com/JanMattner/cuevox/pkg/registry"
	"github.com/JanMattner/cuevox/pkg/rulesets"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [rules.yaml...]",
	Short: "Check rules for consistency",
	Long: `Compiles the built-in rule set of the configured language and the given rules
files (or the configured one) and reports grammar warnings, entity filters that
select no item and rules that can never perform an action.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, baseDir, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		files := args
		if len(files) == 0 && cfg.Rules != "" {
			files = []string{cli.Resolve(baseDir, cfg.Rules)}
		}

		var rules []runtime.Rule
		if cfg.Language != "" {
			set, err := rulesets.For(cfg.Language)
			if err != nil {
				return err
			}
			for _, r := range set {
				rules = append(rules, runtime.Rule{Name: r.Name, Expression: r.Expression})
			}
		}
		parser := compiler.NewParser(registry.NewRegistry())
		for _, f := range files {
			parsed, err := parser.ParseFile(f)
			if err != nil {
				return err
			}
			rules = append(rules, parsed...)
		}

		// Registry checks only run against a local items file.
		var reg *memory.Registry
		if cfg.Items.Source == "" || cfg.Items.Source == config.SourceFile {
			reg = memory.NewRegistry()
			if _, err := reg.Load(cmd.Context(), file.NewSource(cli.Resolve(baseDir, cfg.Items.File)), nil); err != nil {
				return err
			}
		}

		if reg == nil {
			err = validator.ValidateRules(rules, nil)
		} else {
			err = validator.ValidateRules(rules, reg)
		}
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d rules are valid! ✅\n", len(rules))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
