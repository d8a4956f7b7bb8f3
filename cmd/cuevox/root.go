package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/JanMattner/cuevox/internal/cli"
	"github.com/JanMattner/cuevox/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cuevox",
	Short: "cuevox turns spoken commands into home automation actions",
	Long: `cuevox matches transcribed utterances against rule grammars and sends the
resulting commands to openHAB, MQTT or Redis.

Without a subcommand it starts an interactive session reading one utterance per line.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "cuevox.yaml", "Configuration file (YAML or JSON)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("rules", "", "Rules file (overrides the configuration)")
	rootCmd.PersistentFlags().String("items", "", "Items file (overrides the configuration)")
}

// loadConfig reads the configuration selected by the persistent flags and
// returns it with the directory relative paths are resolved against.
func loadConfig(cmd *cobra.Command) (config.Config, string, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, "", err
	}
	baseDir := filepath.Dir(path)

	if rules, _ := cmd.Flags().GetString("rules"); rules != "" {
		cfg.Rules = absolute(rules)
	}
	if items, _ := cmd.Flags().GetString("items"); items != "" {
		cfg.Items.Source = config.SourceFile
		cfg.Items.File = absolute(items)
	}
	return cfg, baseDir, nil
}

// loadApp builds the application from the configuration. mutate, if any,
// adjusts the configuration first.
func loadApp(ctx context.Context, cmd *cobra.Command, mutate ...func(*config.Config)) (*cli.App, error) {
	cfg, baseDir, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	for _, m := range mutate {
		m(&cfg)
	}
	debug, _ := cmd.Flags().GetBool("debug")
	logger, err := cli.NewLogger(cfg.LogLevel, debug)
	if err != nil {
		return nil, err
	}
	return cli.Build(ctx, cfg, baseDir, logger)
}

// absolute makes command line paths independent of the config directory.
func absolute(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
