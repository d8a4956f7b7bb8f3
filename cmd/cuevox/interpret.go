package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/JanMattner/cuevox"
	"github.com/spf13/cobra"
)

var interpretCmd = &cobra.Command{
	Use:   "interpret <utterance>",
	Short: "Interpret a single utterance",
	Example: `  cuevox interpret "turn on the kitchen light"
  cuevox interpret --json switch off all lights in the living room`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonMode, _ := cmd.Flags().GetBool("json")

		app, err := loadApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		ann, ierr := app.Interpreter.InterpretUtterance(cmd.Context(), strings.Join(args, " "))
		out := cmd.OutOrStdout()
		if jsonMode {
			rec := struct {
				Record any    `json:"record"`
				Error  string `json:"error,omitempty"`
			}{Record: ann.Record()}
			if ierr != nil {
				rec.Error = ierr.Error()
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(rec); err != nil {
				return err
			}
		} else {
			fmt.Fprintln(out, cuevox.FormatAnnotation(ann, ierr))
		}

		if ierr != nil {
			return ierr
		}
		if !ann.Success {
			return fmt.Errorf("utterance %q was not handled", ann.Input)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(interpretCmd)
	interpretCmd.Flags().Bool("json", false, "Print the annotation as JSON")
}
