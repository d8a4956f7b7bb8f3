package main

import (
	"github.com/JanMattner/cuevox/internal/cli"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Interpret utterances from standard input",
	Long: `Starts an interactive session: every line is interpreted as one utterance.
Type ':rules' to list the rules and 'exit' to quit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		headless, _ := cmd.Flags().GetBool("headless")
		watch, _ := cmd.Flags().GetBool("watch")

		app, err := loadApp(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer app.Close()

		return cli.RunSession(cmd.Context(), app, cli.SessionOptions{
			Input:    cmd.InOrStdin(),
			Output:   cmd.OutOrStdout(),
			Headless: headless,
			Watch:    watch,
		})
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("headless", false, "Run in headless mode (no banner or prompts)")
	runCmd.Flags().BoolP("watch", "w", false, "Reload items and rules when their files change")

	rootCmd.RunE = runCmd.RunE
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
}
