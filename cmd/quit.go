package cmd

import (
	"github.com/scienceol/tea/internal/ui"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(quitCmd)
}

var quitCmd = &cobra.Command{
	Use:   "quit",
	Short: "Stop the running instance",
	Long: `Stops sleep prevention and exits the running instance. The saved state
is left untouched, so the next tea run resumes where you left off.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		ctx, cancel := requestContext(cmd)
		defer cancel()

		if err := c.Quit(ctx); err != nil {
			return err
		}
		ui.Success("tea stopped")
		return nil
	},
}
