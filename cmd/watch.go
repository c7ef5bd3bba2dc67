package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/scienceol/tea/internal/protocol"
	"github.com/scienceol/tea/internal/ui"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print state changes of the running instance as they happen",
	Long: `Follows the running instance and prints every state change. The
connection is re-established with exponential backoff if it drops.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		ui.Info("Watching, press Ctrl+C to stop")
		return c.Watch(ctx, func(st protocol.StatePayload) {
			ui.Separator()
			ui.State(st)
		})
	},
}
