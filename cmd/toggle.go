package cmd

import (
	"github.com/scienceol/tea/internal/ui"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(toggleCmd)
}

var toggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Toggle sleep prevention on the running instance",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		ctx, cancel := requestContext(cmd)
		defer cancel()

		st, err := c.Toggle(ctx)
		if err != nil {
			return err
		}
		if st.Awake {
			ui.Success("Sleep prevention enabled")
		} else {
			ui.Success("Sleep prevention disabled")
		}
		ui.State(st)
		return nil
	},
}
