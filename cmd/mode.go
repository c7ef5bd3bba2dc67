package cmd

import (
	"github.com/scienceol/tea/internal/power"
	"github.com/scienceol/tea/internal/ui"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(modeCmd)
}

var modeCmd = &cobra.Command{
	Use:   "mode keep|allow",
	Short: "Choose whether the screen stays on while sleep is prevented",
	Long: `Sets the screen mode of the running instance.

  keep   keep both the system and the display awake (KeepScreenOn)
  allow  keep the system awake but let the display sleep (AllowScreenOff)

If sleep prevention is active it is restarted with the new mode.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"keep", "allow"},
	RunE: func(cmd *cobra.Command, args []string) error {
		mode, err := power.ParseScreenMode(args[0])
		if err != nil {
			return err
		}
		c, err := newClient()
		if err != nil {
			return err
		}
		ctx, cancel := requestContext(cmd)
		defer cancel()

		st, err := c.SetMode(ctx, mode)
		if err != nil {
			return err
		}
		ui.Success("Screen mode set to %s", st.Mode)
		ui.State(st)
		return nil
	},
}
