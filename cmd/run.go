package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/scienceol/tea/internal/control"
	"github.com/scienceol/tea/internal/power"
	"github.com/scienceol/tea/internal/server"
	"github.com/scienceol/tea/internal/state"
	"github.com/scienceol/tea/internal/tray"
	"github.com/scienceol/tea/internal/ui"
	"github.com/scienceol/tea/internal/wake"
	"github.com/spf13/cobra"
)

var flagTray bool

func init() {
	runCmd.Flags().BoolVar(&flagTray, "tray", false, "Show a system tray icon and menu")
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run tea in the foreground",
	Long: `Starts the sleep prevention service, restores the last saved state and
listens on the control socket. With --tray (or tray: true in the config file)
a tray icon offers the same controls.

Stops on SIGINT/SIGTERM, a quit request, or Quit from the tray.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(flagTray)
		if err != nil {
			return err
		}

		ui.Banner(version)

		caps := power.Detect()
		store := state.NewStore(cfg.StateFile)
		saved := store.Read()

		ctrl := control.New(wake.NewState(false, power.KeepScreenOn), store,
			control.WithCapabilities(caps),
			control.WithServiceFactory(control.DefaultServiceFactory(caps, cfg.WakeInterval)),
			control.WithStopTimeout(cfg.StopTimeout))

		srv := server.New(cfg.Socket, ctrl)
		if err := srv.Start(); err != nil {
			return fmt.Errorf("control socket: %w", err)
		}

		fmt.Fprintln(ui.Output)
		ui.KeyValue("Socket", cfg.Socket)
		ui.KeyValue("State", store.Path())
		ui.KeyValue("Interval", cfg.WakeInterval.String())
		if !caps.StrongSleepPrimitive {
			ui.Warn("No system sleep primitive found, falling back to simulated activity")
		}
		ui.Separator()

		ctrl.Restore(saved)
		if saved.SleepDisabled {
			ui.Success("Sleep prevention restored %s", ui.Dim("("+ctrl.Status().Mode.String()+")"))
		} else {
			ui.Info("Sleep prevention is off, use `tea toggle` to enable it")
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		var once sync.Once
		shutdown := func(reason string) {
			once.Do(func() {
				fmt.Fprintln(ui.Output)
				ui.Warn("Shutting down (%s)...", reason)
				ctrl.Quit()
				if err := srv.Close(); err != nil {
					ui.Error("Failed to close control socket: %v", err)
				}
			})
		}

		if !cfg.Tray {
			select {
			case <-sigCh:
				shutdown("signal")
			case <-srv.Quit():
				shutdown("quit requested")
			}
			return nil
		}

		t := tray.New(ctrl)
		go func() {
			select {
			case <-sigCh:
				shutdown("signal")
			case <-srv.Quit():
				shutdown("quit requested")
			case <-t.Quit():
				shutdown("quit from tray")
			}
			t.Stop()
		}()
		t.Run()
		return nil
	},
}
