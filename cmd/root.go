package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/scienceol/tea/internal/client"
	"github.com/scienceol/tea/internal/config"
	"github.com/scienceol/tea/internal/logging"
	"github.com/spf13/cobra"
)

// requestTimeout bounds one-shot control requests. A mode change may wait
// for the old wake run to stop, so this sits above the default stop timeout.
const requestTimeout = 15 * time.Second

var (
	flagConfig   string
	flagSocket   string
	flagLogLevel string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default: <user config dir>/tea/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagSocket, "socket", "", "Control socket path")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
}

var rootCmd = &cobra.Command{
	Use:   "tea",
	Short: "Tea keeps your machine awake, with or without the screen",
	Long: `Tea prevents the system from sleeping while you need it awake.

The display can either be kept on as well, or left free to sleep on its own
schedule where the platform supports it. A running instance (tea run) is
controlled from the tray or from the toggle, mode, status, watch and quit
commands over a local control socket.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig resolves configuration and sets up logging.
func loadConfig(tray bool) (*config.Config, error) {
	cfg, err := config.Load(config.Flags{
		ConfigFile: flagConfig,
		Socket:     flagSocket,
		LogLevel:   flagLogLevel,
		Tray:       tray,
	})
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	if err := logging.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	return cfg, nil
}

// newClient returns a control client for the configured socket.
func newClient() (*client.Client, error) {
	cfg, err := loadConfig(false)
	if err != nil {
		return nil, err
	}
	return client.New(cfg.Socket), nil
}

func requestContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), requestTimeout)
}
