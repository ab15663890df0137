package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bryanwahyu/fraudscope/internal/application/console"
	"github.com/bryanwahyu/fraudscope/internal/application/render"
	"github.com/bryanwahyu/fraudscope/internal/config"
	"github.com/bryanwahyu/fraudscope/internal/infra/backend"
	"github.com/bryanwahyu/fraudscope/internal/logger"
)

var (
	configPath string
	backendURL string

	cfg *config.Config
	log *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "fraudscope",
	Short: "Operator console for the fraud analysis backend",
	Long: `fraudscope lets an operator pick a customer, run the backend analysis
and review the normalized result as a web console or in the terminal.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, required := config.ResolvePath(configPath)
		c, err := config.Load(path, required)
		if err != nil {
			return err
		}
		if backendURL != "" {
			c.Backend.BaseURL = backendURL
			if err := c.Validate(); err != nil {
				return err
			}
		}
		l, err := logger.New(c.Log.Level, c.Log.Format)
		if err != nil {
			return err
		}
		cfg, log = c, l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default config.yaml or $CONFIG_PATH)")
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", "", "backend base URL, overrides the config")
	rootCmd.AddCommand(serveCmd, runCmd, customersCmd)
}

// newService wires the backend client and the console service from cfg.
func newService() (*console.Service, *backend.Client) {
	client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout)
	opts := console.Options{
		CacheToggle:         cfg.Console.CacheToggle,
		FenceStaleResponses: cfg.Console.FenceStaleResponses,
	}
	return console.NewService(client, opts, nil, log), client
}

func renderOptions() render.Options {
	return render.Options{ScorePrecision: cfg.Console.ScorePrecision.ScorePrecision}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
