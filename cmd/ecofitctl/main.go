// Command ecofitctl is the operator CLI: migrations, bootstrap invitations and
// read-only views of a client's progress and schedule.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"alcyxob/ecofit/internal/config"
	"alcyxob/ecofit/internal/observability"
	"alcyxob/ecofit/internal/repository"
	"alcyxob/ecofit/internal/repository/backend"
	"alcyxob/ecofit/internal/service"

	"github.com/spf13/cobra"
)

// app is what every subcommand shares once the root has loaded config.
type app struct {
	cfg    config.Config
	logger *slog.Logger
	store  *repository.Store
}

var (
	configDir string
	current   *app
)

var rootCmd = &cobra.Command{
	Use:           "ecofitctl",
	Short:         "Operate an EcoFit deployment",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configDir)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger := observability.NewLogger(observability.LogConfig{
			Level:       cfg.App.LogLevel,
			Format:      observability.LogFormat(cfg.App.LogFormat),
			Output:      cmd.ErrOrStderr(),
			ServiceName: "ecofitctl",
		})
		current = &app{cfg: cfg, logger: logger}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if current == nil || current.store == nil {
			return nil
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return current.store.Close(ctx)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", ".", "directory holding config.yaml")
}

// openStore connects to the configured database on first use.
func (a *app) openStore(ctx context.Context) (*repository.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}
	store, err := backend.Open(ctx, a.cfg.Database, a.logger)
	if err != nil {
		return nil, err
	}
	a.store = store
	return store, nil
}

func (a *app) calendar() service.Calendar {
	return service.Calendar{Now: time.Now, Location: a.cfg.Location()}
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
