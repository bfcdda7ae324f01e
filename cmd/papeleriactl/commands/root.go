package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pablini31/papelria/internal/config"
	"github.com/pablini31/papelria/internal/infra"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	// Global flags
	dbURL    string
	dbDriver string
	verbose  bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "papeleriactl",
	Short: "Administración del backend de la papelería",
	Long: `papeleriactl runs maintenance tasks against the same database and Redis
the server uses. Configuration comes from the environment and .env, like the
server; --db and --driver override it.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := zerolog.InfoLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).Level(level)
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "Database URL (default: DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&dbDriver, "driver", "", "postgres | sqlite (default: DB_DRIVER)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
}

// loadConfig applies the global flag overrides on top of config.Load.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if dbURL != "" {
		cfg.DatabaseURL = dbURL
	}
	if dbDriver != "" {
		cfg.DBDriver = dbDriver
	}
	return cfg, nil
}

// openDatabase connects and pings; unlike the server, every command here
// needs a live database.
func openDatabase(ctx context.Context, cfg *config.Config) (*gorm.DB, func(), error) {
	db, err := infra.NewDatabase(cfg, nil)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if err := infra.CheckDatabase(ctx, db); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("database unreachable: %w", err)
	}
	return db, closeFn, nil
}
