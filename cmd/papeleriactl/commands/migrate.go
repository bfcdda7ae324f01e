package commands

import (
	"github.com/pablini31/papelria/internal/infra"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// migrateCmd represents the migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the schema",
	Long: `Run AutoMigrate for every table plus the idempotent SQL patches
(indexes, case-insensitive usernames). Safe to run repeatedly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, closeDB, err := openDatabase(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeDB()

		if err := infra.RunMigrations(db); err != nil {
			return err
		}
		log.Info().Str("driver", cfg.DBDriver).Msg("migrations applied")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
