package commands

import (
	"errors"
	"fmt"

	"github.com/pablini31/papelria/internal/repository"
	"github.com/pablini31/papelria/internal/service"
	"github.com/spf13/cobra"
)

var (
	adminUsername string
	adminPassword string
	adminNombre   string
)

var seedAdminCmd = &cobra.Command{
	Use:   "seed-admin",
	Short: "Create the admin user or reset its password",
	Example: `  papeleriactl seed-admin --username admin --password s3cret
  papeleriactl seed-admin --username admin --password s3cret --nombre "Dueña"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if adminUsername == "" || adminPassword == "" {
			return errors.New("--username y --password son obligatorios")
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		db, closeDB, err := openDatabase(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeDB()

		svc := service.NewUsuarioService(repository.NewUsuarioRepository(db))
		u, created, err := svc.AsegurarAdmin(cmd.Context(), adminNombre, adminUsername, adminPassword)
		if err != nil {
			return err
		}
		action := "actualizado"
		if created {
			action = "creado"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "usuario %q %s (id %d, rol %s)\n", u.Username, action, u.ID, u.Rol)
		return nil
	},
}

func init() {
	seedAdminCmd.Flags().StringVar(&adminUsername, "username", "", "Username")
	seedAdminCmd.Flags().StringVar(&adminPassword, "password", "", "Password (min 6)")
	seedAdminCmd.Flags().StringVar(&adminNombre, "nombre", "Administrador", "Display name")
	rootCmd.AddCommand(seedAdminCmd)
}
