package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mbolis/quick-forms/config"
	"github.com/mbolis/quick-forms/database"
	"github.com/mbolis/quick-forms/log"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	v := viper.New()
	root := &cobra.Command{
		Use:           "qforms",
		Short:         "Build, publish and collect online forms",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	config.AddFlags(root.PersistentFlags())
	cobra.CheckErr(config.Bind(v, root.PersistentFlags()))

	root.AddCommand(
		serveCmd(v),
		migrateCmd(v),
		userCmd(v),
		formsCmd(v),
	)
	return root
}

// loadConfig reads the configuration and applies the log level it asks for.
func loadConfig(v *viper.Viper) (config.Config, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return cfg, err
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}
	return cfg, nil
}

// withStore opens the configured database for the duration of fn.
func withStore(v *viper.Viper, fn func(cfg config.Config, store *database.Store) error) error {
	cfg, err := loadConfig(v)
	if err != nil {
		return err
	}
	db, err := database.Open(cfg.DBUrl)
	if err != nil {
		return fmt.Errorf("open %s: %w", cfg.DBUrl, err)
	}
	defer db.Close()
	return fn(cfg, database.NewStore(db))
}

func migrateCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(v, func(cfg config.Config, store *database.Store) error {
				var version uint
				err := store.DB().QueryRowContext(cmd.Context(), `SELECT version FROM schema_migrations`).Scan(&version)
				if err != nil && !errors.Is(err, sql.ErrNoRows) {
					return err
				}
				log.Infof("%s at schema version %d", cfg.DBUrl, version)
				return nil
			})
		},
	}
}
