package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"booklend/internal/loans"
	"booklend/internal/platform/db"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "booklend",
		Short:         "Library catalog and book loan backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// .env は任意。無ければ環境変数と config.yaml だけで動く
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("load .env: %w", err)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", db.DefaultConfigPath, "path to config.yaml")

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newSeedCmd(),
		newCreateAdminCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openDB loads the config, connects and applies the schema.
func openDB(cmd *cobra.Command) (*db.Config, *sqlx.DB, error) {
	cfg, err := db.LoadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Migrate(cmd.Context(), conn); err != nil {
		conn.Close()
		return nil, nil, err
	}
	log.Printf("[INFO] connected to DB: driver=%s", cfg.DB.Driver)
	return cfg, conn, nil
}

func loanPolicy(cfg *db.Config) loans.Policy {
	return loans.Policy{
		Period:      daysToDuration(cfg.Loans.PeriodDays),
		MaxRenewals: *cfg.Loans.MaxRenewals,
	}
}
