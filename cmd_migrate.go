package main

import (
	"log"
	"time"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the books, members and loans tables if missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, conn, err := openDB(cmd)
			if err != nil {
				return err
			}
			defer conn.Close()
			log.Println("[INFO] schema is up to date")
			return nil
		},
	}
}

func daysToDuration(days int) time.Duration {
	return time.Duration(days) * 24 * time.Hour
}
