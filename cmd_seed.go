package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"booklend/internal/platform/auth"
	"booklend/internal/seed"
)

func newSeedCmd() *cobra.Command {
	var (
		catalogFile string
		memberEmail string
		loanCount   int
		seedValue   uint64
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import a catalog file and optionally create backdated demo loans",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, conn, err := openDB(cmd)
			if err != nil {
				return err
			}
			defer conn.Close()

			s := seed.New(conn, loanPolicy(cfg), seedValue, time.Now())

			f, err := os.Open(catalogFile)
			if err != nil {
				return err
			}
			defer f.Close()

			n, err := s.ImportCatalog(cmd.Context(), f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d books\n", n)

			if memberEmail == "" || loanCount <= 0 {
				return nil
			}
			m, err := auth.NewStore(conn).GetByEmail(cmd.Context(), memberEmail)
			if err != nil {
				return err
			}
			if m == nil {
				return fmt.Errorf("member %s not found", memberEmail)
			}
			loans, err := s.DemoLoans(cmd.Context(), m.ID, loanCount)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d demo loans for %s\n", len(loans), m.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&catalogFile, "catalog", "config/books.json", "JSON array of books to import")
	cmd.Flags().StringVar(&memberEmail, "member", "", "email of the member receiving demo loans")
	cmd.Flags().IntVar(&loanCount, "loans", 0, "number of demo loans to create")
	cmd.Flags().Uint64Var(&seedValue, "seed", uint64(time.Now().UnixNano()), "random seed for demo loan dates")
	return cmd
}
