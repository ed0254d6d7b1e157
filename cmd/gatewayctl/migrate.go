package main

import (
	"fmt"

	"carrier-gateway/migrations"
	"carrier-gateway/pkg/utils"

	"github.com/spf13/cobra"
)

func newMigrateCmd(root *rootOptions) *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if list {
				names, err := migrations.Names()
				if err != nil {
					return err
				}
				for _, n := range names {
					fmt.Fprintln(cmd.OutOrStdout(), n)
				}
				return nil
			}

			cfg, err := root.load()
			if err != nil {
				return err
			}
			db, err := utils.OpenPostgres(cmd.Context(), cfg.PostgresDSN(), utils.PostgresPoolConfig{MaxOpenConns: 2})
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			applied, err := migrations.Apply(cmd.Context(), db)
			for _, n := range applied {
				fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", n)
			}
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			if len(applied) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "print embedded migrations without touching the database")
	return cmd
}
