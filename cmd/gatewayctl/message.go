package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"carrier-gateway/internal/delivery"
	"carrier-gateway/pkg/utils"

	"github.com/spf13/cobra"
)

func newMessageCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "message <provider-message-id>",
		Short: "Show stored delivery state for a carrier message id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			db, err := utils.OpenPostgres(cmd.Context(), cfg.PostgresDSN(), utils.PostgresPoolConfig{MaxOpenConns: 1})
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			msgs, err := delivery.NewPostgresStore(db).GetByProviderID(cmd.Context(), args[0])
			if errors.Is(err, delivery.ErrNotFound) {
				return fmt.Errorf("no message with provider id %q", args[0])
			}
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PROVIDER\tTO\tSTATUS\tERROR\tUPDATED")
			for _, m := range msgs {
				code, updated := "-", "-"
				if m.DeliveryErrorCode != nil {
					code = *m.DeliveryErrorCode
				}
				if m.DeliveryUpdatedAt != nil {
					updated = m.DeliveryUpdatedAt.Format(time.RFC3339)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", m.Provider, m.To, m.DeliveryStatus, code, updated)
			}
			return w.Flush()
		},
	}
}
