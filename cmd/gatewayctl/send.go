package main

import (
	"encoding/json"
	"fmt"

	"carrier-gateway/internal/delivery"
	"carrier-gateway/internal/sms"
	"carrier-gateway/pkg/utils"

	"github.com/spf13/cobra"
)

func newSendCmd(root *rootOptions) *cobra.Command {
	var (
		req    sms.SendSMSRequest
		record bool
	)
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send one SMS through the configured carrier chain",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			reg, err := sms.BuildRegistry(cfg.Carriers, cfg.CallbackURL("/webhooks/sms/status"))
			if err != nil {
				return err
			}

			var recorder sms.Recorder
			if record {
				db, err := utils.OpenPostgres(cmd.Context(), cfg.PostgresDSN(), utils.PostgresPoolConfig{MaxOpenConns: 2})
				if err != nil {
					return fmt.Errorf("open db: %w", err)
				}
				defer db.Close()
				recorder = delivery.NewPostgresStore(db)
			}

			res, err := sms.NewDispatcher(reg, recorder).SendSMS(cmd.Context(), req)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	cmd.Flags().StringVar(&req.To, "to", "", "destination number, E.164")
	cmd.Flags().StringVar(&req.Text, "text", "", "message body")
	cmd.Flags().StringVar(&req.ClientRef, "ref", "", "client reference echoed back")
	cmd.Flags().StringVar(&req.Preferred, "via", "", "carrier to try first")
	cmd.Flags().StringVar(&req.UserID, "user", "", "user id the message is sent for")
	cmd.Flags().BoolVar(&record, "record", false, "store the accepted message so status webhooks correlate")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}
