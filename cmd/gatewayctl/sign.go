package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"carrier-gateway/internal/webhook"

	"github.com/spf13/cobra"
)

// sign prints the headers a sender must attach to a webhook body. Handy for
// replaying carrier callbacks with curl.
func newSignCmd(root *rootOptions) *cobra.Command {
	var (
		secret    string
		timestamp string
		file      string
	)
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Compute webhook signature headers for a request body",
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				cfg, err := root.load()
				if err != nil {
					return err
				}
				secret = cfg.Webhook.Secret
			}
			if secret == "" {
				return errors.New("webhook secret is required")
			}

			var (
				body []byte
				err  error
			)
			if file == "" || file == "-" {
				body, err = io.ReadAll(cmd.InOrStdin())
			} else {
				body, err = os.ReadFile(file)
			}
			if err != nil {
				return fmt.Errorf("read body: %w", err)
			}

			if timestamp == "" {
				timestamp = strconv.FormatInt(time.Now().Unix(), 10)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %s\n", webhook.HeaderTimestamp, timestamp)
			fmt.Fprintf(out, "%s: %s\n", webhook.HeaderSignature, webhook.Sign(secret, timestamp, body))
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", "", "shared secret (defaults to WEBHOOK_SECRET)")
	cmd.Flags().StringVar(&timestamp, "timestamp", "", "unix seconds (defaults to now)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "body file, - for stdin")
	return cmd
}
