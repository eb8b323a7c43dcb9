package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"graph-crawler/internal/config"
)

var errStatusNotFound = errors.New("not found")

func newStatusCmd(cfg *config.Config, d *deps, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "status <sessionID>",
		Short: "Print the recorded status of a crawl session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d.wireStatus(*cfg)
			defer d.close()

			status, ok, err := d.status.GetStatus(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("load status: %w", err)
			}
			if !ok {
				return fmt.Errorf("session %s: %w", args[0], errStatusNotFound)
			}

			enc := json.NewEncoder(stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(status)
		},
	}
}
