package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var deviceCmd = &cobra.Command{
	Use:     "device",
	Short:   "Show this installation's device identifier",
	GroupID: "wallet",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, slot, err := loadDevice(context.Background(), cfg, logger)
		if err != nil {
			return err
		}
		defer slot.Close()

		key := slotKey(cfg)
		if jsonOutput {
			printJSON(map[string]string{
				"device_id": id.String(),
				"slot":      key.String(),
				"store":     cfg.Store,
			})
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Device:  %s\n", id)
		fmt.Fprintf(cmd.OutOrStdout(), "Slot:    %s (%s)\n", key, cfg.Store)
		return nil
	},
}
