package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var callCmd = &cobra.Command{
	Use:     "call",
	Short:   "Call a read-only contract method and print the raw response",
	GroupID: "contracts",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		call, err := callFromFlags(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		w, err := openWallet(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer w.Close()

		body, err := w.CallMethod(ctx, call)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(body))
		return nil
	},
}

func init() {
	addCallFlags(callCmd)
}
