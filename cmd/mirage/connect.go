package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var connectCmd = &cobra.Command{
	Use:     "connect",
	Short:   "Exchange the device identifier for a session",
	Long:    "Connects the device to the backend. When the backend asks for a login,\nthe login URL is opened in a browser (or printed with --no-browser).",
	GroupID: "wallet",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		w, sess, err := connected(ctx)
		if err != nil {
			return err
		}
		defer w.Close()

		if jsonOutput {
			printJSON(sess)
			return nil
		}
		printSession(cmd.OutOrStdout(), sess)
		return nil
	},
}
