package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/mirage/internal/model"
)

var pollCmd = &cobra.Command{
	Use:     "poll <ticket>",
	Short:   "Poll a transaction ticket until it completes",
	GroupID: "wallet",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ticket := model.Ticket(args[0])
		if err := model.ValidateTicket(ticket); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		w, err := openWallet(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer w.Close()

		return pollAndPrint(ctx, cmd, w, ticket)
	},
}
