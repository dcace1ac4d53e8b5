package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/mirage/internal/mirage"
	"github.com/alfredjeanlab/mirage/internal/model"
)

var sendCmd = &cobra.Command{
	Use:     "send",
	Short:   "Submit a transaction for approval",
	GroupID: "wallet",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		call, err := callFromFlags(cmd)
		if err != nil {
			return err
		}
		wait, _ := cmd.Flags().GetBool("wait")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		w, _, err := connected(ctx)
		if err != nil {
			return err
		}
		defer w.Close()

		pending, err := w.SendTransaction(ctx, call)
		if err != nil {
			return err
		}
		ticket, err := pending.Wait(ctx)
		if err != nil {
			return err
		}

		if !wait {
			if jsonOutput {
				printJSON(map[string]model.Ticket{"ticket": ticket})
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Ticket:  %s\n", ticket)
			}
			return nil
		}
		return pollAndPrint(ctx, cmd, w, ticket)
	},
}

// pollAndPrint polls ticket, printing every status.
func pollAndPrint(ctx context.Context, cmd *cobra.Command, w *wallet, ticket model.Ticket) error {
	out := cmd.OutOrStdout()
	if !jsonOutput {
		fmt.Fprintf(out, "Ticket:  %s\n", ticket)
	}
	_, err := w.PollTicket(ctx, ticket, func(s model.TicketStatus) {
		printStatus(out, ticket, s)
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	if errors.Is(err, mirage.ErrPollExhausted) {
		return fmt.Errorf("ticket %s still pending after %d attempts", ticket, cfg.PollAttempts)
	}
	return err
}

func init() {
	addCallFlags(sendCmd)
	sendCmd.Flags().Bool("wait", false, "poll the ticket until it leaves the pending state")
}
