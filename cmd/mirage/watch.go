package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/mirage/internal/events"
	"github.com/alfredjeanlab/mirage/internal/ui"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Short:   "Tail Mirage lifecycle events from NATS",
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		topic, _ := cmd.Flags().GetString("topic")
		if cfg.NATSURL == "" {
			return fmt.Errorf("no NATS URL; set MIRAGE_NATS_URL or add one to the profile")
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		sub, err := events.NewNATSSubscriber(cfg.NATSURL,
			nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
				logger.Warn("nats disconnected", "err", err)
			}),
			nats.ReconnectHandler(func(_ *nats.Conn) {
				logger.Info("nats reconnected")
			}),
		)
		if err != nil {
			return err
		}
		defer sub.Close()

		ch, cancel, err := sub.Subscribe(topic)
		if err != nil {
			return fmt.Errorf("subscribing to events: %w", err)
		}
		defer cancel()

		logger.Debug("watching events", "topic", topic, "nats_url", cfg.NATSURL)
		return tail(ctx, cmd.OutOrStdout(), ch)
	},
}

// tail prints messages until ctx is done or ch closes.
func tail(ctx context.Context, out io.Writer, ch <-chan events.Message) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			printEvent(out, msg)
		}
	}
}

func printEvent(out io.Writer, msg events.Message) {
	if jsonOutput {
		fmt.Fprintln(out, string(msg.Data))
		return
	}
	var env events.Envelope
	_ = json.Unmarshal(msg.Data, &env)
	at := env.At
	if at.IsZero() {
		at = time.Now()
	}
	fmt.Fprintf(out, "%s  %s  %s  %s\n",
		ui.RenderMuted(at.Local().Format("15:04:05")),
		ui.RenderAccent(msg.Topic),
		env.DeviceID,
		string(msg.Data),
	)
}

func init() {
	watchCmd.Flags().String("topic", events.TopicAll, "NATS subject to watch")
}
