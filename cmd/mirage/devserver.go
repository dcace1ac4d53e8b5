package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/alfredjeanlab/mirage/internal/devserver"
)

var devserverCmd = &cobra.Command{
	Use:     "devserver",
	Short:   "Run an in-memory Mirage backend for local development",
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		if !cmd.Flags().Changed("addr") {
			addr = cfg.DevAddr
		}
		publicURL, _ := cmd.Flags().GetString("public-url")
		if publicURL == "" {
			publicURL = "http://localhost" + portOf(addr) + "/"
		}

		dev := devserver.New(
			devserver.WithAgent(cfg.Agent),
			devserver.WithPublicURL(publicURL),
			devserver.WithPendingPolls(cfg.DevPendingPolls),
			devserver.WithLogger(logger),
		)
		httpServer := &http.Server{
			Addr:              addr,
			Handler:           dev.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			logger.Info("dev server listening", "addr", addr, "public_url", publicURL, "pending_polls", cfg.DevPendingPolls)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			logger.Info("shutting down dev server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		})

		if err := g.Wait(); err != nil {
			return err
		}
		logger.Info("shutdown complete")
		return nil
	},
}

// portOf returns the ":port" suffix of a listen address.
func portOf(addr string) string {
	_, port, err := net.SplitHostPort(addr)
	if err != nil || port == "" {
		return ""
	}
	return ":" + port
}

func init() {
	devserverCmd.Flags().String("addr", ":3000", "listen address (overrides MIRAGE_DEV_ADDR)")
	devserverCmd.Flags().String("public-url", "", "base of login and approval URLs (default http://localhost<port>/)")
}
