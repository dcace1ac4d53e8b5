package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/mirage/internal/config"
	"github.com/alfredjeanlab/mirage/internal/ui"
)

var (
	baseURL     string
	jsonOutput  bool
	noBrowser   bool
	storeKind   string
	profileName string
	verbose     bool
	showStats   bool

	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "mirage <command>",
	Short:         "Device client for the Mirage wallet backend",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)

		if !ui.ShouldUseColor() {
			ui.ForceNoColor()
		}

		var err error
		cfg, err = loadConfig(cmd)
		return err
	},
}

// loadConfig reads the environment, then applies the active profile and
// explicit flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	c, err := config.Load()
	if err != nil {
		return nil, err
	}
	if storeKind != "" {
		c.Store = storeKind
		if err := c.Validate(); err != nil {
			return nil, err
		}
	}

	p, name, err := activeProfile(profileName)
	if err != nil {
		return nil, err
	}
	if name != "" {
		if p.BaseURL != "" && os.Getenv("MIRAGE_BASE_URL") == "" {
			c.BaseURL = p.BaseURL
		}
		if p.NATSURL != "" && os.Getenv("MIRAGE_NATS_URL") == "" {
			c.NATSURL = p.NATSURL
		}
		if p.Agent != "" && os.Getenv("MIRAGE_AGENT") == "" {
			c.Agent = p.Agent
		}
		logger.Debug("profile applied", "profile", name)
	}
	if cmd.Flags().Changed("base-url") {
		c.BaseURL = baseURL
	}
	return c, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", config.DefaultBaseURL, "Mirage backend base URL (overrides MIRAGE_BASE_URL and the profile)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&noBrowser, "no-browser", false, "print login and approval URLs instead of opening them")
	rootCmd.PersistentFlags().StringVar(&storeKind, "store", "", "save slot backend: file, postgres, s3 or memory")
	rootCmd.PersistentFlags().StringVar(&profileName, "profile", "", "profile to use instead of the active one")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&showStats, "stats", false, "print backend request counts to stderr on exit")

	rootCmd.AddGroup(
		&cobra.Group{ID: "wallet", Title: "Wallet:"},
		&cobra.Group{ID: "contracts", Title: "Contracts:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)

	cobra.EnableCommandSorting = false
	rootCmd.SetHelpFunc(colorizedHelpFunc())

	// Wallet
	rootCmd.AddCommand(deviceCmd)
	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(pollCmd)

	// Contracts
	rootCmd.AddCommand(callCmd)
	rootCmd.AddCommand(abiCmd)

	// System
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(devserverCmd)
	rootCmd.AddCommand(profileCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
