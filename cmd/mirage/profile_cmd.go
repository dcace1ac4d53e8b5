package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:     "profile",
	Short:   "Manage named backend profiles",
	GroupID: "system",
	// Profiles are local file operations; skip config loading so a broken
	// environment can still be fixed from here.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
}

var profileAddCmd = &cobra.Command{
	Use:   "add <name> <base-url>",
	Short: "Add or update a named profile",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, url := args[0], args[1]
		natsURL, _ := cmd.Flags().GetString("nats")
		agent, _ := cmd.Flags().GetString("agent")

		pc, err := loadProfiles()
		if err != nil {
			return err
		}
		pc.Profiles[name] = Profile{BaseURL: url, NATSURL: natsURL, Agent: agent}
		if err := saveProfiles(pc); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "profile %q added (%s)\n", name, url)
		return nil
	},
}

var profileRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a named profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		pc, err := loadProfiles()
		if err != nil {
			return err
		}
		if _, ok := pc.Profiles[name]; !ok {
			return fmt.Errorf("profile %q not found", name)
		}
		delete(pc.Profiles, name)
		if pc.Active == name {
			pc.Active = ""
		}
		if err := saveProfiles(pc); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "profile %q removed\n", name)
		return nil
	},
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all profiles",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pc, err := loadProfiles()
		if err != nil {
			return err
		}
		if len(pc.Profiles) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no profiles configured")
			return nil
		}
		names := make([]string, 0, len(pc.Profiles))
		for name := range pc.Profiles {
			names = append(names, name)
		}
		sort.Strings(names)

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "  NAME\tBASE URL\tNATS")
		for _, name := range names {
			p := pc.Profiles[name]
			marker := "  "
			if name == pc.Active {
				marker = "* "
			}
			fmt.Fprintf(w, "%s%s\t%s\t%s\n", marker, name, p.BaseURL, p.NATSURL)
		}
		return w.Flush()
	},
}

var profileUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the active profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]

		pc, err := loadProfiles()
		if err != nil {
			return err
		}
		if _, ok := pc.Profiles[name]; !ok {
			return fmt.Errorf("profile %q not found", name)
		}
		pc.Active = name
		if err := saveProfiles(pc); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "active profile set to %q\n", name)
		return nil
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show [<name>]",
	Short: "Show details for a profile (defaults to active)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pc, err := loadProfiles()
		if err != nil {
			return err
		}

		name := pc.Active
		if len(args) == 1 {
			name = args[0]
		}
		if name == "" {
			return fmt.Errorf("no active profile; specify a name or run 'mirage profile use <name>'")
		}

		p, ok := pc.Profiles[name]
		if !ok {
			return fmt.Errorf("profile %q not found", name)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		active := ""
		if name == pc.Active {
			active = " (active)"
		}
		fmt.Fprintf(w, "name:\t%s%s\n", name, active)
		fmt.Fprintf(w, "base_url:\t%s\n", p.BaseURL)
		if p.NATSURL != "" {
			fmt.Fprintf(w, "nats_url:\t%s\n", p.NATSURL)
		}
		if p.Agent != "" {
			fmt.Fprintf(w, "agent:\t%s\n", p.Agent)
		}
		return w.Flush()
	},
}

func init() {
	profileAddCmd.Flags().String("nats", "", "NATS URL for lifecycle events")
	profileAddCmd.Flags().String("agent", "", "User-Agent sent to the backend")

	profileCmd.AddCommand(profileAddCmd)
	profileCmd.AddCommand(profileRemoveCmd)
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileUseCmd)
	profileCmd.AddCommand(profileShowCmd)
}
