package main

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/mirage/internal/ui"
)

var (
	// Unindented "Title:" lines: command groups, "Flags:", "Usage:" ...
	reHeader = regexp.MustCompile(`(?m)^([A-Z][^\n]*:)[ \t]*$`)

	// "  name   short" rows of a command listing.
	reCommandRow = regexp.MustCompile(`(?m)^(  )(\S+)(  )`)

	// Positional placeholders such as <ticket> or <file|->.
	rePlaceholder = regexp.MustCompile(`<[a-z][a-z|\-]*>`)

	// Environment variables named in flag usage, e.g. MIRAGE_BASE_URL.
	reEnvVar = regexp.MustCompile(`\bMIRAGE_[A-Z_]+\b`)

	// Flag value types and quoted defaults.
	reFlagType = regexp.MustCompile(`(--?\S+\s+)(stringArray|string|int|duration)`)
	reDefault  = regexp.MustCompile(`\(default "[^"]*"\)`)
)

// headerStyle picks the colour of a section title. The wallet group shares
// the confirmed-ticket colour so it reads as the main entry point.
func headerStyle(groups []*cobra.Group) func(string) string {
	wallet := ""
	for _, g := range groups {
		if g.ID == "wallet" {
			wallet = g.Title
		}
	}
	return func(title string) string {
		if wallet != "" && title == wallet {
			return ui.RenderStatus(1, title)
		}
		return ui.RenderAccent(title)
	}
}

// colorizedHelpFunc renders cobra's usage text, styled when color is on.
func colorizedHelpFunc() func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, _ []string) {
		if !ui.ShouldUseColor() {
			_ = cmd.Usage()
			return
		}

		out := cmd.OutOrStdout()
		var buf bytes.Buffer
		cmd.SetOut(&buf)
		_ = cmd.Usage()
		cmd.SetOut(out)

		fmt.Fprint(out, styleHelp(buf.String(), cmd.Root().Groups()))
	}
}

// colorizeHelpOutput styles help text for the root command's groups.
func colorizeHelpOutput(s string) string {
	return styleHelp(s, rootCmd.Groups())
}

func styleHelp(s string, groups []*cobra.Group) string {
	header := headerStyle(groups)
	s = reHeader.ReplaceAllStringFunc(s, func(m string) string {
		return header(strings.TrimSpace(m))
	})
	s = reCommandRow.ReplaceAllString(s, "$1"+ui.RenderCommand("$2")+"$3")
	s = rePlaceholder.ReplaceAllStringFunc(s, ui.RenderAccent)
	s = reEnvVar.ReplaceAllStringFunc(s, ui.RenderMuted)
	s = reFlagType.ReplaceAllStringFunc(s, func(m string) string {
		parts := reFlagType.FindStringSubmatch(m)
		return parts[1] + ui.RenderMuted(parts[2])
	})
	return reDefault.ReplaceAllStringFunc(s, ui.RenderMuted)
}
