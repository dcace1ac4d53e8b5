package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/alfredjeanlab/mirage/internal/model"
	"github.com/alfredjeanlab/mirage/internal/ui"
)

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func printSession(out io.Writer, s model.Session) {
	fmt.Fprintf(out, "Session:  %s\n", s.ID)
	if s.NeedsLogin {
		fmt.Fprintf(out, "Login:    %s\n", ui.RenderAccent(s.LoginURI))
	} else {
		fmt.Fprintf(out, "Login:    %s\n", ui.RenderMuted("not required"))
	}
}

// printStatus prints one poll result, or a JSON line in --json mode.
func printStatus(out io.Writer, ticket model.Ticket, s model.TicketStatus) {
	if jsonOutput {
		data, _ := json.Marshal(struct {
			Ticket model.Ticket `json:"ticket"`
			model.TicketStatus
		}{ticket, s})
		fmt.Fprintln(out, string(data))
		return
	}
	fmt.Fprintf(out, "%s  %s\n", ui.RenderMuted(fmt.Sprintf("[%d]", s.Code)), ui.RenderStatus(s.Code, s.Message()))
}
