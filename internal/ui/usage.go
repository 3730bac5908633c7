package ui

import (
	"fmt"
	"io"

	"github.com/agentteams/launcher/internal/domain"
)

// WriteUsage prints the command list and examples.
func WriteUsage(w io.Writer, table *domain.CommandTable) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, styleBoldWhite.Render("Agent Teams Monitor CLI"))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: agent-teams [command] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, a := range table.Actions() {
		fmt.Fprintf(w, "  %-12s%s\n", a.Name, a.Description)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  agent-teams start")
	fmt.Fprintln(w, "  agent-teams server")
	fmt.Fprintln(w, "  agent-teams stop")
	fmt.Fprintln(w, "  agent-teams configure --server-port 3002 --client-port 3000")
	fmt.Fprintln(w)
}
