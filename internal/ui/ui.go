// Package ui renders terminal output for the snipsync commands.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/steveyegge/snipsync/internal/sync"
)

var (
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)

func init() {
	if termenv.EnvNoColor() || !term.IsTerminal(int(os.Stdout.Fd())) {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// RenderPass renders s as a success marker.
func RenderPass(s string) string { return passStyle.Render(s) }

// RenderWarn renders s as a warning marker.
func RenderWarn(s string) string { return warnStyle.Render(s) }

// RenderFail renders s as a failure marker.
func RenderFail(s string) string { return failStyle.Render(s) }

// RenderAccent renders s highlighted.
func RenderAccent(s string) string { return accentStyle.Render(s) }

// RenderMuted renders s dimmed.
func RenderMuted(s string) string { return mutedStyle.Render(s) }

// RenderSyncLog renders the two identifier lists of a run with their write
// counts.
func RenderSyncLog(l sync.SyncLog, stats sync.Stats) string {
	var b strings.Builder

	section := func(title string, names []string, inserted, updated int) {
		fmt.Fprintf(&b, "%s %s\n", headerStyle.Render(title),
			RenderMuted(fmt.Sprintf("(%d synced: %d new, %d updated)", len(names), inserted, updated)))
		if len(names) == 0 {
			fmt.Fprintf(&b, "  %s\n", RenderMuted("none"))
			return
		}
		for _, name := range names {
			if name == "" {
				name = RenderWarn(`""`) + RenderMuted(" (empty identifier)")
			}
			fmt.Fprintf(&b, "  %s %s\n", RenderPass("✓"), name)
		}
	}

	section("Global variables", l.Globals, stats.GlobalsInserted, stats.GlobalsUpdated)
	b.WriteString("\n")
	section("Snippets", l.Snippets, stats.SnippetsInserted, stats.SnippetsUpdated)

	return b.String()
}

// PrintSyncLog writes RenderSyncLog to w.
func PrintSyncLog(w io.Writer, l sync.SyncLog, stats sync.Stats) {
	fmt.Fprint(w, RenderSyncLog(l, stats))
}
