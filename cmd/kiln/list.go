package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/specialistvlad/kiln/internal/app"
	"github.com/specialistvlad/kiln/internal/backend"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("250"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	offStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("160"))
)

var columns = []struct {
	title string
	width int
}{
	{"TYPE", 10},
	{"NAME", 18},
	{"VERSION", 9},
	{"STATE", 10},
	{"AUTHOR", 16},
	{"MODULE", 0},
}

// printBackends writes the backend catalog of a and the backend selected
// for each capability.
func printBackends(w io.Writer, a *app.App) {
	entries := a.Registry().Catalog().Entries()

	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Backends of %s", a.Identity().Name)))
	if len(entries) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No backend modules found in "+a.PluginDir()))
	} else {
		cells := make([]string, len(columns))
		for i, c := range columns {
			cells[i] = cell(headerStyle, c.width, c.title)
		}
		fmt.Fprintln(w, strings.TrimRight(lipgloss.JoinHorizontal(lipgloss.Top, cells...), " "))

		for _, d := range entries {
			row := []string{
				cell(lipgloss.NewStyle(), columns[0].width, d.Type.String()),
				cell(lipgloss.NewStyle(), columns[1].width, d.Name),
				cell(lipgloss.NewStyle(), columns[2].width, d.Version.String()),
				cell(stateStyle(d.State), columns[3].width, d.State.String()),
				cell(lipgloss.NewStyle(), columns[4].width, d.Author),
				cell(dimStyle, columns[5].width, filepath.Base(d.ModulePath)),
			}
			fmt.Fprintln(w, strings.TrimRight(lipgloss.JoinHorizontal(lipgloss.Top, row...), " "))
		}
	}

	fmt.Fprintln(w)
	for _, t := range backend.Types() {
		d := a.Resolver().Resolve(a.Context(), t)
		fmt.Fprintf(w, "%s %s\n", headerStyle.Render(fmt.Sprintf("%-10s", t.String())), d.Name)
	}
}

func cell(style lipgloss.Style, width int, text string) string {
	if width > 0 {
		style = style.Width(width)
	}
	return style.Render(text)
}

func stateStyle(s backend.State) lipgloss.Style {
	switch s {
	case backend.Active:
		return activeStyle
	case backend.Disabled:
		return offStyle
	default:
		return lipgloss.NewStyle()
	}
}
