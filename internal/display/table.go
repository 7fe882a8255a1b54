package display

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"git.home.luguber.info/inful/gourcers/internal/preflight"
	"git.home.luguber.info/inful/gourcers/internal/selector"
)

// DecisionTable renders one row per repository with its verdict and the
// rule that decided it. Included rows paint green and excluded rows red
// when colored; the footer carries the included/total count.
func DecisionTable(decisions []selector.Decision, colored bool) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"REPO", "FORK", "INCLUDED", "DECIDED BY"})

	included := 0
	for _, d := range decisions {
		decidedBy := "default deny"
		if sel, ok := d.DecidedBy(); ok {
			decidedBy = sel.String()
		}
		if d.Included {
			included++
		}
		t.AppendRow(table.Row{d.Repo.FullName, yesNo(d.Repo.IsFork), yesNo(d.Included), decidedBy})
	}
	t.AppendFooter(table.Row{"", "", fmt.Sprintf("%d/%d", included, len(decisions)), ""})

	if colored {
		t.SetRowPainter(table.RowPainter(func(row table.Row) text.Colors {
			if row[2] == "yes" {
				return text.Colors{text.FgGreen}
			}
			return text.Colors{text.FgRed}
		}))
	}
	return t.Render()
}

// ToolTable renders the doctor's preflight probe results.
func ToolTable(tools []preflight.Tool, colored bool) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"TOOL", "FOUND", "VERSION", "PATH"})

	for _, tool := range tools {
		version := tool.Version
		if version == "" {
			version = "-"
		}
		path := tool.Path
		if path == "" {
			path = "-"
		}
		t.AppendRow(table.Row{tool.Name, yesNo(tool.Found), version, path})
	}

	if colored {
		t.SetRowPainter(table.RowPainter(func(row table.Row) text.Colors {
			if row[1] == "yes" {
				return text.Colors{text.FgGreen}
			}
			return text.Colors{text.FgRed}
		}))
	}
	return t.Render()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
