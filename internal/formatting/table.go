package formatting

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// createTable creates a new table with standard styling
func (p *Printer) createTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(p.options.Out)
	t.SetStyle(table.StyleRounded)
	return t
}

func (p *Printer) renderTable(tbl Table) error {
	if len(tbl.Rows) == 0 && tbl.Empty != "" {
		_, err := fmt.Fprintln(p.options.Out, p.colorize(text.FgYellow, tbl.Empty))
		return err
	}

	t := p.createTable()
	if tbl.Title != "" {
		t.SetTitle(tbl.Title)
	}
	header := make(table.Row, len(tbl.Header))
	for i, h := range tbl.Header {
		header[i] = p.colorize(text.FgHiCyan, h)
	}
	t.AppendHeader(header)
	for _, row := range tbl.Rows {
		t.AppendRow(table.Row(row))
	}
	t.Render()
	return nil
}

func (p *Printer) colorize(c text.Color, s string) string {
	if !p.options.Color {
		return s
	}
	return c.Sprint(s)
}

// State renders a lifecycle state, colored in table mode.
func (p *Printer) State(state string) string {
	switch state {
	case "running":
		return p.colorize(text.FgGreen, state)
	case "failed":
		return p.colorize(text.FgRed, state)
	case "starting", "stopping":
		return p.colorize(text.FgYellow, state)
	default:
		return state
	}
}

// Status renders a bulk operation outcome, colored in table mode.
func (p *Printer) Status(status string) string {
	switch status {
	case "completed":
		return p.colorize(text.FgGreen, status)
	case "failed":
		return p.colorize(text.FgRed, status)
	default:
		return p.colorize(text.FgYellow, status)
	}
}
