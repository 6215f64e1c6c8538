// Package formatting renders command output as tables, JSON or YAML.
package formatting

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// OutputFormat represents the desired output format
type OutputFormat string

const (
	FormatTable OutputFormat = "table" // Rich table output
	FormatJSON  OutputFormat = "json"  // JSON output
	FormatYAML  OutputFormat = "yaml"  // YAML output
)

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(value string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(value)) {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML:
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (expected table, json or yaml)", value)
	}
}

// Options configures the printer behavior
type Options struct {
	Format OutputFormat
	// Out defaults to os.Stdout.
	Out io.Writer
	// Color enables colored table cells.
	Color bool
}

// Table is the tabular rendering of a value.
type Table struct {
	Title  string
	Header []string
	Rows   [][]interface{}
	// Empty is printed instead of an empty table.
	Empty string
}

// Printer writes values in the configured format.
type Printer struct {
	options Options
}

// NewPrinter creates a new printer
func NewPrinter(options Options) *Printer {
	if options.Out == nil {
		options.Out = os.Stdout
	}
	if options.Format == "" {
		options.Format = FormatTable
	}
	return &Printer{options: options}
}

// Options returns the printer options.
func (p *Printer) Options() Options {
	return p.options
}

// Print writes data as JSON or YAML, or tbl in table mode.
func (p *Printer) Print(data interface{}, tbl Table) error {
	switch p.options.Format {
	case FormatJSON:
		_, err := fmt.Fprintln(p.options.Out, PrettyJSON(data))
		return err
	case FormatYAML:
		out, err := PrettyYAML(data)
		if err != nil {
			return err
		}
		_, err = io.WriteString(p.options.Out, out)
		return err
	default:
		return p.renderTable(tbl)
	}
}
