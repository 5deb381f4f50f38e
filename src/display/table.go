package display

import (
	"fmt"
	"io"
	"strings"

	apperrors "deutsch/src/errors"

	"github.com/olekukonko/tablewriter"
)

// Table output formats
const (
	FormatGrid     = "grid"
	FormatMarkdown = "markdown"
)

// Formats lists the accepted table formats.
var Formats = []string{FormatGrid, FormatMarkdown}

// RenderTable writes a titled table in grid or markdown format.
func RenderTable(w io.Writer, title string, headers []string, rows [][]string, format string) error {
	switch format {
	case FormatGrid, FormatMarkdown:
	default:
		return &apperrors.ValidationError{
			Field:   "format",
			Value:   format,
			Message: "expected one of " + strings.Join(Formats, ", "),
		}
	}

	if title != "" {
		if format == FormatMarkdown {
			fmt.Fprintf(w, "## %s\n\n", title)
		} else {
			fmt.Fprintf(w, "%s\n", title)
		}
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader(headers)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	if format == FormatMarkdown {
		table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
		table.SetCenterSeparator("|")
	} else {
		table.SetRowLine(true)
	}

	table.AppendBulk(rows)
	table.Render()
	return nil
}
