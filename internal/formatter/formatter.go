// package formatter renders catalog entries as CSV, Markdown, plain text and terminal tables
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/desertthunder/crate/internal/activity"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/shared"
)

// Formats accepted by [Render] and [WriteExport].
const (
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "txt"
	FormatTable    = "table"
)

var itemHeaders = []string{"ID", "Title", "Creator", "Format", "Year"}

// Sorted returns a copy of items ordered by creator, year, title and then id.
func Sorted(items []models.Item) []models.Item {
	out := append([]models.Item(nil), items...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Creator != b.Creator {
			return a.Creator < b.Creator
		}
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Title != b.Title {
			return a.Title < b.Title
		}
		return a.ID < b.ID
	})
	return out
}

func itemRow(item models.Item) []string {
	return []string{item.ID, item.Title, item.Creator, item.Format, strconv.Itoa(int(item.Year))}
}

// ItemsToCSV converts items to CSV with columns: ID, Title, Creator, Format, Year
func ItemsToCSV(items []models.Item) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(itemHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, item := range items {
		if err := writer.Write(itemRow(item)); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// escapeCell keeps pipes and newlines from breaking a Markdown table row.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

// ItemsToMarkdown renders items as a Markdown document with a single table.
func ItemsToMarkdown(title string, items []models.Item) []byte {
	var buf bytes.Buffer

	if title == "" {
		title = "Catalog"
	}
	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	buf.WriteString(fmt.Sprintf("**Entries**: %d\n\n", len(items)))

	if len(items) == 0 {
		return buf.Bytes()
	}

	buf.WriteString("| " + strings.Join(itemHeaders, " | ") + " |\n")
	buf.WriteString("|" + strings.Repeat(" --- |", len(itemHeaders)) + "\n")
	for _, item := range items {
		cells := itemRow(item)
		for i := range cells {
			cells[i] = escapeCell(cells[i])
		}
		buf.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}

	return buf.Bytes()
}

// ItemsToText renders one numbered line per item.
func ItemsToText(items []models.Item) []byte {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Entries: %d\n\n", len(items)))
	for i, item := range items {
		buf.WriteString(fmt.Sprintf("%d. %s [%s]\n", i+1, item, item.ID))
	}

	return buf.Bytes()
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
)

func newTable(headers []string, rows [][]string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)
}

// ItemsToTable renders items as a bordered terminal table.
func ItemsToTable(items []models.Item) string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, itemRow(item))
	}
	return newTable(itemHeaders, rows).String()
}

// ActivityToTable renders recorded requests, newest first, as a terminal table.
func ActivityToTable(entries []activity.Entry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.At.Local().Format(time.DateTime), e.Method, e.Route, strconv.Itoa(e.Status)})
	}
	return newTable([]string{"When", "Method", "Route", "Status"}, rows).String()
}

// Render writes items to w in format, ordered by [Sorted].
func Render(w io.Writer, format string, items []models.Item) error {
	var data []byte
	var err error

	items = Sorted(items)

	switch strings.ToLower(format) {
	case FormatCSV:
		data, err = ItemsToCSV(items)
	case FormatMarkdown, "md":
		data = ItemsToMarkdown("Catalog", items)
	case FormatText, "text":
		data = ItemsToText(items)
	case FormatTable:
		data = []byte(ItemsToTable(items) + "\n")
	default:
		return fmt.Errorf("%w: unknown format %q (want csv, markdown, txt or table)", shared.ErrInvalidFlag, format)
	}
	if err != nil {
		return err
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// WriteExport renders items in format and writes them to path.
func WriteExport(items []models.Item, format, path string) error {
	var buf bytes.Buffer
	if err := Render(&buf, format, items); err != nil {
		return err
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}
