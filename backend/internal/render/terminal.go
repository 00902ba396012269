package render

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Table is a titled grid of text cells
type Table struct {
	Title   string     `json:"title"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

var (
	colorAccent = lipgloss.Color("#20B9B4")
	colorBorder = lipgloss.Color("#16858E")
	colorMuted  = lipgloss.Color("#6C7A80")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	headingStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
)

// Terminal writes styled report output. Styling is dropped when the writer
// is not a color terminal.
type Terminal struct {
	w io.Writer
}

// NewTerminal returns a Terminal writing to w
func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

// Title writes the report title
func (t *Terminal) Title(text string) {
	fmt.Fprintln(t.w, titleStyle.Render(text))
}

// Heading writes a section heading preceded by a blank line
func (t *Terminal) Heading(text string) {
	fmt.Fprintln(t.w)
	fmt.Fprintln(t.w, headingStyle.Render(text))
}

// Line writes one plain line
func (t *Terminal) Line(text string) {
	fmt.Fprintln(t.w, text)
}

// Note writes a muted line
func (t *Terminal) Note(text string) {
	fmt.Fprintln(t.w, mutedStyle.Render(text))
}

// Table writes a bordered table. An empty table prints "(none)".
func (t *Terminal) Table(tbl Table) {
	if tbl.Title != "" {
		t.Heading(tbl.Title)
	}
	if len(tbl.Rows) == 0 {
		t.Note("(none)")
		return
	}

	out := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorBorder)).
		Headers(tbl.Headers...).
		Rows(tbl.Rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	fmt.Fprintln(t.w, out.Render())
}
