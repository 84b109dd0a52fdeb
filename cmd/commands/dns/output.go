package dns

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"nathanbeddoewebdev/transip-dns/internal/dns/domain"
	"nathanbeddoewebdev/transip-dns/internal/tui/styles"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/ansi"
	"golang.org/x/term"
)

// maxContentWidth bounds the content column in terminal tables; DKIM and
// other TXT records can run to hundreds of characters.
const maxContentWidth = 64

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// writeTable renders rows under headers: a styled table on a terminal,
// tab-aligned columns otherwise. Nothing is written for zero rows.
func writeTable(w io.Writer, headers []string, rows [][]string) {
	if len(rows) == 0 {
		return
	}

	if !isTerminal(w) {
		tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
		writeTabRow(tw, headers)
		for _, row := range rows {
			writeTabRow(tw, row)
		}
		tw.Flush()
		return
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(styles.TableBorder).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styles.TableHeader
			}
			return styles.TableCell
		})
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = ansi.Truncate(c, maxContentWidth, "…")
		}
		t.Row(cells...)
	}
	fmt.Fprintln(w, t.Render())
}

func writeTabRow(w io.Writer, cells []string) {
	for i, c := range cells {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, c)
	}
	fmt.Fprintln(w)
}

// printRecords prints records as a table.
func printRecords(w io.Writer, records []domain.Record) {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{r.Domain, r.Name, strconv.Itoa(r.Expire), string(r.Type), r.Content})
	}
	writeTable(w, []string{"DOMAIN", "NAME", "EXPIRE", "TYPE", "CONTENT"}, rows)
}

// printChanges prints the old and new content of each change.
func printChanges(w io.Writer, changes []domain.Change) {
	rows := make([][]string, 0, len(changes))
	for _, c := range changes {
		rows = append(rows, []string{c.Record.Domain, c.Record.Name, string(c.Record.Type), c.OldContent, c.NewContent})
	}
	writeTable(w, []string{"DOMAIN", "NAME", "TYPE", "OLD", "NEW"}, rows)
}

// printFailures prints each failed change with the reason it failed.
func printFailures(w io.Writer, failures []domain.ChangeFailure) {
	rows := make([][]string, 0, len(failures))
	for _, f := range failures {
		rows = append(rows, []string{f.Change.Record.Domain, f.Change.Record.Name, string(f.Change.Record.Type), f.Change.NewContent, f.Err.Error()})
	}
	writeTable(w, []string{"DOMAIN", "NAME", "TYPE", "NEW", "ERROR"}, rows)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
