// Package export writes timelines as a CSV table, frappe-gantt JSON, or a PNG chart.
package export

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/h0rv/ghgantt/internal/domain"
)

// ErrNoEntries indicates an export was requested for an empty timeline.
var ErrNoEntries = errors.New("no timeline entries to export")

var csvHeader = []string{"ID", "Title", "Start Date", "End Date", "Status"}

// StatusLabel returns "Closed" for completed entries and "Open" otherwise.
func StatusLabel(e domain.TimelineEntry) string {
	if e.Progress == domain.ProgressClosed {
		return "Closed"
	}
	return "Open"
}

// WriteCSV writes entries as a CRLF-delimited table with a header row.
func WriteCSV(w io.Writer, entries []domain.TimelineEntry) error {
	if len(entries) == 0 {
		return ErrNoEntries
	}

	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, e := range entries {
		row := []string{e.ID, e.Title, e.Start.String(), e.End.String(), StatusLabel(e)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row %s: %w", e.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
