package export

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/h0rv/ghgantt/internal/domain"
)

// Format is an export output format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatPNG  Format = "png"
)

// Formats lists the supported formats.
var Formats = []Format{FormatCSV, FormatJSON, FormatPNG}

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatCSV, FormatJSON, FormatPNG:
		return f, nil
	}
	return "", fmt.Errorf("unknown export format %q (want csv, json or png)", s)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatPNG:
		return "image/png"
	default:
		return "application/json; charset=utf-8"
	}
}

// Input is everything an export needs.
type Input struct {
	Repo        domain.Repo
	GeneratedAt time.Time
	Today       domain.Date
	Result      domain.Result
}

// Write renders in as f. CSV and PNG fail with ErrNoEntries on an empty
// timeline; JSON always succeeds so unstarted issues are still reported.
func Write(w io.Writer, f Format, in Input) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, in.Result.Timeline)
	case FormatPNG:
		return WritePNG(w, in.Result.Timeline, in.Today)
	case FormatJSON:
		return WriteJSON(w, NewDocument(in.Repo, in.GeneratedAt, in.Result))
	}
	return fmt.Errorf("unknown export format %q", f)
}

// Render is Write into memory.
func Render(f Format, in Input) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, f, in); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile renders in as f and writes it to path.
// Nothing is written when rendering fails.
func WriteFile(path string, f Format, in Input) error {
	data, err := Render(f, in)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// FileName returns the default export file name for repo, e.g. "octo-hello-timeline.csv".
func FileName(repo domain.Repo, f Format) string {
	return fmt.Sprintf("%s-%s-timeline.%s", repo.Owner, repo.Name, f)
}
