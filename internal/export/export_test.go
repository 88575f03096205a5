package export

import (
	"bytes"
	"encoding/json"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/h0rv/ghgantt/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(t *testing.T, s string) domain.Date {
	t.Helper()
	d, err := domain.ParseDate(s)
	require.NoError(t, err)
	return d
}

func sampleEntries(t *testing.T) []domain.TimelineEntry {
	return []domain.TimelineEntry{
		{
			ID: "42", Title: "Fix login", URL: "https://github.com/o/r/issues/42",
			Start: date(t, "2024-01-03"), End: date(t, "2024-01-10"),
			Progress: domain.ProgressClosed, Style: domain.IssueStateClosed, Dependencies: []string{},
		},
		{
			ID: "7", Title: `Quote "this", please`, URL: "https://github.com/o/r/issues/7",
			Start: date(t, "2024-01-05"), End: date(t, "2024-02-01"),
			Progress: domain.ProgressOpen, Style: domain.IssueStateOpen, Dependencies: []string{},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleEntries(t)))

	want := "ID,Title,Start Date,End Date,Status\r\n" +
		"42,Fix login,2024-01-03,2024-01-10,Closed\r\n" +
		"7,\"Quote \"\"this\"\", please\",2024-01-05,2024-02-01,Open\r\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, WriteCSV(&buf, nil), ErrNoEntries)
	assert.Zero(t, buf.Len())
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "Closed", StatusLabel(domain.TimelineEntry{Progress: domain.ProgressClosed}))
	assert.Equal(t, "Open", StatusLabel(domain.TimelineEntry{Progress: domain.ProgressOpen}))
}

func TestNewDocument(t *testing.T) {
	entries := sampleEntries(t)
	generated := time.Date(2024, 2, 1, 12, 0, 0, 0, time.FixedZone("X", 3600))
	doc := NewDocument(domain.Repo{Owner: "o", Name: "r"}, generated, domain.Result{
		Timeline:  entries,
		Unstarted: []domain.Issue{{Number: 9, Title: "Later", URL: "u9"}},
	})

	assert.Equal(t, "o/r", doc.Repo)
	assert.Equal(t, time.UTC, doc.GeneratedAt.Location())
	require.Len(t, doc.Tasks, 2)
	assert.Equal(t, GanttTask{
		ID: "42", Name: "Fix login", Start: "2024-01-03", End: "2024-01-10",
		Progress: 100, Dependencies: "", CustomClass: "bar-closed",
	}, doc.Tasks[0])
	assert.Equal(t, "bar-open", doc.Tasks[1].CustomClass)
	assert.Equal(t, []UnstartedItem{{Number: 9, Title: "Later", URL: "u9"}}, doc.Unstarted)
}

func TestWriteJSON(t *testing.T) {
	doc := NewDocument(domain.Repo{Owner: "o", Name: "r"}, time.Unix(0, 0), domain.Result{})

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, doc))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "o/r", decoded["repo"])
	assert.Equal(t, []any{}, decoded["tasks"], "empty timeline encodes as [] not null")
	assert.Equal(t, []any{}, decoded["unstarted"])
}

func TestWritePNG(t *testing.T) {
	entries := sampleEntries(t)

	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, entries, date(t, "2024-01-20")))

	img, err := png.Decode(&buf)
	require.NoError(t, err)

	days := 30 // 2024-01-03 through 2024-02-01
	b := img.Bounds()
	assert.Equal(t, chartPadding+labelWidth+days*maxDayWidth+chartPadding, b.Dx())
	assert.Equal(t, chartPadding+headerHeight+len(entries)*rowHeight+chartPadding, b.Dy())

	r, g, bl, _ := img.At(1, 1).RGBA()
	assert.Equal(t, [3]uint32{0x2424, 0x2424, 0x2424}, [3]uint32{r, g, bl}, "background")
}

func TestWritePNG_Empty(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, WritePNG(&buf, nil, domain.Date{}), ErrNoEntries)
}

func TestRenderChart_WideRangeIsCapped(t *testing.T) {
	entries := []domain.TimelineEntry{{
		ID: "1", Title: "Long", Start: date(t, "2020-01-01"), End: date(t, "2024-01-01"),
		Style: domain.IssueStateOpen,
	}}

	img := RenderChart(entries, date(t, "2030-01-01"))

	assert.LessOrEqual(t, img.Bounds().Dx(), chartPadding+labelWidth+maxChartWidth+chartPadding)
}

func TestRenderChart_EndBeforeStartStillDrawsBar(t *testing.T) {
	entries := []domain.TimelineEntry{{
		ID: "1", Title: "Odd", Start: date(t, "2024-01-10"), End: date(t, "2024-01-05"),
		Style: domain.IssueStateClosed,
	}}

	img := RenderChart(entries, date(t, "2024-01-01"))

	first := date(t, "2024-01-05")
	x := chartPadding + labelWidth + first.DaysUntil(date(t, "2024-01-10"))*maxDayWidth + 1
	y := chartPadding + headerHeight + rowHeight/2
	assert.Equal(t, closedBarColor, img.RGBAAt(x, y))
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"csv", "CSV", " json ", "png"} {
		_, err := ParseFormat(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseFormat("svg")
	assert.Error(t, err)
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	repo := domain.Repo{Owner: "octo", Name: "hello"}
	in := Input{Repo: repo, Today: date(t, "2024-01-20"), Result: domain.Result{Timeline: sampleEntries(t)}}

	for _, f := range Formats {
		t.Run(string(f), func(t *testing.T) {
			path := filepath.Join(dir, FileName(repo, f))
			require.NoError(t, WriteFile(path, f, in))

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.NotEmpty(t, data)
		})
	}
}

func TestWriteFile_EmptyTimelineWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	err := WriteFile(path, FormatCSV, Input{})

	assert.ErrorIs(t, err, ErrNoEntries)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "octo-hello-timeline.png", FileName(domain.Repo{Owner: "octo", Name: "hello"}, FormatPNG))
}
