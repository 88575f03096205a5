package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"time"

	"github.com/h0rv/ghgantt/internal/domain"
	"github.com/muesli/reflow/truncate"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Chart geometry in pixels.
const (
	chartPadding   = 16
	labelWidth     = 280
	headerHeight   = 28
	rowHeight      = 22
	barInset       = 4
	maxDayWidth    = 18
	maxChartWidth  = 2400
	minLabelSpaceX = 48
)

var (
	backgroundColor = color.RGBA{R: 0x24, G: 0x24, B: 0x24, A: 0xff}
	gridColor       = color.RGBA{R: 0x3a, G: 0x3a, B: 0x3a, A: 0xff}
	textColor       = color.RGBA{R: 0xdd, G: 0xdd, B: 0xdd, A: 0xff}
	dimTextColor    = color.RGBA{R: 0x88, G: 0x88, B: 0x88, A: 0xff}
	openBarColor    = color.RGBA{R: 0x89, G: 0x57, B: 0xe5, A: 0xff}
	closedBarColor  = color.RGBA{R: 0x3f, G: 0xb9, B: 0x50, A: 0xff}
	todayColor      = color.RGBA{R: 0xf8, G: 0x51, B: 0x49, A: 0xff}
)

// WritePNG renders entries as a Gantt chart and encodes it as PNG.
// A vertical marker is drawn at today when it falls inside the chart range.
func WritePNG(w io.Writer, entries []domain.TimelineEntry, today domain.Date) error {
	if len(entries) == 0 {
		return ErrNoEntries
	}
	if err := png.Encode(w, RenderChart(entries, today)); err != nil {
		return fmt.Errorf("failed to encode png: %w", err)
	}
	return nil
}

// RenderChart draws entries, one row each, in the order given.
func RenderChart(entries []domain.TimelineEntry, today domain.Date) *image.RGBA {
	first, last := dateSpan(entries)
	days := first.DaysUntil(last) + 1
	dayWidth := maxDayWidth
	if days*dayWidth > maxChartWidth {
		dayWidth = max(1, maxChartWidth/days)
	}

	chartX := chartPadding + labelWidth
	width := chartX + days*dayWidth + chartPadding
	height := chartPadding + headerHeight + len(entries)*rowHeight + chartPadding

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	fill(img, img.Bounds(), backgroundColor)

	// Week grid with labels spaced so they never overlap
	top := chartPadding + headerHeight
	labelEvery := max(1, (minLabelSpaceX+7*dayWidth-1)/(7*dayWidth))
	week := 0
	for d := 0; d < days; d++ {
		date := first.AddDays(d)
		if date.Time().Weekday() != time.Monday {
			continue
		}
		x := chartX + d*dayWidth
		fill(img, image.Rect(x, top, x+1, height-chartPadding), gridColor)
		if week%labelEvery == 0 {
			drawText(img, date.String()[5:], x+2, chartPadding+headerHeight-10, dimTextColor)
		}
		week++
	}

	maxChars := uint((labelWidth - 8) / basicfont.Face7x13.Advance)
	for i, e := range entries {
		y := top + i*rowHeight

		label := truncate.StringWithTail(fmt.Sprintf("#%s %s", e.ID, e.Title), maxChars, "...")
		drawText(img, label, chartPadding, y+rowHeight-6, textColor)

		x0 := chartX + first.DaysUntil(e.Start)*dayWidth
		x1 := chartX + (first.DaysUntil(e.End)+1)*dayWidth
		if x1 <= x0 {
			x1 = x0 + dayWidth
		}
		fill(img, image.Rect(x0, y+barInset, x1, y+rowHeight-barInset), barColor(e.Style))
	}

	if !today.Before(first) && !last.Before(today) {
		x := chartX + first.DaysUntil(today)*dayWidth + dayWidth/2
		fill(img, image.Rect(x, top, x+2, height-chartPadding), todayColor)
	}

	return img
}

// dateSpan returns the earliest and latest date touched by any entry.
func dateSpan(entries []domain.TimelineEntry) (domain.Date, domain.Date) {
	first, last := entries[0].Start, entries[0].End
	for _, e := range entries {
		for _, d := range []domain.Date{e.Start, e.End} {
			if d.Before(first) {
				first = d
			}
			if last.Before(d) {
				last = d
			}
		}
	}
	return first, last
}

func barColor(style domain.IssueState) color.RGBA {
	if style == domain.IssueStateClosed {
		return closedBarColor
	}
	return openBarColor
}

func fill(img draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(img, r, &image.Uniform{C: c}, image.Point{}, draw.Src)
}

func drawText(img draw.Image, s string, x, baseline int, c color.Color) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, baseline),
	}
	d.DrawString(s)
}
