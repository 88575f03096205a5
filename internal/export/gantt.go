package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/h0rv/ghgantt/internal/domain"
)

// GanttTask is the frappe-gantt task shape.
type GanttTask struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Start        string `json:"start"`
	End          string `json:"end"`
	Progress     int    `json:"progress"`
	Dependencies string `json:"dependencies"`
	CustomClass  string `json:"custom_class,omitempty"`
}

// UnstartedItem is an unstarted issue as listed next to the chart.
type UnstartedItem struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	URL    string `json:"url"`
}

// Document is the JSON export payload.
type Document struct {
	Repo        string          `json:"repo"`
	GeneratedAt time.Time       `json:"generated_at"`
	Tasks       []GanttTask     `json:"tasks"`
	Unstarted   []UnstartedItem `json:"unstarted"`
}

// CustomClass returns the chart bar class for an entry's style.
func CustomClass(style domain.IssueState) string {
	return "bar-" + string(style)
}

// ToGanttTasks converts timeline entries into frappe-gantt tasks, keeping order.
func ToGanttTasks(entries []domain.TimelineEntry) []GanttTask {
	tasks := make([]GanttTask, 0, len(entries))
	for _, e := range entries {
		tasks = append(tasks, GanttTask{
			ID:           e.ID,
			Name:         e.Title,
			Start:        e.Start.String(),
			End:          e.End.String(),
			Progress:     e.Progress,
			Dependencies: strings.Join(e.Dependencies, ","),
			CustomClass:  CustomClass(e.Style),
		})
	}
	return tasks
}

// ToUnstartedItems converts unstarted issues, keeping order.
func ToUnstartedItems(issues []domain.Issue) []UnstartedItem {
	items := make([]UnstartedItem, 0, len(issues))
	for _, i := range issues {
		items = append(items, UnstartedItem{Number: i.Number, Title: i.Title, URL: i.URL})
	}
	return items
}

// NewDocument builds the JSON export payload for a result.
func NewDocument(repo domain.Repo, generatedAt time.Time, result domain.Result) Document {
	return Document{
		Repo:        repo.String(),
		GeneratedAt: generatedAt.UTC(),
		Tasks:       ToGanttTasks(result.Timeline),
		Unstarted:   ToUnstartedItems(result.Unstarted),
	}
}

// WriteJSON writes doc as indented JSON.
func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}
