package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/h0rv/ghgantt/internal/domain"
	"github.com/h0rv/ghgantt/internal/export"
	"github.com/h0rv/ghgantt/internal/gh"
	"github.com/h0rv/ghgantt/internal/store"
	"github.com/muesli/reflow/truncate"
	"github.com/pkg/browser"
)

// Layout constants
const (
	minLabelWidth = 20
	maxLabelWidth = 48
	minChartWidth = 10
	headerLines   = 1 // repository + viewer
	paneLines     = 2 // pane title + axis
	footerLines   = 2 // detail + status bar
)

type pane int

const (
	paneTimeline pane = iota
	paneUnstarted
)

// GanttModel renders the timeline as horizontal bars next to a list of
// unstarted issues.
type GanttModel struct {
	// Dependencies
	store     *store.Store
	exportDir string
	now       func() time.Time

	// UI components
	keymap      KeyMap
	help        HelpModel
	spinner     spinner.Model
	filterInput textinput.Model

	// Visible rows, refreshed from the store on every filter change
	entries   []domain.TimelineEntry
	unstarted []domain.Issue

	focus    pane
	selected [2]int // pane -> selected row
	offset   [2]int // pane -> first visible row

	info *gh.RepoInfo

	// View state
	width      int
	height     int
	showHelp   bool
	filterMode bool
	refreshing bool
	toast      string
}

// NewGanttModel creates a timeline view over s. Exports are written to exportDir.
func NewGanttModel(s *store.Store, exportDir string, now func() time.Time) GanttModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ti := textinput.New()
	ti.Placeholder = "Filter..."
	ti.Prompt = "/ "
	ti.SetValue(s.TextFilter())

	if now == nil {
		now = time.Now
	}

	m := GanttModel{
		store:       s,
		exportDir:   exportDir,
		now:         now,
		keymap:      DefaultKeyMap(),
		help:        NewHelpModel(DefaultKeyMap()),
		spinner:     sp,
		filterInput: ti,
	}
	m.reload()
	return m
}

// Init starts the spinner and asks for the terminal size.
func (m GanttModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tea.WindowSize())
}

// Update handles messages
func (m GanttModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.adjustScroll()
		return m, nil

	case reportLoadedMsg:
		m.refreshing = false
		m.toast = ""
		m.reload()
		return m, nil

	case reportErrorMsg:
		m.refreshing = false
		m.toast = fmt.Sprintf("Refresh failed: %v", msg.err)
		return m, nil

	case repoInfoMsg:
		info := msg.info
		m.info = &info
		return m, nil

	case exportDoneMsg:
		if msg.err != nil {
			m.toast = fmt.Sprintf("Export failed: %v", msg.err)
		} else {
			m.toast = "Exported " + msg.path
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	return m, nil
}

// handleKeyPress processes keyboard input
func (m GanttModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global quit
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.showHelp {
		if key.Matches(msg, m.keymap.Help, m.keymap.Quit, m.keymap.CancelFilter) {
			m.showHelp = false
		}
		return m, nil
	}

	if m.filterMode {
		switch {
		case key.Matches(msg, m.keymap.ApplyFilter):
			m.filterMode = false
			m.filterInput.Blur()
			m.store.SetTextFilter(m.filterInput.Value())
			m.selected = [2]int{}
			m.offset = [2]int{}
			m.reload()
			return m, nil
		case key.Matches(msg, m.keymap.CancelFilter):
			m.filterMode = false
			m.filterInput.Blur()
			m.filterInput.SetValue(m.store.TextFilter())
			return m, nil
		default:
			var cmd tea.Cmd
			m.filterInput, cmd = m.filterInput.Update(msg)
			return m, cmd
		}
	}

	m.toast = ""

	switch {
	case key.Matches(msg, m.keymap.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keymap.Help):
		m.showHelp = true
	case key.Matches(msg, m.keymap.Filter):
		m.filterMode = true
		return m, m.filterInput.Focus()
	case key.Matches(msg, m.keymap.CycleState):
		m.store.SetStateFilter(m.store.StateFilter().Next())
		m.reload()
	case key.Matches(msg, m.keymap.SwitchPane):
		m.focus = 1 - m.focus
	case key.Matches(msg, m.keymap.Up):
		m.moveSelection(-1)
	case key.Matches(msg, m.keymap.Down):
		m.moveSelection(1)
	case key.Matches(msg, m.keymap.Top):
		m.jumpTo(0)
	case key.Matches(msg, m.keymap.Bottom):
		m.jumpTo(m.rowCount() - 1)
	case key.Matches(msg, m.keymap.Open):
		if url := m.selectedURL(); url != "" {
			_ = browser.OpenURL(url)
		}
	case key.Matches(msg, m.keymap.ExportCSV):
		return m, m.exportCmd(export.FormatCSV)
	case key.Matches(msg, m.keymap.ExportPNG):
		return m, m.exportCmd(export.FormatPNG)
	case key.Matches(msg, m.keymap.Refresh):
		if !m.refreshing {
			m.refreshing = true
			return m, func() tea.Msg { return refreshRequestedMsg{} }
		}
	}

	return m, nil
}

// View renders the timeline screen.
func (m GanttModel) View() string {
	if m.width == 0 {
		return m.spinner.View() + " Loading..."
	}

	sections := []string{m.renderHeader(m.width)}
	if m.filterMode {
		sections = append(sections, m.filterInput.View())
	}
	if m.showHelp {
		sections = append(sections, m.help.View(m.width))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	if m.focus == paneTimeline {
		sections = append(sections, m.renderTimeline(m.width))
	} else {
		sections = append(sections, m.renderUnstarted(m.width))
	}
	sections = append(sections, m.renderDetail(m.width), m.renderStatusBar(m.width))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderHeader renders the repository title on the left and the viewer on the right
func (m GanttModel) renderHeader(width int) string {
	title := ""
	if r, err := m.store.Report(); err == nil {
		title = r.Repo.String()
	}
	if m.info != nil {
		title = m.info.NameWithOwner
		if m.info.Description != "" {
			title += " - " + m.info.Description
		}
	}

	right := ""
	if login := m.store.ViewerLogin(); login != "" {
		right = "@" + login
	}

	title = truncate.StringWithTail(title, uint(max(0, width-lipgloss.Width(right)-2)), "…")
	return spread(headerTitleStyle.Render(title), dimStyle.Render(right), width)
}

// renderTimeline renders one bar per visible entry, scaled to fit width
func (m GanttModel) renderTimeline(width int) string {
	rows := m.visibleRows()
	title := paneTitleStyle.Render(fmt.Sprintf("Timeline (%d)", len(m.entries))) +
		dimStyle.Render(fmt.Sprintf("  tab: unstarted (%d)", len(m.unstarted)))

	if len(m.entries) == 0 {
		msg := "No issues with an inferable start."
		if r, err := m.store.Report(); err == nil && r.Empty() {
			msg = "No issues found in " + r.Repo.String() + "."
		}
		return lipgloss.NewStyle().Height(rows + paneLines).Render(title + "\n\n" + dimStyle.Render(msg))
	}

	labelWidth := min(max(width/3, minLabelWidth), maxLabelWidth)
	chartWidth := max(width-labelWidth-3, minChartWidth)
	scale := newTimeScale(m.entries, m.today(), chartWidth)

	lines := []string{title, strings.Repeat(" ", labelWidth+3) + scale.axis()}

	end := min(m.offset[paneTimeline]+rows, len(m.entries))
	for i := m.offset[paneTimeline]; i < end; i++ {
		e := m.entries[i]
		selected := i == m.selected[paneTimeline]
		label := padRight(truncate.StringWithTail(fmt.Sprintf("#%s %s", e.ID, e.Title), uint(labelWidth), "…"), labelWidth)
		lines = append(lines, cursor(selected)+itemStyle(selected).Render(label)+" "+scale.bar(e))
	}

	return lipgloss.NewStyle().Height(rows + paneLines).Render(strings.Join(lines, "\n"))
}

// renderUnstarted lists open issues with no inferable start
func (m GanttModel) renderUnstarted(width int) string {
	rows := m.visibleRows()
	title := paneTitleStyle.Render(fmt.Sprintf("Unstarted (%d)", len(m.unstarted))) +
		dimStyle.Render(fmt.Sprintf("  tab: timeline (%d)", len(m.entries)))
	lines := []string{title, ""}

	if len(m.unstarted) == 0 {
		lines = append(lines, dimStyle.Render("Every open issue has been started."))
	}

	end := min(m.offset[paneUnstarted]+rows, len(m.unstarted))
	for i := m.offset[paneUnstarted]; i < end; i++ {
		issue := m.unstarted[i]
		selected := i == m.selected[paneUnstarted]
		label := truncate.StringWithTail(fmt.Sprintf("#%d %s", issue.Number, issue.Title), uint(max(width-2, 1)), "…")
		lines = append(lines, cursor(selected)+itemStyle(selected).Render(label))
	}

	return lipgloss.NewStyle().Height(rows + paneLines).Render(strings.Join(lines, "\n"))
}

// renderDetail describes the selected row on one line
func (m GanttModel) renderDetail(width int) string {
	var s string
	switch m.focus {
	case paneTimeline:
		e, ok := m.selectedEntry()
		if !ok {
			return ""
		}
		days := e.Start.DaysUntil(e.End) + 1
		s = fmt.Sprintf("#%s %s  %s → %s  %d days  %s", e.ID, e.Title, e.Start, e.End, days, e.Style)
	case paneUnstarted:
		issue, ok := m.selectedIssue()
		if !ok {
			return ""
		}
		s = fmt.Sprintf("#%d %s  opened %s", issue.Number, issue.Title, domain.DateOf(issue.CreatedAt))
		if issue.Author != "" {
			s += " by " + issue.Author
		}
		s += "  not started"
	}
	return NormalItemStyle.Render(truncate.StringWithTail(s, uint(max(width, 1)), "…"))
}

// renderStatusBar renders the toast or refresh state on the left and counts and filters on the right
func (m GanttModel) renderStatusBar(width int) string {
	left := ""
	switch {
	case m.refreshing:
		left = m.spinner.View() + "refreshing"
	case m.toast != "":
		left = toastStyle.Render(m.toast)
	}

	open, closed := m.store.Counts()
	parts := []string{fmt.Sprintf("%d open · %d closed", open, closed)}
	if f := m.store.StateFilter(); f != store.FilterAll {
		parts = append(parts, "["+f.String()+"]")
	}
	if q := m.store.TextFilter(); q != "" {
		parts = append(parts, "/"+q)
	}
	parts = append(parts, "[?]help")

	return spread(left, dimStyle.Render(strings.Join(parts, " | ")), width)
}

// reload pulls the filtered rows from the store and clamps the selection
func (m *GanttModel) reload() {
	m.entries = m.store.Entries()
	m.unstarted = m.store.Unstarted()

	for p, n := range [2]int{len(m.entries), len(m.unstarted)} {
		if m.selected[p] >= n {
			m.selected[p] = max(n-1, 0)
		}
	}
	m.adjustScroll()
}

func (m GanttModel) rowCount() int {
	if m.focus == paneTimeline {
		return len(m.entries)
	}
	return len(m.unstarted)
}

// visibleRows returns how many list rows fit between header and footer
func (m GanttModel) visibleRows() int {
	used := headerLines + paneLines + footerLines
	if m.filterMode {
		used++
	}
	return max(m.height-used, 1)
}

// moveSelection moves the selection in the focused pane by delta
func (m *GanttModel) moveSelection(delta int) {
	m.jumpTo(m.selected[m.focus] + delta)
}

// jumpTo selects row idx of the focused pane, clamped to the list
func (m *GanttModel) jumpTo(idx int) {
	n := m.rowCount()
	if n == 0 {
		return
	}
	m.selected[m.focus] = min(max(idx, 0), n-1)
	m.adjustScroll()
}

// adjustScroll keeps the selected row of each pane in view
func (m *GanttModel) adjustScroll() {
	rows := m.visibleRows()
	for p := range m.selected {
		if m.selected[p] < m.offset[p] {
			m.offset[p] = m.selected[p]
		}
		if m.selected[p] >= m.offset[p]+rows {
			m.offset[p] = m.selected[p] - rows + 1
		}
	}
}

func (m GanttModel) selectedEntry() (domain.TimelineEntry, bool) {
	if len(m.entries) == 0 {
		return domain.TimelineEntry{}, false
	}
	return m.entries[m.selected[paneTimeline]], true
}

func (m GanttModel) selectedIssue() (domain.Issue, bool) {
	if len(m.unstarted) == 0 {
		return domain.Issue{}, false
	}
	return m.unstarted[m.selected[paneUnstarted]], true
}

func (m GanttModel) selectedURL() string {
	if m.focus == paneTimeline {
		e, _ := m.selectedEntry()
		return e.URL
	}
	issue, _ := m.selectedIssue()
	return issue.URL
}

// exportCmd writes the visible rows to the export directory in the background
func (m GanttModel) exportCmd(f export.Format) tea.Cmd {
	r, err := m.store.Report()
	if err != nil {
		return func() tea.Msg { return exportDoneMsg{err: err} }
	}

	path := filepath.Join(m.exportDir, export.FileName(r.Repo, f))
	in := export.Input{
		Repo:        r.Repo,
		GeneratedAt: r.GeneratedAt,
		Today:       m.today(),
		Result:      domain.Result{Timeline: m.entries, Unstarted: m.unstarted, Today: m.today()},
	}

	return func() tea.Msg {
		return exportDoneMsg{path: path, err: export.WriteFile(path, f, in)}
	}
}

// today is the day the loaded report used for open entries, so the marker
// lines up with their bar ends
func (m GanttModel) today() domain.Date {
	if r, err := m.store.Report(); err == nil && !r.Result.Today.IsZero() {
		return r.Result.Today
	}
	return domain.Today(m.now())
}

func cursor(selected bool) string {
	if selected {
		return SelectedItemStyle.Render("> ")
	}
	return "  "
}

func itemStyle(selected bool) lipgloss.Style {
	if selected {
		return SelectedItemStyle
	}
	return NormalItemStyle
}

// spread places left and right on one line of width columns
func spread(left, right string, width int) string {
	padding := max(width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", padding) + right
}

func padRight(s string, width int) string {
	return s + strings.Repeat(" ", max(width-lipgloss.Width(s), 0))
}
