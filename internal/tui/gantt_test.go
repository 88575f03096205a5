package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/h0rv/ghgantt/internal/auth"
	"github.com/h0rv/ghgantt/internal/domain"
	"github.com/h0rv/ghgantt/internal/gh"
	"github.com/h0rv/ghgantt/internal/report"
	"github.com/h0rv/ghgantt/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func mustDate(s string) domain.Date {
	d, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func createTestReport() *report.Report {
	return &report.Report{
		Repo:        domain.Repo{Owner: "octo", Name: "hello"},
		GeneratedAt: fixedNow,
		IssueCount:  5,
		Result: domain.Result{
			Timeline: []domain.TimelineEntry{
				{ID: "1", Title: "Task 1", URL: "u1", Start: mustDate("2024-01-01"), End: mustDate("2024-01-05"), Progress: 100, Style: domain.IssueStateClosed},
				{ID: "2", Title: "Task 2", URL: "u2", Start: mustDate("2024-01-03"), End: mustDate("2024-01-20"), Style: domain.IssueStateOpen},
				{ID: "3", Title: "Task 3", URL: "u3", Start: mustDate("2024-01-10"), End: mustDate("2024-01-12"), Progress: 100, Style: domain.IssueStateClosed},
			},
			Unstarted: []domain.Issue{
				{Number: 4, Title: "Backlog A", URL: "u4", State: domain.IssueStateOpen, Author: "alice", CreatedAt: fixedNow},
				{Number: 5, Title: "Backlog B", URL: "u5", State: domain.IssueStateOpen},
			},
		},
	}
}

// createTestStore creates a store with test data
func createTestStore() *store.Store {
	s := store.New()
	s.SetReport(createTestReport())
	s.SetViewerLogin("octocat")
	return s
}

func newSizedGantt(t *testing.T, s *store.Store, exportDir string) GanttModel {
	t.Helper()
	m := NewGanttModel(s, exportDir, clock)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return updated.(GanttModel)
}

func press(t *testing.T, m GanttModel, keys ...tea.KeyMsg) (GanttModel, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	var model tea.Model = m
	for _, k := range keys {
		model, cmd = model.Update(k)
	}
	return model.(GanttModel), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestGanttModel_LoadsFromStore(t *testing.T) {
	m := newSizedGantt(t, createTestStore(), "")

	assert.Len(t, m.entries, 3)
	assert.Len(t, m.unstarted, 2)
	assert.Equal(t, paneTimeline, m.focus)
}

func TestGanttModel_Navigation(t *testing.T) {
	m := newSizedGantt(t, createTestStore(), "")

	m, _ = press(t, m, runes("j"), runes("j"), runes("j"))
	assert.Equal(t, 2, m.selected[paneTimeline], "selection stops at the last row")

	m, _ = press(t, m, runes("k"))
	assert.Equal(t, 1, m.selected[paneTimeline])

	m, _ = press(t, m, runes("G"))
	assert.Equal(t, 2, m.selected[paneTimeline])

	m, _ = press(t, m, runes("g"))
	assert.Equal(t, 0, m.selected[paneTimeline])
}

func TestGanttModel_SwitchPane(t *testing.T) {
	m := newSizedGantt(t, createTestStore(), "")

	m, _ = press(t, m, runes("j"), tea.KeyMsg{Type: tea.KeyTab}, runes("j"))

	assert.Equal(t, paneUnstarted, m.focus)
	assert.Equal(t, 1, m.selected[paneUnstarted])
	assert.Equal(t, 1, m.selected[paneTimeline], "each pane keeps its own selection")
	assert.Equal(t, "u5", m.selectedURL())

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, paneTimeline, m.focus)
	assert.Equal(t, "u2", m.selectedURL())
}

func TestGanttModel_CycleStateFilter(t *testing.T) {
	s := createTestStore()
	m := newSizedGantt(t, s, "")

	m, _ = press(t, m, runes("G"), runes("f"))
	assert.Equal(t, store.FilterOpen, s.StateFilter())
	require.Len(t, m.entries, 1)
	assert.Equal(t, "2", m.entries[0].ID)
	assert.Equal(t, 0, m.selected[paneTimeline], "selection clamped to the shorter list")

	m, _ = press(t, m, runes("f"))
	assert.Equal(t, store.FilterClosed, s.StateFilter())
	assert.Len(t, m.entries, 2)
	assert.Empty(t, m.unstarted)
}

func TestGanttModel_TextFilter(t *testing.T) {
	s := createTestStore()
	m := newSizedGantt(t, s, "")

	m, _ = press(t, m, runes("/"))
	assert.True(t, m.filterMode)

	m, _ = press(t, m, runes("t"), runes("a"), runes("s"), runes("k"), runes(" "), runes("3"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.filterMode)
	assert.Equal(t, "task 3", s.TextFilter())
	require.Len(t, m.entries, 1)
	assert.Equal(t, "3", m.entries[0].ID)

	t.Run("escape keeps the applied filter", func(t *testing.T) {
		m, _ := press(t, m, runes("/"), runes("x"), tea.KeyMsg{Type: tea.KeyEsc})
		assert.False(t, m.filterMode)
		assert.Equal(t, "task 3", s.TextFilter())
		assert.Len(t, m.entries, 1)
	})
}

func TestGanttModel_HelpOverlay(t *testing.T) {
	m := newSizedGantt(t, createTestStore(), "")

	m, _ = press(t, m, runes("?"))
	assert.True(t, m.showHelp)
	assert.Contains(t, m.View(), "export csv")

	m, _ = press(t, m, runes("j"))
	assert.Equal(t, 0, m.selected[paneTimeline], "keys are swallowed while help is open")

	m, _ = press(t, m, runes("?"))
	assert.False(t, m.showHelp)
}

func TestGanttModel_Refresh(t *testing.T) {
	m := newSizedGantt(t, createTestStore(), "")

	m, cmd := press(t, m, runes("r"))
	require.NotNil(t, cmd)
	assert.True(t, m.refreshing)
	assert.IsType(t, refreshRequestedMsg{}, cmd())

	_, cmd = press(t, m, runes("r"))
	assert.Nil(t, cmd, "no second refresh while one is in flight")

	updated, _ := m.Update(reportErrorMsg{err: errors.New("boom")})
	m = updated.(GanttModel)
	assert.False(t, m.refreshing)
	assert.Contains(t, m.toast, "boom")

	updated, _ = m.Update(reportLoadedMsg{})
	m = updated.(GanttModel)
	assert.Empty(t, m.toast)
}

func TestGanttModel_ExportCSV(t *testing.T) {
	dir := t.TempDir()
	s := createTestStore()
	m := newSizedGantt(t, s, dir)

	m, cmd := press(t, m, runes("f"), runes("e"))
	require.NotNil(t, cmd)

	done, ok := cmd().(exportDoneMsg)
	require.True(t, ok)
	require.NoError(t, done.err)
	assert.Equal(t, filepath.Join(dir, "octo-hello-timeline.csv"), done.path)

	data, err := os.ReadFile(done.path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\r\n")
	assert.Len(t, lines, 2, "header plus the one visible open entry")

	updated, _ := m.Update(done)
	assert.Contains(t, updated.(GanttModel).toast, "Exported")
}

func TestGanttModel_ExportEmpty(t *testing.T) {
	s := store.New()
	s.SetReport(&report.Report{Repo: domain.Repo{Owner: "o", Name: "r"}})
	m := newSizedGantt(t, s, t.TempDir())

	_, cmd := press(t, m, runes("p"))
	require.NotNil(t, cmd)

	done := cmd().(exportDoneMsg)
	assert.Error(t, done.err)
}

func TestGanttModel_View(t *testing.T) {
	m := newSizedGantt(t, createTestStore(), "")
	updated, _ := m.Update(repoInfoMsg{info: gh.RepoInfo{NameWithOwner: "octo/hello", Description: "Greetings"}})
	m = updated.(GanttModel)

	view := m.View()

	assert.Contains(t, view, "octo/hello - Greetings")
	assert.Contains(t, view, "@octocat")
	assert.Contains(t, view, "Timeline (3)")
	assert.Contains(t, view, "#1 Task 1")
	assert.Contains(t, view, "2024-01-01")
	assert.Contains(t, view, "1 open · 2 closed")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	view = m.View()
	assert.Contains(t, view, "Unstarted (2)")
	assert.Contains(t, view, "#4 Backlog A")
	assert.Contains(t, view, "by alice")
}

func TestGanttModel_ScrollKeepsSelectionVisible(t *testing.T) {
	r := &report.Report{Repo: domain.Repo{Owner: "o", Name: "r"}}
	for i := 0; i < 50; i++ {
		r.Result.Timeline = append(r.Result.Timeline, domain.TimelineEntry{
			ID: strconv.Itoa(i), Start: mustDate("2024-01-01"), End: mustDate("2024-01-02"), Style: domain.IssueStateOpen,
		})
	}
	s := store.New()
	s.SetReport(r)
	m := NewGanttModel(s, "", clock)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 15})
	m = updated.(GanttModel)

	m, _ = press(t, m, runes("G"))

	rows := m.visibleRows()
	assert.Equal(t, 49, m.selected[paneTimeline])
	assert.Equal(t, 49-rows+1, m.offset[paneTimeline])
}

type fakeBuilder struct {
	report *report.Report
	err    error
	calls  int
}

func (f *fakeBuilder) Build(ctx context.Context, repo domain.Repo, cred auth.Credential) (*report.Report, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	r := *f.report
	r.Repo = repo
	return &r, nil
}

func TestAppModel_LoadsRepoFromFlag(t *testing.T) {
	builder := &fakeBuilder{report: createTestReport()}
	s := store.New()
	app := NewAppModel(context.Background(), builder, nil, s, "tok", "octo/hello", "")

	updated, cmd := app.Update(RepoSelectedMsg{Repo: domain.Repo{Owner: "octo", Name: "hello"}})
	app = updated.(AppModel)
	require.NotNil(t, cmd)
	assert.Equal(t, ScreenLoading, app.currentScreen)
	assert.Contains(t, app.View(), "Building timeline for octo/hello")

	r, err := builder.Build(context.Background(), app.repo, app.cred)
	require.NoError(t, err)
	updated, _ = app.Update(reportLoadedMsg{report: r})
	app = updated.(AppModel)

	assert.Equal(t, ScreenGantt, app.currentScreen)
	require.NotNil(t, app.ganttModel)
	got, err := s.Report()
	require.NoError(t, err)
	assert.Equal(t, "octo/hello", got.Repo.String())
}

func TestAppModel_InitialLoadErrorReturnsToPrompt(t *testing.T) {
	notFound := &gh.APIError{StatusCode: 404, Message: "Not Found"}
	builder := &fakeBuilder{err: notFound}
	app := NewAppModel(context.Background(), builder, nil, store.New(), "tok", "", "")

	updated, _ := app.Update(RepoSelectedMsg{Repo: domain.Repo{Owner: "octo", Name: "typo"}})
	app = updated.(AppModel)
	updated, _ = app.Update(reportErrorMsg{err: notFound})
	app = updated.(AppModel)

	assert.NoError(t, app.err)
	assert.Equal(t, ScreenRepo, app.currentScreen)
	view := app.View()
	assert.Contains(t, view, "github api error: 404 Not Found")
	assert.NotContains(t, view, "Press Ctrl+C to quit")

	// Submitting again retries the load
	updated, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	app = updated.(AppModel)
	require.NotNil(t, cmd)
	assert.Equal(t, RepoSelectedMsg{Repo: domain.Repo{Owner: "octo", Name: "typo"}}, cmd())
}

func TestAppModel_RefreshFailureKeepsTimeline(t *testing.T) {
	app := NewAppModel(context.Background(), &fakeBuilder{}, nil, store.New(), "tok", "", "")
	updated, _ := app.Update(reportLoadedMsg{report: createTestReport()})
	app = updated.(AppModel)

	updated, _ = app.Update(reportErrorMsg{err: errors.New("rate limited")})
	app = updated.(AppModel)

	assert.NoError(t, app.err)
	assert.Equal(t, ScreenGantt, app.currentScreen)
	assert.Contains(t, app.ganttModel.toast, "rate limited")
}

func TestAppModel_PromptOnMissingRepo(t *testing.T) {
	app := NewAppModel(context.Background(), &fakeBuilder{}, nil, store.New(), "", "not-a-repo", "")

	updated, _ := app.Update(promptMsg{err: domain.ErrInvalidRepo})
	app = updated.(AppModel)

	assert.Equal(t, ScreenRepo, app.currentScreen)
	assert.Contains(t, app.View(), "owner/repository")
}

func TestRepoPromptModel_Submit(t *testing.T) {
	m := NewRepoPromptModel("octo/hello", nil)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, RepoSelectedMsg{Repo: domain.Repo{Owner: "octo", Name: "hello"}}, cmd())

	bad := NewRepoPromptModel("nope", nil)
	updated, cmd := bad.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.ErrorIs(t, updated.(RepoPromptModel).err, domain.ErrInvalidRepo)
}

func TestGanttModel_EmptyRepository(t *testing.T) {
	s := store.New()
	s.SetReport(&report.Report{Repo: domain.Repo{Owner: "o", Name: "r"}})
	m := newSizedGantt(t, s, "")

	assert.Contains(t, m.View(), "No issues found in o/r.")
}

func TestGanttModel_TodayComesFromReport(t *testing.T) {
	r := createTestReport()
	r.Result.Today = mustDate("2024-01-12")
	s := store.New()
	s.SetReport(r)
	m := newSizedGantt(t, s, "")

	assert.Equal(t, mustDate("2024-01-12"), m.today(), "report day wins over the wall clock")

	s.SetReport(createTestReport())
	assert.Equal(t, domain.Today(fixedNow), m.today(), "falls back to the clock")
}
