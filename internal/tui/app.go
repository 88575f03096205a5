package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/h0rv/ghgantt/internal/auth"
	"github.com/h0rv/ghgantt/internal/domain"
	"github.com/h0rv/ghgantt/internal/gh"
	"github.com/h0rv/ghgantt/internal/report"
	"github.com/h0rv/ghgantt/internal/store"
)

// AppScreen represents the different screens in the application flow.
type AppScreen int

const (
	ScreenLoading AppScreen = iota
	ScreenRepo
	ScreenGantt
)

// ReportBuilder builds a timeline report for a repository.
type ReportBuilder interface {
	Build(ctx context.Context, repo domain.Repo, cred auth.Credential) (*report.Report, error)
}

// Metadata answers the lookups shown around the chart. Failures are not fatal.
type Metadata interface {
	Viewer(ctx context.Context, cred auth.Credential) (string, error)
	Repository(ctx context.Context, repo domain.Repo, cred auth.Credential) (gh.RepoInfo, error)
}

// AppModel is the root Bubble Tea model that manages screen transitions.
// It orchestrates the flow from repository selection -> loading -> timeline view.
type AppModel struct {
	// Dependencies
	ctx      context.Context
	builder  ReportBuilder
	metadata Metadata
	store    *store.Store
	cred     auth.Credential

	// CLI flag (pre-filled value)
	repoFlag  string
	exportDir string
	now       func() time.Time

	// Current state
	currentScreen AppScreen
	currentModel  tea.Model
	spinner       spinner.Model
	err           error
	loadingMsg    string

	repo     domain.Repo
	repoInfo *gh.RepoInfo

	// Cached so refreshes keep selection and filters
	ganttModel *GanttModel
}

// NewAppModel creates a new app model. An empty repoFlag starts at the
// repository prompt. metadata may be nil.
func NewAppModel(ctx context.Context, builder ReportBuilder, metadata Metadata, s *store.Store, cred auth.Credential, repoFlag, exportDir string) AppModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return AppModel{
		ctx:           ctx,
		builder:       builder,
		metadata:      metadata,
		store:         s,
		cred:          cred,
		repoFlag:      repoFlag,
		exportDir:     exportDir,
		now:           time.Now,
		currentScreen: ScreenLoading,
		spinner:       sp,
		loadingMsg:    "Connecting to GitHub...",
	}
}

// Init initializes the app model.
func (m AppModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, m.fetchViewer()}

	// If repo flag is provided, skip the prompt
	if m.repoFlag != "" {
		repo, err := domain.ParseRepo(m.repoFlag)
		if err == nil {
			return tea.Batch(append(cmds, func() tea.Msg { return RepoSelectedMsg{Repo: repo} })...)
		}
		return tea.Batch(append(cmds, m.showPrompt(err))...)
	}

	return tea.Batch(append(cmds, m.showPrompt(nil))...)
}

// Update handles messages and transitions between screens.
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Global quit handler
		if msg.String() == "ctrl+c" && m.currentScreen != ScreenGantt {
			return m, tea.Quit
		}

	case ErrorMsg:
		m.err = msg.Err
		return m, nil

	case QuitMsg:
		return m, tea.Quit

	case promptMsg:
		m.currentScreen = ScreenRepo
		prompt := NewRepoPromptModel(m.repoFlag, msg.err)
		m.currentModel = prompt
		return m, prompt.Init()

	case viewerMsg:
		m.store.SetViewerLogin(msg.login)
		return m, nil

	case RepoSelectedMsg:
		cmds := []tea.Cmd{}
		if m.currentScreen != ScreenLoading {
			// The spinner stops ticking while another screen is shown
			cmds = append(cmds, m.spinner.Tick)
		}
		m.repo = msg.Repo
		m.repoInfo = nil
		m.ganttModel = nil
		m.store.Clear()
		m.currentScreen = ScreenLoading
		m.currentModel = nil
		m.loadingMsg = fmt.Sprintf("Building timeline for %s...", m.repo)
		return m, tea.Batch(append(cmds, m.loadReport(), m.fetchRepoInfo())...)

	case repoInfoMsg:
		info := msg.info
		m.repoInfo = &info

	case reportLoadedMsg:
		m.store.SetReport(msg.report)
		if m.ganttModel == nil {
			gantt := NewGanttModel(m.store, m.exportDir, m.now)
			if m.repoInfo != nil {
				gantt.info = m.repoInfo
			}
			m.ganttModel = &gantt
			m.currentScreen = ScreenGantt
			m.currentModel = gantt
			return m, gantt.Init()
		}

	case reportErrorMsg:
		// Refresh failures are shown by the timeline; an initial failure goes back
		// to the prompt so another repository can be tried
		if m.ganttModel == nil {
			m.currentScreen = ScreenRepo
			prompt := NewRepoPromptModel(m.repo.String(), msg.err)
			m.currentModel = prompt
			return m, prompt.Init()
		}

	case refreshRequestedMsg:
		return m, m.loadReport()

	case spinner.TickMsg:
		if msg.ID == m.spinner.ID() {
			if m.currentScreen != ScreenLoading {
				return m, nil
			}
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	// Delegate to current screen's model
	if m.currentModel != nil {
		var cmd tea.Cmd
		m.currentModel, cmd = m.currentModel.Update(msg)
		// Keep ganttModel in sync when on the timeline screen
		if m.currentScreen == ScreenGantt {
			if gm, ok := m.currentModel.(GanttModel); ok {
				m.ganttModel = &gm
			}
		}
		return m, cmd
	}

	return m, nil
}

// View renders the current screen.
func (m AppModel) View() string {
	// Show error if present
	if m.err != nil {
		return ErrorStyle.Render(fmt.Sprintf("Error: %v\n\nPress Ctrl+C to quit", m.err))
	}

	// Delegate to current screen
	if m.currentModel != nil {
		return m.currentModel.View()
	}

	// Show loading state
	return m.spinner.View() + " " + m.loadingMsg + "\n\nPress Ctrl+C to quit"
}

// showPrompt creates a command that switches to the repository prompt.
func (m AppModel) showPrompt(err error) tea.Cmd {
	return func() tea.Msg { return promptMsg{err: err} }
}

// loadReport creates a command that fetches the repository and infers its timeline.
func (m AppModel) loadReport() tea.Cmd {
	repo := m.repo
	return func() tea.Msg {
		r, err := m.builder.Build(m.ctx, repo, m.cred)
		if err != nil {
			return reportErrorMsg{err: err}
		}
		return reportLoadedMsg{report: r}
	}
}

// fetchViewer creates a command to look up the authenticated user's login.
func (m AppModel) fetchViewer() tea.Cmd {
	if m.metadata == nil || m.cred.IsZero() {
		return nil
	}
	return func() tea.Msg {
		login, err := m.metadata.Viewer(m.ctx, m.cred)
		if err != nil {
			return nil
		}
		return viewerMsg{login: login}
	}
}

// fetchRepoInfo creates a command to load repository metadata for the header.
func (m AppModel) fetchRepoInfo() tea.Cmd {
	if m.metadata == nil || m.cred.IsZero() {
		return nil
	}
	repo := m.repo
	return func() tea.Msg {
		info, err := m.metadata.Repository(m.ctx, repo, m.cred)
		if err != nil {
			return nil
		}
		return repoInfoMsg{info: info}
	}
}

type promptMsg struct {
	err error
}
