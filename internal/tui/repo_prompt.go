package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/h0rv/ghgantt/internal/domain"
)

// RepoPromptModel asks for an owner/repository reference.
type RepoPromptModel struct {
	input textinput.Model
	err   error
}

// NewRepoPromptModel creates a prompt prefilled with initial.
// A non-nil err is shown until the user submits again.
func NewRepoPromptModel(initial string, err error) RepoPromptModel {
	ti := textinput.New()
	ti.Placeholder = "owner/repository"
	ti.Prompt = "> "
	ti.CharLimit = 200
	ti.SetValue(initial)
	ti.Focus()

	return RepoPromptModel{input: ti, err: err}
}

// Init initializes the model.
func (m RepoPromptModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages.
func (m RepoPromptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "enter":
			repo, err := domain.ParseRepo(m.input.Value())
			if err != nil {
				m.err = err
				return m, nil
			}
			return m, func() tea.Msg { return RepoSelectedMsg{Repo: repo} }
		case "esc":
			return m, func() tea.Msg { return QuitMsg{} }
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the model.
func (m RepoPromptModel) View() string {
	s := TitleStyle.Render("Repository") + "\n" +
		PromptStyle.Render("Which repository should be charted?") + "\n" +
		m.input.View()
	if m.err != nil {
		s += "\n\n" + ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err))
	}
	return s + "\n" + HelpStyle.Render("enter: confirm • esc: quit")
}
