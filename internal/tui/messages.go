// Package tui provides Bubble Tea models for the interactive timeline viewer.
package tui

import (
	"github.com/h0rv/ghgantt/internal/domain"
	"github.com/h0rv/ghgantt/internal/gh"
	"github.com/h0rv/ghgantt/internal/report"
)

// RepoSelectedMsg is emitted when the user picks a repository.
type RepoSelectedMsg struct {
	Repo domain.Repo
}

// ErrorMsg is emitted when an error occurs.
type ErrorMsg struct {
	Err error
}

// QuitMsg is emitted when the user requests to quit.
type QuitMsg struct{}

type (
	reportLoadedMsg struct {
		report *report.Report
	}

	reportErrorMsg struct {
		err error
	}

	repoInfoMsg struct {
		info gh.RepoInfo
	}

	viewerMsg struct {
		login string
	}

	refreshRequestedMsg struct{}

	exportDoneMsg struct {
		path string
		err  error
	}
)
