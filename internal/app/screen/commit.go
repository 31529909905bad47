package screen

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/cszczepaniak/go-istage/internal/models"
	"github.com/cszczepaniak/go-istage/internal/theme"
)

// summaryLimit caps how many staged files the commit screen lists before
// collapsing the rest into a count.
const summaryLimit = 8

// CommitScreen prompts for a commit message and shows a summary of the
// staged files that the commit will contain.
type CommitScreen struct {
	Input    textinput.Model
	Staged   []models.StatusFile
	Branch   string
	ErrorMsg string
	Thm      *theme.Theme

	OnSubmit func(message string) tea.Cmd
	OnCancel func() tea.Cmd

	boxWidth int
}

// NewCommitScreen creates the commit prompt over the given staged files.
func NewCommitScreen(staged []models.StatusFile, branch string, thm *theme.Theme) *CommitScreen {
	ti := textinput.New()
	ti.Placeholder = "Commit message"
	ti.Focus()
	ti.CharLimit = 200
	ti.Prompt = ""
	ti.TextStyle = lipgloss.NewStyle().Foreground(thm.TextFg)
	ti.Width = 62

	return &CommitScreen{
		Input:    ti,
		Staged:   staged,
		Branch:   branch,
		Thm:      thm,
		boxWidth: 70,
	}
}

// Type returns the screen type.
func (s *CommitScreen) Type() Type {
	return TypeCommit
}

// Update handles keyboard input for the commit screen.
// Returns nil to signal the screen should be closed.
func (s *CommitScreen) Update(msg tea.KeyMsg) (Screen, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.String() {
	case keyEnter:
		message := strings.TrimSpace(s.Input.Value())
		if message == "" {
			s.ErrorMsg = "commit message cannot be empty"
			return s, nil
		}
		s.ErrorMsg = ""
		if s.OnSubmit != nil {
			cmd = s.OnSubmit(message)
		}
		return nil, cmd

	case keyEsc, keyEscRaw, keyCtrlC:
		if s.OnCancel != nil {
			return nil, s.OnCancel()
		}
		return nil, nil
	}

	s.Input, cmd = s.Input.Update(msg)
	return s, cmd
}

// View renders the commit prompt with the staged summary.
func (s *CommitScreen) View() string {
	width := s.boxWidth

	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(s.Thm.Accent).
		Padding(1, 2).
		Width(width)

	title := "Commit staged changes"
	if s.Branch != "" {
		title = fmt.Sprintf("Commit staged changes to %s", s.Branch)
	}
	promptStyle := lipgloss.NewStyle().
		Foreground(s.Thm.Accent).
		Bold(true).
		Width(width - 6).
		Align(lipgloss.Center)

	inputWrapperStyle := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(s.Thm.Border).
		Padding(0, 1).
		Width(width - 6)

	contentLines := []string{
		promptStyle.Render(title),
		inputWrapperStyle.Render(s.Input.View()),
	}

	if summary := s.renderSummary(width - 6); summary != "" {
		contentLines = append(contentLines, summary)
	}

	if s.ErrorMsg != "" {
		errorStyle := lipgloss.NewStyle().
			Foreground(s.Thm.ErrorFg).
			Width(width - 6).
			Align(lipgloss.Center)
		contentLines = append(contentLines, errorStyle.Render(s.ErrorMsg))
	}

	footerStyle := lipgloss.NewStyle().
		Foreground(s.Thm.MutedFg).
		Width(width - 6).
		Align(lipgloss.Center).
		MarginTop(1)
	contentLines = append(contentLines, footerStyle.Render("Enter to commit • Esc to cancel"))

	content := strings.Join(contentLines, "\n\n")

	return boxStyle.Render(content)
}

// renderSummary lists the staged files the commit will contain.
func (s *CommitScreen) renderSummary(width int) string {
	if len(s.Staged) == 0 {
		return ""
	}

	mutedStyle := lipgloss.NewStyle().Foreground(s.Thm.MutedFg)
	lines := []string{mutedStyle.Render(fmt.Sprintf("%d file(s) staged:", len(s.Staged)))}

	shown := s.Staged
	if len(shown) > summaryLimit {
		shown = shown[:summaryLimit]
	}
	for _, sf := range shown {
		display := sf.Display()
		// 4 columns for indent and letter; truncate before styling.
		if width > 5 && len(display) > width-4 {
			display = display[:width-5] + "…"
		}
		letter := string(sf.Letter(true))
		lines = append(lines, "  "+s.letterStyle(sf.Letter(true)).Render(letter)+" "+display)
	}
	if extra := len(s.Staged) - len(shown); extra > 0 {
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("  … and %d more", extra)))
	}

	return strings.Join(lines, "\n")
}

func (s *CommitScreen) letterStyle(letter byte) lipgloss.Style {
	style := lipgloss.NewStyle().Bold(true)
	switch letter {
	case 'A':
		return style.Foreground(s.Thm.AddedFg)
	case 'D':
		return style.Foreground(s.Thm.RemovedFg)
	case 'M':
		return style.Foreground(s.Thm.Yellow)
	case 'R', 'C':
		return style.Foreground(s.Thm.RenameFg)
	default:
		return style.Foreground(s.Thm.MutedFg)
	}
}
