// Package tui implements the interactive repository picker shown by
// `pensieve clone` when no locator is given.
package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ErrCancelled means the user left the picker without choosing.
var ErrCancelled = errors.New("selection cancelled")

// PickRepository shows a filterable list of repository locators and returns
// the chosen one. Locators come from the cache snapshot, so the picker works
// offline.
func PickRepository(locators []string) (string, error) {
	if len(locators) == 0 {
		return "", errors.New("nothing to pick from")
	}

	p := tea.NewProgram(newPickerModel(locators), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("running picker: %w", err)
	}

	m, ok := final.(pickerModel)
	if !ok || m.cancelled || m.choice == "" {
		return "", ErrCancelled
	}
	return m.choice, nil
}

// pickerModel is the repository picker.
type pickerModel struct {
	width  int
	height int

	list list.Model
	help help.Model

	choice    string
	cancelled bool
}

func newPickerModel(locators []string) pickerModel {
	l := list.New(locatorsToItems(locators), repoDelegate{}, 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)
	l.DisableQuitKeybindings()
	l.SetShowPagination(false)

	return pickerModel{
		list: l,
		help: help.New(),
	}
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case tea.KeyMsg:
		// Don't intercept keys while filtering.
		if m.list.SettingFilter() {
			break
		}

		switch {
		case key.Matches(msg, keys.Enter):
			if item := m.list.SelectedItem(); item != nil {
				if ri, ok := item.(repoItem); ok {
					m.choice = ri.locator
					return m, tea.Quit
				}
			}
			return m, nil

		case key.Matches(msg, keys.Quit):
			m.cancelled = true
			return m, tea.Quit

		case key.Matches(msg, keys.Back):
			// Esc clears an applied filter before it cancels the picker.
			if m.list.FilterState() != list.Unfiltered {
				break
			}
			m.cancelled = true
			return m, tea.Quit
		}
	}

	// Forward to list for navigation + filtering.
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m pickerModel) View() string {
	header := sectionHeaderStyle.Render("  SELECT REPOSITORY") + "\n"
	helpLine := " " + helpStyle.Render(m.help.View(pickerHelpKeyMap{}))

	// Measure chrome, size list to fill remaining space.
	chromeH := lipgloss.Height(header) + lipgloss.Height(helpLine)
	listH := max(1, m.height-chromeH)
	m.list.SetSize(m.width, listH)

	return header + m.list.View() + "\n" + helpLine
}
