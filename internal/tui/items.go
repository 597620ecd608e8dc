package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// repoItem wraps one repository locator for the bubbles list.
type repoItem struct {
	locator string
}

func (i repoItem) FilterValue() string { return i.locator }

// repoDelegate renders locators as:   > store:owner/name
type repoDelegate struct{}

func (d repoDelegate) Height() int                             { return 1 }
func (d repoDelegate) Spacing() int                            { return 0 }
func (d repoDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d repoDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ri, ok := item.(repoItem)
	if !ok {
		return
	}

	isSelected := index == m.Index()

	indicator := "    "
	if isSelected {
		indicator = "  > "
	}

	// Dim the store prefix so the repository name stands out.
	storePart, namePart, found := strings.Cut(ri.locator, ":")
	if !found {
		namePart = ri.locator
		storePart = ""
	}

	prefix := ""
	if storePart != "" {
		prefix = mutedStyle.Render(storePart + ":")
	}

	if isSelected {
		_, _ = fmt.Fprint(w, indicator+prefix+selectedItemStyle.Render(namePart))
	} else {
		_, _ = fmt.Fprint(w, indicator+prefix+normalItemStyle.Render(namePart))
	}
}

// locatorsToItems converts locator strings to list items.
func locatorsToItems(locators []string) []list.Item {
	items := make([]list.Item, len(locators))
	for i, loc := range locators {
		items[i] = repoItem{locator: loc}
	}
	return items
}
