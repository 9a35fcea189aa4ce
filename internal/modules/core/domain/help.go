package domain

import "sort"

// HelpEntry describes one slash command.
type HelpEntry struct {
	Name        string
	Description string
}

// HelpPage is the list of commands shown by /help.
type HelpPage struct {
	Title   string
	Entries []HelpEntry
}

// NewHelpPage creates a HelpPage with entries sorted by command name.
func NewHelpPage(entries []HelpEntry) *HelpPage {
	sorted := make([]HelpEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Name < sorted[j].Name
	})

	return &HelpPage{
		Title:   "Floofy's Commands! *awoo!*",
		Entries: sorted,
	}
}
