package application

import (
	"github.com/bwmarrin/discordgo"
	"github.com/floofybot/floofy/internal/modules/core/domain"
)

// CommandSource lists the commands the bot exposes.
type CommandSource func() []*discordgo.ApplicationCommand

// HelpInteractor handles the help use case.
type HelpInteractor struct {
	commands CommandSource
}

// NewHelpInteractor creates a new HelpInteractor.
func NewHelpInteractor(commands CommandSource) *HelpInteractor {
	return &HelpInteractor{
		commands: commands,
	}
}

// Execute builds the help page from the currently registered commands.
func (h *HelpInteractor) Execute() *domain.HelpPage {
	var entries []domain.HelpEntry
	for _, cmd := range h.commands() {
		entries = append(entries, domain.HelpEntry{
			Name:        cmd.Name,
			Description: cmd.Description,
		})
	}
	return domain.NewHelpPage(entries)
}
