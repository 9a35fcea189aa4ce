package core

import (
	"github.com/bwmarrin/discordgo"
	"github.com/floofybot/floofy/internal/bot"
	"github.com/floofybot/floofy/internal/modules/core/application"
	"github.com/floofybot/floofy/internal/modules/core/presentation"
)

func init() {
	bot.Register(&CoreModule{})
}

// CoreModule provides general commands like /ping and /help.
type CoreModule struct {
	pingHandler *presentation.PingHandler
	helpHandler *presentation.HelpHandler
}

// Name returns the module name.
func (m *CoreModule) Name() string {
	return "core"
}

// Commands returns the slash commands for this module.
func (m *CoreModule) Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "ping",
			Description: "Checks if I'm online",
		},
		{
			Name:        "help",
			Description: "Shows this menu",
		},
	}
}

// CommandHandlers returns the command handlers for this module.
func (m *CoreModule) CommandHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		"ping": m.pingHandler.Handle,
		"help": m.helpHandler.Handle,
	}
}

// EventHandlers returns the event handlers for this module.
func (m *CoreModule) EventHandlers() []bot.EventHandler {
	return nil
}

// Init initializes the module.
func (m *CoreModule) Init(deps bot.ModuleDependencies) error {
	m.pingHandler = presentation.NewPingHandler()
	m.helpHandler = presentation.NewHelpHandler(application.NewHelpInteractor(allCommands))
	return nil
}

// Shutdown cleans up module resources.
func (m *CoreModule) Shutdown() error {
	return nil
}

// allCommands lists the commands of every registered module.
func allCommands() []*discordgo.ApplicationCommand {
	var commands []*discordgo.ApplicationCommand
	for _, mod := range bot.Modules() {
		commands = append(commands, mod.Commands()...)
	}
	return commands
}
