package bot

import (
	"fmt"
	"log/slog"
	"maps"

	"github.com/bwmarrin/discordgo"
	"github.com/floofybot/floofy/internal/settings"
)

const intents = discordgo.IntentsAllWithoutPrivileged | discordgo.IntentMessageContent

// Bot manages the Discord bot lifecycle and module coordination.
type Bot struct {
	config     *Config
	session    *discordgo.Session
	settings   *settings.Store
	modules    []Module
	handlers   map[string]InteractionHandler
	components map[string]InteractionHandler
}

// NewBot creates a new Bot instance with the given configuration.
func NewBot(cfg *Config) *Bot {
	return &Bot{
		config:     cfg,
		modules:    make([]Module, 0),
		handlers:   make(map[string]InteractionHandler),
		components: make(map[string]InteractionHandler),
	}
}

// LoadModules loads modules from the global registry.
func (b *Bot) LoadModules() {
	b.modules = Modules()
}

// Start initializes the bot, connects to Discord, and registers commands.
func (b *Bot) Start() error {
	// Create Discord session
	session, err := discordgo.New("Bot " + b.config.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create Discord session: %w", err)
	}
	session.Identify.Intents = intents
	b.session = session

	store, err := settings.Open(b.config.SettingsPath)
	if err != nil {
		return fmt.Errorf("failed to open settings: %w", err)
	}
	b.settings = store

	if err := b.loadModuleConfigs(); err != nil {
		return err
	}

	// Register interaction handler
	b.session.AddHandler(b.handleInteraction)

	// Modules need the bot user from the ready state, so connect before Init.
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	// Initialize modules
	if err := b.initModules(); err != nil {
		return fmt.Errorf("failed to initialize modules: %w", err)
	}

	// Build handler map
	b.buildHandlerMap()

	// Register module event handlers
	b.registerEventHandlers()

	// Register commands
	if err := b.registerCommands(b.session.State.User.ID); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}

	slog.Info("started bot",
		"user_id", b.session.State.User.ID,
		"username", b.session.State.User.Username,
	)

	return nil
}

// DeployCommands registers every module's commands globally without
// connecting to the gateway.
func (b *Bot) DeployCommands() error {
	session, err := discordgo.New("Bot " + b.config.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create Discord session: %w", err)
	}
	b.session = session

	user, err := session.User("@me")
	if err != nil {
		return fmt.Errorf("failed to fetch application user: %w", err)
	}

	return b.registerCommands(user.ID)
}

// Stop gracefully shuts down the bot.
func (b *Bot) Stop() error {
	// Shutdown modules
	for _, mod := range b.modules {
		if err := mod.Shutdown(); err != nil {
			slog.Warn("failed to shutdown module", "module", mod.Name(), "error", err)
		}
	}

	if b.settings != nil {
		if err := b.settings.Close(); err != nil {
			slog.Warn("failed to close settings", "error", err)
		}
	}

	// Close Discord session
	if b.session != nil {
		return b.session.Close()
	}

	return nil
}

// loadModuleConfigs calls LoadConfig on every module that needs configuration.
func (b *Bot) loadModuleConfigs() error {
	for _, mod := range b.modules {
		configurable, ok := mod.(ConfigurableModule)
		if !ok {
			continue
		}
		if err := configurable.LoadConfig(); err != nil {
			return fmt.Errorf("failed to load %s module config: %w", mod.Name(), err)
		}
	}
	return nil
}

// initModules initializes all loaded modules.
func (b *Bot) initModules() error {
	deps := ModuleDependencies{
		Session:  b.session,
		Settings: b.settings,
	}

	for _, mod := range b.modules {
		if err := mod.Init(deps); err != nil {
			return fmt.Errorf("failed to initialize %s module: %w", mod.Name(), err)
		}
		slog.Debug("initialized module", "module", mod.Name())
	}

	moduleNames := make([]string, len(b.modules))
	for i, mod := range b.modules {
		moduleNames[i] = mod.Name()
	}
	slog.Info("initialized modules", "modules", moduleNames)

	return nil
}

// buildHandlerMap builds the command name and component ID to handler mappings.
func (b *Bot) buildHandlerMap() {
	for _, mod := range b.modules {
		maps.Copy(b.handlers, mod.CommandHandlers())
		if cm, ok := mod.(ComponentModule); ok {
			maps.Copy(b.components, cm.ComponentHandlers())
		}
	}
}

// registerEventHandlers registers all module event handlers with the session.
func (b *Bot) registerEventHandlers() {
	for _, mod := range b.modules {
		for _, handler := range mod.EventHandlers() {
			b.session.AddHandler(handler)
		}
	}
}

// collectCommands gathers all commands from loaded modules.
func (b *Bot) collectCommands() []*discordgo.ApplicationCommand {
	var commands []*discordgo.ApplicationCommand
	for _, mod := range b.modules {
		commands = append(commands, mod.Commands()...)
	}
	return commands
}

// registerCommands replaces the global command set with the modules' commands.
func (b *Bot) registerCommands(appID string) error {
	commands := b.collectCommands()

	registered, err := b.session.ApplicationCommandBulkOverwrite(appID, "", commands)
	if err != nil {
		return err
	}

	for _, cmd := range registered {
		slog.Debug("registered command", "command", cmd.Name)
	}
	slog.Info("registered commands", "count", len(registered))

	return nil
}

// Embed colors for responses.
const (
	colorYellow = 0xFFFF00
	colorRed    = 0xE74C3C
)

// handleInteraction routes incoming interactions to the appropriate handler.
func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	b.route(s, i, NewDiscordResponder(s, i.Interaction))
}

// route dispatches slash commands by name and message components by custom ID.
// Autocomplete and other interaction types are left to module event handlers.
func (b *Bot) route(s *discordgo.Session, i *discordgo.InteractionCreate, r Responder) {
	var (
		key     string
		handler InteractionHandler
		ok      bool
	)

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		key = i.ApplicationCommandData().Name
		handler, ok = b.handlers[key]
	case discordgo.InteractionMessageComponent:
		key = i.MessageComponentData().CustomID
		handler, ok = b.components[key]
	default:
		return
	}

	if !ok {
		slog.Warn("found no handler for interaction", "key", key)
		b.respondWithEmbed(r, "Unknown Command", "This command is not recognized.", colorYellow)
		return
	}

	if err := handler(s, i, r); err != nil {
		slog.Error("failed to handle interaction", "key", key, "error", err)
		b.respondWithEmbed(r, "Error", "An error occurred while processing your command.",
			colorRed)
	}
}

// respondWithEmbed sends an ephemeral embed response to an interaction.
func (b *Bot) respondWithEmbed(r Responder, title, description string, color int) {
	err := r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Title:       title,
					Description: description,
					Color:       color,
				},
			},
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		slog.Error("failed to send embed response", "error", err)
	}
}
