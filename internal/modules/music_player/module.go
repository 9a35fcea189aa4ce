package music_player

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bwmarrin/discordgo"
	"github.com/caarlos0/env/v11"
	"github.com/floofybot/floofy/internal/bot"
	"github.com/floofybot/floofy/internal/modules/music_player/application/usecases"
	"github.com/floofybot/floofy/internal/modules/music_player/domain"
	"github.com/floofybot/floofy/internal/modules/music_player/infrastructure"
	"github.com/floofybot/floofy/internal/modules/music_player/presentation/discord"
	"github.com/floofybot/floofy/internal/settings"
)

func init() {
	bot.Register(&MusicPlayerModule{})
}

// Compile-time interface checks.
var (
	_ bot.ConfigurableModule = (*MusicPlayerModule)(nil)
	_ bot.ComponentModule    = (*MusicPlayerModule)(nil)
)

// MusicPlayerModule provides music playback commands.
type MusicPlayerModule struct {
	config          *Config
	settings        *settings.Store
	manager         *usecases.QueueManager
	commandHandlers *discord.CommandHandlers
	autocomplete    *discord.AutocompleteHandler
	eventHandlers   *discord.EventHandlers
	lavalinkAdapter *infrastructure.LavalinkAdapter
	eventBus        *infrastructure.ChannelEventBus

	ctx    context.Context
	cancel context.CancelFunc
}

// Name returns the module name.
func (m *MusicPlayerModule) Name() string {
	return "music_player"
}

// Commands returns the slash commands for this module.
func (m *MusicPlayerModule) Commands() []*discordgo.ApplicationCommand {
	return discord.Commands()
}

// CommandHandlers returns the command handlers for this module.
func (m *MusicPlayerModule) CommandHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		"play":         m.commandHandlers.HandlePlay,
		"pause":        m.commandHandlers.HandlePauseResume,
		"skip":         m.commandHandlers.HandleSkip,
		"stop":         m.commandHandlers.HandleStop,
		"disconnect":   m.commandHandlers.HandleDisconnect,
		"queue":        m.commandHandlers.HandleQueue,
		"musicchannel": m.commandHandlers.HandleMusicChannel,
	}
}

// ComponentHandlers returns the display button handlers for this module.
func (m *MusicPlayerModule) ComponentHandlers() map[string]bot.InteractionHandler {
	return map[string]bot.InteractionHandler{
		domain.ControlPauseResume: m.commandHandlers.HandlePauseResume,
		domain.ControlSkip:        m.commandHandlers.HandleSkip,
		domain.ControlStop:        m.commandHandlers.HandleStop,
		domain.ControlQueue:       m.commandHandlers.HandleQueue,
	}
}

// EventHandlers returns the event handlers for this module.
func (m *MusicPlayerModule) EventHandlers() []bot.EventHandler {
	return []bot.EventHandler{
		func(s *discordgo.Session, event *discordgo.VoiceServerUpdate) {
			m.handleVoiceServerUpdate(s, event)
		},
		func(s *discordgo.Session, event *discordgo.VoiceStateUpdate) {
			m.handleVoiceStateUpdate(s, event)
		},
		func(s *discordgo.Session, event *discordgo.MessageCreate) {
			m.eventHandlers.HandleMessageCreate(s, event)
		},
		func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			m.handleInteractionCreate(s, i)
		},
	}
}

// LoadConfig loads module-specific configuration from environment variables.
func (m *MusicPlayerModule) LoadConfig() error {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return err
	}
	m.config = cfg
	return nil
}

// Init initializes the module.
func (m *MusicPlayerModule) Init(deps bot.ModuleDependencies) error {
	if deps.Session == nil {
		return errors.New("music_player module requires a Discord session")
	}
	if deps.Settings == nil {
		return errors.New("music_player module requires a settings store")
	}
	if m.config == nil {
		return errors.New("music_player module config is not loaded")
	}

	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.settings = deps.Settings

	// Create event bus (needed by Lavalink adapter for publishing events)
	m.eventBus = infrastructure.NewChannelEventBus(infrastructure.DefaultEventBufferSize)

	lavalinkAdapter, err := infrastructure.NewLavalinkAdapter(
		deps.Session,
		m.eventBus,
		infrastructure.LavalinkConfig{
			Address:  m.config.LavalinkAddress,
			Password: m.config.LavalinkPassword,
			Secure:   m.config.LavalinkSecure,
		},
	)
	if err != nil {
		return err
	}
	m.lavalinkAdapter = lavalinkAdapter

	// Create infrastructure
	repo := infrastructure.NewMemoryRepository()
	display := infrastructure.NewDiscordDisplay(
		deps.Session,
		m.config.DisplayEditsPerSecond,
		m.config.DisplayEditBurst,
	)
	notifier := infrastructure.NewNotifier(deps.Session)
	voiceState := infrastructure.NewVoiceStateProvider(deps.Session)

	m.manager = usecases.NewQueueManager(
		repo,
		lavalinkAdapter,
		lavalinkAdapter,
		display,
		notifier,
		deps.Settings,
		voiceState,
		usecases.Timeouts{
			Idle:         m.config.IdleTimeout,
			EmptyChannel: m.config.EmptyChannelTimeout,
		},
	)
	m.manager.Start(m.eventBus)

	// Create presentation handlers
	m.commandHandlers = discord.NewCommandHandlers(m.manager, voiceState)
	m.autocomplete = discord.NewAutocompleteHandler(usecases.NewAutocompleteService(lavalinkAdapter))
	m.eventHandlers = discord.NewEventHandlers(
		lavalinkAdapter.BotID(),
		m.manager,
		voiceState,
		lavalinkAdapter,
	)

	go m.bootstrapDisplays()

	slog.Info("music_player module initialized with Lavalink")

	return nil
}

// bootstrapDisplays posts a fresh display in every configured control channel.
func (m *MusicPlayerModule) bootstrapDisplays() {
	guilds, err := m.settings.GuildsWithControlChannel(m.ctx)
	if err != nil {
		slog.Error("failed to list control channels", "error", err)
		return
	}

	for _, guildID := range guilds {
		if m.ctx.Err() != nil {
			return
		}
		if err := m.manager.InitDisplay(m.ctx, guildID); err != nil {
			slog.Warn("failed to initialize display", "guild", guildID, "error", err)
		}
	}
	slog.Debug("initialized displays", "guilds", len(guilds))
}

// Shutdown cleans up module resources.
func (m *MusicPlayerModule) Shutdown() error {
	// Cancel context first to stop the display bootstrap
	if m.cancel != nil {
		m.cancel()
	}

	if m.manager != nil {
		m.manager.Shutdown()
	}

	// Close event bus
	if m.eventBus != nil {
		m.eventBus.Close()
	}

	// Close Lavalink connection
	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.Close()
	}

	return nil
}

// Event handlers.

func (m *MusicPlayerModule) handleVoiceServerUpdate(
	_ *discordgo.Session,
	event *discordgo.VoiceServerUpdate,
) {
	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.OnVoiceServerUpdate(event)
	}
}

func (m *MusicPlayerModule) handleVoiceStateUpdate(
	s *discordgo.Session,
	event *discordgo.VoiceStateUpdate,
) {
	if m.lavalinkAdapter != nil {
		m.lavalinkAdapter.OnVoiceStateUpdate(event)
	}
	if m.eventHandlers != nil {
		m.eventHandlers.HandleVoiceStateUpdate(s, event)
	}
}

func (m *MusicPlayerModule) handleInteractionCreate(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
) {
	if i.Type != discordgo.InteractionApplicationCommandAutocomplete {
		return
	}

	if i.ApplicationCommandData().Name == "play" {
		m.autocomplete.HandlePlay(s, i)
	}
}
