package discord

import (
	"context"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/floofybot/floofy/internal/modules/music_player/application/ports"
	"github.com/floofybot/floofy/internal/modules/music_player/application/usecases"
)

// LinkDetector reports whether a message is a link the player can queue.
type LinkDetector interface {
	IsPlayableLink(text string) bool
}

// MessageReplier sends replies to channel messages.
type MessageReplier interface {
	ChannelMessageSendReply(
		channelID string,
		content string,
		reference *discordgo.MessageReference,
		options ...discordgo.RequestOption,
	) (*discordgo.Message, error)
}

// Compile-time interface check.
var _ MessageReplier = (*discordgo.Session)(nil)

// EventHandlers handles Discord gateway events for the music player.
type EventHandlers struct {
	botID      snowflake.ID
	music      MusicService
	voiceState ports.VoiceStateProvider
	links      LinkDetector
}

// NewEventHandlers creates a new EventHandlers.
func NewEventHandlers(
	botID snowflake.ID,
	music MusicService,
	voiceState ports.VoiceStateProvider,
	links LinkDetector,
) *EventHandlers {
	return &EventHandlers{
		botID:      botID,
		music:      music,
		voiceState: voiceState,
		links:      links,
	}
}

// HandleVoiceStateUpdate tracks the bot's own voice channel and channel occupancy.
func (h *EventHandlers) HandleVoiceStateUpdate(
	_ *discordgo.Session,
	event *discordgo.VoiceStateUpdate,
) {
	if event.VoiceState == nil {
		return
	}

	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice state update", "error", err)
		return
	}

	ctx := context.Background()

	if event.UserID == h.botID.String() {
		// Empty channel means disconnected
		var channelID snowflake.ID
		if event.ChannelID != "" {
			channelID, err = snowflake.Parse(event.ChannelID)
			if err != nil {
				slog.Error("failed to parse channel ID in voice state update", "error", err)
				return
			}
		}
		h.music.OnBotVoiceStateChanged(ctx, guildID, channelID)
	}

	h.music.OnVoiceOccupancyChanged(ctx, guildID)
}

// HandleMessageCreate queues links pasted into the guild's control channel.
func (h *EventHandlers) HandleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	h.handleMessage(s, m)
}

func (h *EventHandlers) handleMessage(replier MessageReplier, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	content := strings.TrimSpace(m.Content)
	if !h.links.IsPlayableLink(content) {
		return
	}

	guildID, err := snowflake.Parse(m.GuildID)
	if err != nil {
		return
	}
	channelID, err := snowflake.Parse(m.ChannelID)
	if err != nil {
		return
	}

	ctx := context.Background()
	if !h.music.IsControlChannel(ctx, guildID, channelID) {
		return
	}

	userID, err := snowflake.Parse(m.Author.ID)
	if err != nil {
		return
	}

	voiceChannelID, err := h.voiceState.GetUserVoiceChannel(guildID, userID)
	if err != nil {
		slog.Warn("failed to look up voice channel", "guild", guildID, "user", userID, "error", err)
	}

	var reply string
	if voiceChannelID == 0 {
		reply = msgNoVoiceChannel
	} else {
		output, err := h.music.Enqueue(ctx, usecases.EnqueueInput{
			GuildID:        guildID,
			Query:          content,
			RequestedBy:    requesterName(m.Member, m.Author),
			TextChannelID:  channelID,
			VoiceChannelID: voiceChannelID,
		})
		reply = enqueueReply(output, err, content)
	}

	if _, err := replier.ChannelMessageSendReply(m.ChannelID, reply, m.Reference()); err != nil {
		slog.Warn("failed to reply to message", "guild", guildID, "error", err)
	}
}
