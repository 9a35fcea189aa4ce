package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/floofybot/floofy/internal/bot"
	"github.com/floofybot/floofy/internal/modules/music_player/application/ports"
	"github.com/floofybot/floofy/internal/modules/music_player/application/usecases"
	"github.com/mattn/go-runewidth"
)

// Embed colors.
const (
	colorSuccess = 0x08c404
	colorQueue   = 0xADD8E6
)

const queueTitleWidth = 80

// User-facing replies.
const (
	msgGuildOnly         = "Sorry, I can't run commands in DMs yet!"
	msgNoVoiceChannel    = "You need to be in a voice channel to play music!"
	msgJoinFailed        = "Could not join your voice channel!"
	msgNotConnected      = "I'm not in a voice channel!"
	msgNothingToPause    = "There is nothing to pause or resume!"
	msgNothingToSkip     = "There are no songs to skip!"
	msgQueueEmpty        = "The queue is currently empty!"
	msgPaused            = "⏸️ Paused!"
	msgResumed           = "▶️ Resumed!"
	msgSkipped           = "⏭️ Skipped!"
	msgStopped           = "⏹️ Stopped the music and cleared the queue!"
	msgDisconnected      = "👋 Disconnected!"
	msgManageGuildNeeded = "Sorry, only members who can manage the server can set my music channel!"
)

// MusicService is the queue manager as seen by the Discord handlers.
type MusicService interface {
	Enqueue(ctx context.Context, input usecases.EnqueueInput) (*usecases.EnqueueOutput, error)
	PauseOrResume(ctx context.Context, guildID snowflake.ID) (*usecases.PauseOrResumeOutput, error)
	Skip(ctx context.Context, guildID snowflake.ID) error
	Stop(ctx context.Context, guildID snowflake.ID) error
	Disconnect(ctx context.Context, guildID snowflake.ID) error
	QueueSnapshot(guildID snowflake.ID) (*usecases.QueueSnapshotOutput, error)
	ConfigureControlChannel(ctx context.Context, guildID, channelID snowflake.ID) error
	IsControlChannel(ctx context.Context, guildID, channelID snowflake.ID) bool
	OnVoiceOccupancyChanged(ctx context.Context, guildID snowflake.ID)
	OnBotVoiceStateChanged(ctx context.Context, guildID, channelID snowflake.ID)
}

// Compile-time interface check.
var _ MusicService = (*usecases.QueueManager)(nil)

// CommandHandlers holds the slash command and button handlers.
type CommandHandlers struct {
	music      MusicService
	voiceState ports.VoiceStateProvider
}

// NewCommandHandlers creates new CommandHandlers.
func NewCommandHandlers(music MusicService, voiceState ports.VoiceStateProvider) *CommandHandlers {
	return &CommandHandlers{
		music:      music,
		voiceState: voiceState,
	}
}

// HandlePlay handles the /play command.
func (h *CommandHandlers) HandlePlay(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	ctx := context.Background()

	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil || i.Member == nil {
		return respondEphemeral(r, msgGuildOnly)
	}

	userID, err := snowflake.Parse(i.Member.User.ID)
	if err != nil {
		return respondEphemeral(r, "Invalid user")
	}

	textChannelID, err := snowflake.Parse(i.ChannelID)
	if err != nil {
		return respondEphemeral(r, "Invalid channel")
	}

	var query string
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "query" {
			query = strings.TrimSpace(opt.StringValue())
		}
	}

	voiceChannelID, err := h.voiceState.GetUserVoiceChannel(guildID, userID)
	if err != nil {
		slog.Warn("failed to look up voice channel", "guild", guildID, "user", userID, "error", err)
	}
	if voiceChannelID == 0 {
		return respondEphemeral(r, msgNoVoiceChannel)
	}

	// Resolution can outlive the interaction's initial response window.
	if err := r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
	}); err != nil {
		return err
	}

	output, err := h.music.Enqueue(ctx, usecases.EnqueueInput{
		GuildID:        guildID,
		Query:          query,
		RequestedBy:    requesterName(i.Member, i.Member.User),
		TextChannelID:  textChannelID,
		VoiceChannelID: voiceChannelID,
	})

	content := enqueueReply(output, err, query)
	return r.Edit(&discordgo.WebhookEdit{Content: &content})
}

// HandlePauseResume handles the /pause command and the pause/resume button.
func (h *CommandHandlers) HandlePauseResume(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondEphemeral(r, msgGuildOnly)
	}

	output, err := h.music.PauseOrResume(context.Background(), guildID)
	if errors.Is(err, usecases.ErrQueueEmpty) {
		return respondEphemeral(r, msgNothingToPause)
	}
	if err != nil {
		return err
	}

	if output.Paused {
		return respondEphemeral(r, msgPaused)
	}
	return respondEphemeral(r, msgResumed)
}

// HandleSkip handles the /skip command and the skip button.
func (h *CommandHandlers) HandleSkip(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondEphemeral(r, msgGuildOnly)
	}

	err = h.music.Skip(context.Background(), guildID)
	if errors.Is(err, usecases.ErrQueueEmpty) {
		return respondEphemeral(r, msgNothingToSkip)
	}
	if err != nil {
		return err
	}

	return respondEphemeral(r, msgSkipped)
}

// HandleStop handles the /stop command and the stop button.
func (h *CommandHandlers) HandleStop(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondEphemeral(r, msgGuildOnly)
	}

	err = h.music.Stop(context.Background(), guildID)
	if errors.Is(err, usecases.ErrNotConnected) {
		return respondEphemeral(r, msgNotConnected)
	}
	if err != nil {
		return err
	}

	return respondEphemeral(r, msgStopped)
}

// HandleDisconnect handles the /disconnect command.
func (h *CommandHandlers) HandleDisconnect(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondEphemeral(r, msgGuildOnly)
	}

	err = h.music.Disconnect(context.Background(), guildID)
	if errors.Is(err, usecases.ErrNotConnected) {
		return respondEphemeral(r, msgNotConnected)
	}
	if err != nil {
		return err
	}

	return respondEphemeral(r, msgDisconnected)
}

// HandleQueue handles the /queue command and the queue button.
func (h *CommandHandlers) HandleQueue(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil {
		return respondEphemeral(r, msgGuildOnly)
	}

	output, err := h.music.QueueSnapshot(guildID)
	if errors.Is(err, usecases.ErrQueueEmpty) {
		return respondEphemeral(r, msgQueueEmpty)
	}
	if err != nil {
		return err
	}

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Title:       "Current Music Queue",
					Description: formatQueue(output),
					Color:       colorQueue,
				},
			},
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
}

// HandleMusicChannel handles the /musicchannel command.
func (h *CommandHandlers) HandleMusicChannel(
	_ *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	guildID, err := snowflake.Parse(i.GuildID)
	if err != nil || i.Member == nil {
		return respondEphemeral(r, msgGuildOnly)
	}
	if i.Member.Permissions&discordgo.PermissionManageGuild == 0 {
		return respondEphemeral(r, msgManageGuildNeeded)
	}

	var channelID snowflake.ID
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name != "channel" {
			continue
		}
		raw, _ := opt.Value.(string)
		channelID, err = snowflake.Parse(raw)
		if err != nil {
			return respondEphemeral(r, "Invalid channel")
		}
	}
	if channelID == 0 {
		return respondEphemeral(r, "Invalid channel")
	}

	if err := h.music.ConfigureControlChannel(context.Background(), guildID, channelID); err != nil {
		return err
	}

	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Description: fmt.Sprintf("Okay! The music controls now live in <#%d>.", channelID),
					Color:       colorSuccess,
				},
			},
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
}

// enqueueReply turns an enqueue result into the text shown to the requester.
func enqueueReply(output *usecases.EnqueueOutput, err error, query string) string {
	switch {
	case errors.Is(err, usecases.ErrNoVoiceChannel):
		return msgNoVoiceChannel
	case errors.Is(err, usecases.ErrVoiceJoinFailed):
		return msgJoinFailed
	case errors.Is(err, usecases.ErrNoResults):
		return fmt.Sprintf("Sorry, I couldn't find any results for \"%s\"", query)
	case errors.Is(err, usecases.ErrNoPlayableTracks):
		return fmt.Sprintf("I found results for \"%s\", but couldn't queue any valid songs.", query)
	case errors.Is(err, usecases.ErrLoadFailed):
		return fmt.Sprintf("Sorry, I couldn't load \"%s\" right now.", query)
	case err != nil:
		slog.Error("failed to enqueue", "query", query, "error", err)
		return "Sorry, something went wrong while adding that to the queue."
	}

	if output.IsPlaylist {
		return fmt.Sprintf("🎵 Added **%d** songs from the playlist **%s** to the queue!",
			len(output.Tracks), output.PlaylistName)
	}
	return fmt.Sprintf("🎵 Added **%s** to the queue!", output.Tracks[0].Title)
}

// formatQueue renders queue titles as a numbered list.
// Escapes period to prevent Discord markdown list formatting.
func formatQueue(output *usecases.QueueSnapshotOutput) string {
	var sb strings.Builder
	for idx, title := range output.Titles {
		fmt.Fprintf(&sb, "%d\\. **%s**\n", idx+1, runewidth.Truncate(title, queueTitleWidth, "…"))
	}
	if remaining := output.Total - len(output.Titles); remaining > 0 {
		fmt.Fprintf(&sb, "...and %d more", remaining)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// requesterName prefers the member's server nickname, then the global display name.
func requesterName(member *discordgo.Member, user *discordgo.User) string {
	if member != nil && member.Nick != "" {
		return member.Nick
	}
	if user == nil {
		return ""
	}
	if user.GlobalName != "" {
		return user.GlobalName
	}
	return user.Username
}

func respondEphemeral(r bot.Responder, content string) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}
