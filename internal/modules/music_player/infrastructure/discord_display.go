package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/floofybot/floofy/internal/modules/music_player/application/ports"
	"github.com/floofybot/floofy/internal/modules/music_player/domain"
	"golang.org/x/time/rate"
)

// DiscordDisplay maintains display messages through the Discord REST API.
// Writes are rate limited per channel.
type DiscordDisplay struct {
	session *discordgo.Session

	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[snowflake.ID]*rate.Limiter
}

// NewDiscordDisplay creates a new DiscordDisplay allowing editsPerSecond writes per channel.
func NewDiscordDisplay(session *discordgo.Session, editsPerSecond float64, burst int) *DiscordDisplay {
	if burst < 1 {
		burst = 1
	}
	return &DiscordDisplay{
		session:  session,
		limit:    rate.Limit(editsPerSecond),
		burst:    burst,
		limiters: make(map[snowflake.ID]*rate.Limiter),
	}
}

// Send posts a new display message and returns its ID.
func (d *DiscordDisplay) Send(
	ctx context.Context,
	channelID snowflake.ID,
	payload domain.DisplayPayload,
) (snowflake.ID, error) {
	if err := d.wait(ctx, channelID); err != nil {
		return 0, err
	}

	embed, components := toMessageParts(payload)
	msg, err := d.session.ChannelMessageSendComplex(channelID.String(), &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: components,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return 0, fmt.Errorf("failed to send display message: %w", err)
	}

	messageID, err := snowflake.Parse(msg.ID)
	if err != nil {
		return 0, err
	}
	return messageID, nil
}

// Edit replaces the content of an existing display message.
func (d *DiscordDisplay) Edit(
	ctx context.Context,
	channelID, messageID snowflake.ID,
	payload domain.DisplayPayload,
) error {
	if err := d.wait(ctx, channelID); err != nil {
		return err
	}

	embed, components := toMessageParts(payload)
	embeds := []*discordgo.MessageEmbed{embed}
	_, err := d.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:         messageID.String(),
		Channel:    channelID.String(),
		Embeds:     &embeds,
		Components: &components,
	}, discordgo.WithContext(ctx))
	if err != nil {
		if isUnknownMessage(err) {
			return ports.ErrDisplayMessageMissing
		}
		return fmt.Errorf("failed to edit display message: %w", err)
	}
	return nil
}

// PurgeBotMessages deletes the bot's messages among the latest limit messages of the channel.
func (d *DiscordDisplay) PurgeBotMessages(ctx context.Context, channelID snowflake.ID, limit int) error {
	messages, err := d.session.ChannelMessages(channelID.String(), limit, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to fetch messages: %w", err)
	}

	botID := d.session.State.User.ID
	for _, msg := range messages {
		if msg.Author == nil || msg.Author.ID != botID {
			continue
		}
		if err := d.session.ChannelMessageDelete(channelID.String(), msg.ID, discordgo.WithContext(ctx)); err != nil {
			slog.Debug("failed to delete message", "channel", channelID, "message", msg.ID, "error", err)
		}
	}
	return nil
}

func (d *DiscordDisplay) wait(ctx context.Context, channelID snowflake.ID) error {
	d.mu.Lock()
	limiter, ok := d.limiters[channelID]
	if !ok {
		limiter = rate.NewLimiter(d.limit, d.burst)
		d.limiters[channelID] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}

// isUnknownMessage reports whether err is Discord's response for a deleted message.
func isUnknownMessage(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}
	if restErr.Message != nil && restErr.Message.Code == discordgo.ErrCodeUnknownMessage {
		return true
	}
	return restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
}

// toMessageParts converts a display payload into a Discord embed and button row.
func toMessageParts(payload domain.DisplayPayload) (*discordgo.MessageEmbed, []discordgo.MessageComponent) {
	embed := &discordgo.MessageEmbed{
		Title:       payload.Title,
		Description: payload.Description,
		Color:       colorDisplay,
	}
	if payload.ImageURL != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: payload.ImageURL}
	}
	if payload.ThumbnailURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: payload.ThumbnailURL}
	}
	for _, field := range payload.Fields {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   field.Name,
			Value:  field.Value,
			Inline: true,
		})
	}
	if payload.Footer != "" {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: payload.Footer}
	}

	if len(payload.Controls) == 0 {
		return embed, []discordgo.MessageComponent{}
	}

	buttons := make([]discordgo.MessageComponent, len(payload.Controls))
	for i, control := range payload.Controls {
		buttons[i] = discordgo.Button{
			Label:    control.Label,
			Style:    buttonStyle(control.Style),
			CustomID: control.ID,
		}
	}
	return embed, []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: buttons},
	}
}

func buttonStyle(style domain.ControlStyle) discordgo.ButtonStyle {
	switch style {
	case domain.ControlStylePrimary:
		return discordgo.PrimaryButton
	case domain.ControlStyleDanger:
		return discordgo.DangerButton
	default:
		return discordgo.SecondaryButton
	}
}

// Ensure DiscordDisplay implements ports.DisplaySender.
var _ ports.DisplaySender = (*DiscordDisplay)(nil)
