package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/disgoorg/snowflake/v2"
	"github.com/floofybot/floofy/internal/modules/music_player/application/ports"
	"github.com/floofybot/floofy/internal/modules/music_player/domain"
)

// InitDisplay posts a fresh display message in the guild's control channel.
// It does nothing if no control channel is configured.
func (m *QueueManager) InitDisplay(ctx context.Context, guildID snowflake.ID) error {
	m.displayMu.Lock()
	defer m.displayMu.Unlock()

	channelID, err := m.settings.ControlChannelID(ctx, guildID)
	if err != nil {
		return fmt.Errorf("failed to read control channel: %w", err)
	}
	if channelID == 0 {
		return nil
	}

	if err := m.display.PurgeBotMessages(ctx, channelID, purgeLimit); err != nil {
		slog.Debug("failed to purge old messages", "guild", guildID, "channel", channelID, "error", err)
	}

	q := m.GetOrCreateQueue(ctx, guildID)

	m.mu.Lock()
	payload := domain.RenderStatus(q)
	m.mu.Unlock()

	messageID, err := m.display.Send(ctx, channelID, payload)
	if err != nil {
		return fmt.Errorf("failed to send display: %w", err)
	}

	m.mu.Lock()
	q.SetStatusMessage(channelID, messageID)
	m.mu.Unlock()

	if err := m.settings.SetDisplayMessageID(ctx, guildID, messageID); err != nil {
		return fmt.Errorf("failed to save display message: %w", err)
	}
	if err := m.settings.Flush(ctx); err != nil {
		return fmt.Errorf("failed to flush settings: %w", err)
	}

	slog.Info("initialized display", "guild", guildID, "channel", channelID)
	return nil
}

// RefreshDisplay re-renders the guild's display message.
// A deleted message is recreated. Other failures are logged.
func (m *QueueManager) RefreshDisplay(ctx context.Context, guildID snowflake.ID) {
	m.mu.Lock()
	q := m.repo.Get(guildID)
	if q == nil || q.StatusMessage() == nil {
		m.mu.Unlock()
		return
	}
	msg := q.StatusMessage()
	payload := domain.RenderStatus(q)
	m.mu.Unlock()

	err := m.display.Edit(ctx, msg.ChannelID, msg.MessageID, payload)
	switch {
	case err == nil:
	case errors.Is(err, ports.ErrDisplayMessageMissing):
		slog.Info("display message missing, recreating", "guild", guildID)

		m.mu.Lock()
		if current := q.StatusMessage(); current != nil && *current == *msg {
			q.ClearStatusMessage()
		}
		m.mu.Unlock()

		if err := m.InitDisplay(ctx, guildID); err != nil {
			slog.Warn("failed to recreate display", "guild", guildID, "error", err)
		}
	default:
		slog.Warn("failed to update display", "guild", guildID, "error", err)
	}
}

// ConfigureControlChannel stores the guild's control channel and posts a display there.
func (m *QueueManager) ConfigureControlChannel(ctx context.Context, guildID, channelID snowflake.ID) error {
	if err := m.settings.SetControlChannelID(ctx, guildID, channelID); err != nil {
		return fmt.Errorf("failed to save control channel: %w", err)
	}
	if err := m.settings.Flush(ctx); err != nil {
		return fmt.Errorf("failed to flush settings: %w", err)
	}
	return m.InitDisplay(ctx, guildID)
}

// IsControlChannel reports whether channelID is the guild's control channel.
func (m *QueueManager) IsControlChannel(ctx context.Context, guildID, channelID snowflake.ID) bool {
	configured, err := m.settings.ControlChannelID(ctx, guildID)
	if err != nil {
		slog.Warn("failed to read control channel", "guild", guildID, "error", err)
		return false
	}
	return configured != 0 && configured == channelID
}
