package usecases

import (
	"context"
	"log/slog"

	"github.com/disgoorg/snowflake/v2"
	"github.com/floofybot/floofy/internal/modules/music_player/domain"
)

const noticeEveryoneLeft = "Looks like everyone left, so I'll leave too! *yip*"

// armIdleTimerLocked (re)schedules idle teardown for q. m.mu must be held.
func (m *QueueManager) armIdleTimerLocked(q *domain.GuildQueue) {
	guildID := q.GuildID()
	m.stopTimerLocked(m.idleTimers, guildID)
	m.idleTimers[guildID] = m.afterFunc(m.timeouts.Idle, func() {
		m.idleTeardown(q)
	})
}

// idleTeardown leaves voice if q is still registered, idle and connected.
func (m *QueueManager) idleTeardown(q *domain.GuildQueue) {
	guildID := q.GuildID()

	m.mu.Lock()
	if m.repo.Get(guildID) != q || q.IsPlaying() || q.Connection() == nil {
		m.mu.Unlock()
		return
	}
	conn := q.Connection()
	msg := q.StatusMessage()
	m.detachLocked(q)
	m.mu.Unlock()

	if err := conn.Destroy(m.ctx); err != nil {
		slog.Warn("failed to destroy connection", "guild", guildID, "error", err)
	}
	m.showIdleDisplay(m.ctx, msg)

	slog.Info("left voice channel after idle timeout", "guild", guildID)
}

// OnVoiceOccupancyChanged re-evaluates whether the bot is alone in its voice channel.
func (m *QueueManager) OnVoiceOccupancyChanged(_ context.Context, guildID snowflake.ID) {
	m.mu.Lock()
	q := m.repo.Get(guildID)
	if q == nil || !q.HasLiveConnection() {
		m.mu.Unlock()
		return
	}
	channelID := q.Connection().ChannelID()
	m.mu.Unlock()

	alone, err := m.voiceState.IsSoleOccupant(guildID, channelID)
	if err != nil {
		slog.Warn("failed to check voice occupancy", "guild", guildID, "error", err)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.repo.Get(guildID) != q {
		return
	}
	if !alone {
		m.stopTimerLocked(m.emptyTimers, guildID)
		return
	}
	if _, pending := m.emptyTimers[guildID]; pending {
		return
	}
	m.emptyTimers[guildID] = m.afterFunc(m.timeouts.EmptyChannel, func() {
		m.emptyChannelTeardown(q)
	})
}

// emptyChannelTeardown leaves voice if the bot is still alone when the timer fires.
func (m *QueueManager) emptyChannelTeardown(q *domain.GuildQueue) {
	guildID := q.GuildID()

	m.mu.Lock()
	delete(m.emptyTimers, guildID)
	if m.repo.Get(guildID) != q || !q.HasLiveConnection() {
		m.mu.Unlock()
		return
	}
	channelID := q.Connection().ChannelID()
	m.mu.Unlock()

	alone, err := m.voiceState.IsSoleOccupant(guildID, channelID)
	if err != nil {
		slog.Warn("failed to check voice occupancy", "guild", guildID, "error", err)
		return
	}
	if !alone {
		return
	}

	m.mu.Lock()
	if m.repo.Get(guildID) != q || !q.HasLiveConnection() {
		m.mu.Unlock()
		return
	}
	conn := q.Connection()
	textChannelID := q.TextChannelID()
	msg := q.StatusMessage()
	m.detachLocked(q)
	m.mu.Unlock()

	if err := conn.Destroy(m.ctx); err != nil {
		slog.Warn("failed to destroy connection", "guild", guildID, "error", err)
	}
	m.notify(textChannelID, noticeEveryoneLeft)
	m.showIdleDisplay(m.ctx, msg)

	slog.Info("left empty voice channel", "guild", guildID)
}

// OnBotVoiceStateChanged tracks the bot's own voice channel.
// A zero channelID means the bot was disconnected and the queue is removed.
func (m *QueueManager) OnBotVoiceStateChanged(ctx context.Context, guildID, channelID snowflake.ID) {
	m.mu.Lock()
	q := m.repo.Get(guildID)
	if q == nil {
		m.mu.Unlock()
		return
	}
	if channelID != 0 {
		q.SetVoiceChannelID(channelID)
		m.mu.Unlock()
		return
	}
	if q.Connection() == nil {
		m.mu.Unlock()
		return
	}
	msg := q.StatusMessage()
	m.detachLocked(q)
	m.mu.Unlock()

	m.showIdleDisplay(ctx, msg)
	slog.Info("removed queue after bot left voice", "guild", guildID)
}
