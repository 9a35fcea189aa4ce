package usecases

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/floofybot/floofy/internal/modules/music_player/domain"
)

const (
	noticeBrokenTrack = "Skipping a broken or invalid track."
	noticePlayFailed  = "Error playing **%s**. Skipping..."
)

// advance starts the head track of q, skipping tracks that cannot be played.
// Every failed attempt drops its head, so the loop ends once the queue drains.
func (m *QueueManager) advance(ctx context.Context, q *domain.GuildQueue) {
	guildID := q.GuildID()

	for {
		m.mu.Lock()
		if m.repo.Get(guildID) != q {
			m.mu.Unlock()
			return
		}

		head := q.Tracks.Head()
		if head == nil {
			q.EndPlayback()
			m.armIdleTimerLocked(q)
			m.mu.Unlock()

			m.RefreshDisplay(ctx, guildID)
			return
		}

		q.BeginPlayback(head)
		m.stopTimerLocked(m.idleTimers, guildID)
		textChannelID := q.TextChannelID()
		player := q.Player()
		m.mu.Unlock()

		if !head.IsPlayable() {
			slog.Warn("skipping track without a locator", "guild", guildID, "title", head.Title)
			m.notify(textChannelID, noticeBrokenTrack)
		} else {
			stream, err := m.startTrack(ctx, player, head)
			if err == nil {
				m.mu.Lock()
				if q.Current() == head {
					q.SetCurrentStream(stream.ID)
				}
				m.mu.Unlock()

				slog.Info("started track", "guild", guildID, "title", head.Title)
				m.RefreshDisplay(ctx, guildID)
				return
			}
			slog.Warn("failed to play track", "guild", guildID, "title", head.Title, "error", err)
			m.notify(textChannelID, fmt.Sprintf(noticePlayFailed, head.Title))
		}

		m.mu.Lock()
		q.DropHead(head)
		m.mu.Unlock()
	}
}

// startTrack opens a stream for the track and hands it to the player.
func (m *QueueManager) startTrack(
	ctx context.Context,
	player domain.Player,
	track *domain.Track,
) (domain.StreamHandle, error) {
	stream, err := m.resolver.OpenStream(ctx, track.URL)
	if err != nil {
		return stream, fmt.Errorf("%w: %w", ErrTrackUnplayable, err)
	}
	if err := player.Play(ctx, stream); err != nil {
		return stream, fmt.Errorf("%w: %w", ErrTrackUnplayable, err)
	}
	return stream, nil
}

// HandlePlaybackEnded reacts to the end of a playback attempt.
// Events that do not belong to the queue's current attempt are ignored.
func (m *QueueManager) HandlePlaybackEnded(ctx context.Context, event domain.PlaybackEndedEvent) {
	m.mu.Lock()
	q := m.repo.Get(event.GuildID)
	if q == nil || !q.IsPlaying() {
		m.mu.Unlock()
		slog.Debug("ignoring playback end for idle guild", "guild", event.GuildID)
		return
	}
	if event.StreamID != "" && q.CurrentStream() != "" && event.StreamID != q.CurrentStream() {
		m.mu.Unlock()
		slog.Debug("ignoring playback end for stale stream", "guild", event.GuildID)
		return
	}

	current := q.Current()
	textChannelID := q.TextChannelID()
	if event.Failed || !q.IsLooping() {
		q.DropHead(current)
	}
	m.mu.Unlock()

	if event.Failed && current != nil {
		slog.Warn("playback failed", "guild", event.GuildID, "title", current.Title)
		m.notify(textChannelID, fmt.Sprintf(noticePlayFailed, current.Title))
	}

	m.advance(ctx, q)
}
