package usecases

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/disgoorg/snowflake/v2"
	"github.com/floofybot/floofy/internal/modules/music_player/application/ports"
	"github.com/floofybot/floofy/internal/modules/music_player/domain"
)

// EnqueueInput contains the input for the Enqueue use case.
type EnqueueInput struct {
	GuildID        snowflake.ID
	Query          string
	RequestedBy    string
	TextChannelID  snowflake.ID
	VoiceChannelID snowflake.ID // zero if the user is not in a voice channel
}

// EnqueueOutput contains the result of the Enqueue use case.
type EnqueueOutput struct {
	Tracks       []*domain.Track
	IsPlaylist   bool
	PlaylistName string
}

// Enqueue resolves a query, appends the resulting tracks and starts playback if idle.
func (m *QueueManager) Enqueue(ctx context.Context, input EnqueueInput) (*EnqueueOutput, error) {
	if input.VoiceChannelID == 0 {
		return nil, ErrNoVoiceChannel
	}

	q := m.GetOrCreateQueue(ctx, input.GuildID)
	if err := m.ensureConnection(ctx, q, input.TextChannelID, input.VoiceChannelID); err != nil {
		return nil, err
	}

	tracks, playlist, err := m.resolve(ctx, input.Query, input.RequestedBy)
	if err != nil {
		m.mu.Lock()
		if m.repo.Get(q.GuildID()) == q && !q.IsPlaying() && q.Tracks.IsEmpty() {
			m.armIdleTimerLocked(q)
		}
		m.mu.Unlock()
		return nil, err
	}

	m.mu.Lock()
	if m.repo.Get(q.GuildID()) != q {
		m.mu.Unlock()
		return nil, ErrNotConnected
	}
	q.Tracks.Append(tracks...)
	wasPlaying := q.IsPlaying()
	m.stopTimerLocked(m.idleTimers, q.GuildID())
	m.mu.Unlock()

	slog.Info("enqueued tracks", "guild", input.GuildID, "count", len(tracks))

	if wasPlaying {
		m.RefreshDisplay(ctx, input.GuildID)
	} else {
		m.advance(ctx, q)
	}

	output := &EnqueueOutput{Tracks: tracks}
	if playlist != nil {
		output.IsPlaylist = true
		output.PlaylistName = playlist.Name
	}
	return output, nil
}

// ensureConnection records the request channels and joins voice if the queue has no live connection.
// On failure the queue is removed.
func (m *QueueManager) ensureConnection(
	ctx context.Context,
	q *domain.GuildQueue,
	textChannelID, voiceChannelID snowflake.ID,
) error {
	m.mu.Lock()
	if textChannelID != 0 {
		q.SetTextChannelID(textChannelID)
	}
	q.SetVoiceChannelID(voiceChannelID)
	live := q.HasLiveConnection()
	m.mu.Unlock()

	if live {
		return nil
	}

	conn, err := m.transport.Join(ctx, q.GuildID(), voiceChannelID)
	if err == nil {
		if err = conn.Subscribe(q.Player()); err != nil {
			if destroyErr := conn.Destroy(ctx); destroyErr != nil {
				slog.Warn("failed to destroy connection", "guild", q.GuildID(), "error", destroyErr)
			}
		}
	}
	if err != nil {
		slog.Warn("failed to join voice channel",
			"guild", q.GuildID(), "channel", voiceChannelID, "error", err)
		m.mu.Lock()
		m.detachLocked(q)
		m.mu.Unlock()
		return fmt.Errorf("%w: %w", ErrVoiceJoinFailed, err)
	}

	m.mu.Lock()
	q.SetConnection(conn)
	m.mu.Unlock()

	slog.Info("joined voice channel", "guild", q.GuildID(), "channel", voiceChannelID)
	return nil
}

// resolve turns a query into playable tracks. Entries without a locator are dropped.
func (m *QueueManager) resolve(
	ctx context.Context,
	query, requestedBy string,
) ([]*domain.Track, *ports.PlaylistDescriptor, error) {
	results, err := m.resolver.Search(ctx, query, searchLimit)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}
	if len(results) == 0 {
		return nil, nil, ErrNoResults
	}

	first := results[0]
	var candidates []ports.TrackDescriptor
	switch {
	case first.Playlist != nil:
		members, err := m.resolver.ListMembers(ctx, first.Playlist)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
		}
		candidates = members
	case first.Track != nil:
		candidates = []ports.TrackDescriptor{*first.Track}
	}

	tracks := make([]*domain.Track, 0, len(candidates))
	for _, c := range candidates {
		track := domain.NewTrack(c.Title, c.URL, c.Duration, c.Thumbnail, requestedBy)
		if !track.IsPlayable() {
			continue
		}
		tracks = append(tracks, track)
	}
	if len(tracks) == 0 {
		return nil, first.Playlist, ErrNoPlayableTracks
	}
	return tracks, first.Playlist, nil
}
