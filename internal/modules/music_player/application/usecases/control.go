package usecases

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/disgoorg/snowflake/v2"
)

// PauseOrResumeOutput contains the result of the PauseOrResume use case.
type PauseOrResumeOutput struct {
	Paused bool
}

// PauseOrResume toggles the pause state of the guild's playback.
func (m *QueueManager) PauseOrResume(ctx context.Context, guildID snowflake.ID) (*PauseOrResumeOutput, error) {
	m.mu.Lock()
	q := m.repo.Get(guildID)
	if q == nil || q.Tracks.IsEmpty() {
		m.mu.Unlock()
		return nil, ErrQueueEmpty
	}
	pause := !q.IsPaused()
	player := q.Player()
	m.mu.Unlock()

	var err error
	if pause {
		err = player.Pause(ctx)
	} else {
		err = player.Unpause(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to toggle pause: %w", err)
	}

	m.mu.Lock()
	q.SetPaused(pause)
	m.mu.Unlock()

	m.RefreshDisplay(ctx, guildID)
	return &PauseOrResumeOutput{Paused: pause}, nil
}

// Skip stops the current track. Advancing happens when the player reports the end.
func (m *QueueManager) Skip(ctx context.Context, guildID snowflake.ID) error {
	m.mu.Lock()
	q := m.repo.Get(guildID)
	if q == nil || q.Tracks.IsEmpty() {
		m.mu.Unlock()
		return ErrQueueEmpty
	}
	player := q.Player()
	m.mu.Unlock()

	if err := player.Stop(ctx); err != nil {
		return fmt.Errorf("failed to skip track: %w", err)
	}
	return nil
}

// Stop clears the queue and stops playback while staying connected.
func (m *QueueManager) Stop(ctx context.Context, guildID snowflake.ID) error {
	m.mu.Lock()
	q := m.repo.Get(guildID)
	if q == nil || q.Connection() == nil {
		m.mu.Unlock()
		return ErrNotConnected
	}
	q.Tracks.Clear()
	player := q.Player()
	m.mu.Unlock()

	if err := player.Stop(ctx); err != nil {
		return fmt.Errorf("failed to stop playback: %w", err)
	}

	m.RefreshDisplay(ctx, guildID)
	return nil
}

// Disconnect stops playback, leaves the voice channel and removes the queue.
func (m *QueueManager) Disconnect(ctx context.Context, guildID snowflake.ID) error {
	m.mu.Lock()
	q := m.repo.Get(guildID)
	if q == nil || q.Connection() == nil {
		m.mu.Unlock()
		return ErrNotConnected
	}
	q.Tracks.Clear()
	q.EndPlayback()
	player := q.Player()
	conn := q.Connection()
	msg := q.StatusMessage()
	m.detachLocked(q)
	m.mu.Unlock()

	if err := player.Stop(ctx); err != nil {
		slog.Warn("failed to stop playback", "guild", guildID, "error", err)
	}
	if err := conn.Destroy(ctx); err != nil {
		slog.Warn("failed to destroy connection", "guild", guildID, "error", err)
	}
	m.showIdleDisplay(ctx, msg)

	slog.Info("disconnected", "guild", guildID)
	return nil
}

// QueueSnapshotOutput contains the result of the QueueSnapshot use case.
type QueueSnapshotOutput struct {
	Titles []string // first titles in queue order, head first
	Total  int
}

// QueueSnapshot lists the first queued titles.
func (m *QueueManager) QueueSnapshot(guildID snowflake.ID) (*QueueSnapshotOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	q := m.repo.Get(guildID)
	if q == nil || q.Tracks.IsEmpty() {
		return nil, ErrQueueEmpty
	}
	return &QueueSnapshotOutput{
		Titles: q.Tracks.Titles(snapshotLimit),
		Total:  q.Tracks.Len(),
	}, nil
}
