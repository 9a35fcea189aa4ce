package domain

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
)

// StreamHandle is a playable audio resource obtained for a track at play time.
type StreamHandle struct {
	ID        string // transport-specific resource identifier
	MediaType string
}

// Player controls audio playback for a single guild.
type Player interface {
	// Play starts streaming the given resource unpaused, replacing anything currently playing.
	Play(ctx context.Context, stream StreamHandle) error

	// Pause pauses the current playback.
	Pause(ctx context.Context) error

	// Unpause resumes the paused playback.
	Unpause(ctx context.Context) error

	// Stop stops the current resource. The transport reports the end asynchronously.
	Stop(ctx context.Context) error
}

// Connection is a live voice session for a guild.
type Connection interface {
	// ChannelID returns the voice channel the connection is attached to.
	ChannelID() snowflake.ID

	// Destroyed returns true once the connection has been torn down by either side.
	Destroyed() bool

	// Subscribe routes the player's audio into this connection.
	Subscribe(player Player) error

	// Destroy leaves the voice channel and releases the session.
	Destroy(ctx context.Context) error
}
