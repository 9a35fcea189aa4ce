package ports

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
	"github.com/floofybot/floofy/internal/modules/music_player/domain"
)

// VoiceTransport defines the interface for voice connections and audio players.
type VoiceTransport interface {
	// Join connects to a voice channel and returns the live connection.
	Join(ctx context.Context, guildID, channelID snowflake.ID) (domain.Connection, error)

	// NewPlayer creates the audio player for a guild.
	NewPlayer(guildID snowflake.ID) domain.Player
}
