package ports

import (
	"context"

	"github.com/disgoorg/snowflake/v2"
)

// SettingsStore defines the persistent per-guild settings used by the music player.
// Missing values read as zero IDs.
type SettingsStore interface {
	ControlChannelID(ctx context.Context, guildID snowflake.ID) (snowflake.ID, error)
	SetControlChannelID(ctx context.Context, guildID, channelID snowflake.ID) error
	DisplayMessageID(ctx context.Context, guildID snowflake.ID) (snowflake.ID, error)
	SetDisplayMessageID(ctx context.Context, guildID, messageID snowflake.ID) error

	// Flush makes previous writes durable.
	Flush(ctx context.Context) error
}
