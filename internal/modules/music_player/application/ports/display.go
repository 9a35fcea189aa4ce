package ports

import (
	"context"
	"errors"

	"github.com/disgoorg/snowflake/v2"
	"github.com/floofybot/floofy/internal/modules/music_player/domain"
)

// ErrDisplayMessageMissing is returned when the display message no longer exists.
var ErrDisplayMessageMissing = errors.New("display message no longer exists")

// DisplaySender defines the interface for maintaining the persistent status display.
type DisplaySender interface {
	// Send posts a new display message and returns its ID.
	Send(ctx context.Context, channelID snowflake.ID, payload domain.DisplayPayload) (snowflake.ID, error)

	// Edit replaces the content of an existing display message.
	// Returns ErrDisplayMessageMissing if the message was deleted.
	Edit(ctx context.Context, channelID, messageID snowflake.ID, payload domain.DisplayPayload) error

	// PurgeBotMessages deletes recent messages authored by the bot in the channel.
	PurgeBotMessages(ctx context.Context, channelID snowflake.ID, limit int) error
}
