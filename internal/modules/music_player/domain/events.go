package domain

import (
	"github.com/disgoorg/snowflake/v2"
)

// PlaybackEndedEvent is published once per playback attempt when the transport
// stops streaming a resource.
type PlaybackEndedEvent struct {
	GuildID  snowflake.ID
	StreamID string // resource that ended; empty if unknown
	Failed   bool   // true if the resource could not be streamed to completion
}
