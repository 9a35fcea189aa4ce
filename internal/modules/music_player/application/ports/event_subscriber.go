package ports

import (
	"context"

	"github.com/floofybot/floofy/internal/modules/music_player/domain"
)

// EventSubscriber defines the interface for subscribing to events.
// Handlers are registered with the subscriber and invoked when events occur.
type EventSubscriber interface {
	// OnPlaybackEnded registers a handler for PlaybackEndedEvent.
	// Events are delivered one at a time in publish order.
	OnPlaybackEnded(handler func(context.Context, domain.PlaybackEndedEvent))
}
