package ports

import "github.com/floofybot/floofy/internal/modules/music_player/domain"

// EventPublisher defines the interface for publishing events asynchronously.
type EventPublisher interface {
	PublishPlaybackEnded(event domain.PlaybackEndedEvent)
}
