package infrastructure

import (
	"context"
	"log/slog"
	"sync"

	"github.com/floofybot/floofy/internal/modules/music_player/application/ports"
	"github.com/floofybot/floofy/internal/modules/music_player/domain"
)

// DefaultEventBufferSize is the default buffer size for event channels.
const DefaultEventBufferSize = 100

// Compile-time checks that ChannelEventBus implements ports interfaces.
var (
	_ ports.EventPublisher  = (*ChannelEventBus)(nil)
	_ ports.EventSubscriber = (*ChannelEventBus)(nil)
)

// ChannelEventBus provides a channel-based event bus for async event handling.
// Events are dispatched one at a time in publish order.
type ChannelEventBus struct {
	playbackEnded         chan domain.PlaybackEndedEvent
	playbackEndedHandlers []func(context.Context, domain.PlaybackEndedEvent)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool
	mu     sync.RWMutex
}

// NewChannelEventBus creates a new ChannelEventBus with the given buffer size.
func NewChannelEventBus(bufferSize int) *ChannelEventBus {
	if bufferSize <= 0 {
		bufferSize = DefaultEventBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	bus := &ChannelEventBus{
		playbackEnded: make(chan domain.PlaybackEndedEvent, bufferSize),
		ctx:           ctx,
		cancel:        cancel,
	}

	bus.wg.Add(1)
	go bus.dispatchPlaybackEnded()

	return bus
}

func (b *ChannelEventBus) dispatchPlaybackEnded() {
	defer b.wg.Done()
	for {
		select {
		case <-b.ctx.Done():
			return
		case event, ok := <-b.playbackEnded:
			if !ok {
				return
			}
			b.mu.RLock()
			handlers := b.playbackEndedHandlers
			b.mu.RUnlock()
			for _, handler := range handlers {
				handler(b.ctx, event)
			}
		}
	}
}

// PublishPlaybackEnded publishes a PlaybackEndedEvent.
// Non-blocking: if the channel buffer is full, the event is dropped with a warning.
func (b *ChannelEventBus) PublishPlaybackEnded(event domain.PlaybackEndedEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		slog.Warn("attempted to publish to closed event bus", "type", "PlaybackEnded")
		return
	}

	select {
	case b.playbackEnded <- event:
		slog.Debug("published event", "type", "PlaybackEnded", "guild", event.GuildID)
	default:
		slog.Warn("event buffer full, dropping event", "type", "PlaybackEnded", "guild", event.GuildID)
	}
}

// OnPlaybackEnded registers a handler for PlaybackEndedEvent.
func (b *ChannelEventBus) OnPlaybackEnded(handler func(context.Context, domain.PlaybackEndedEvent)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.playbackEndedHandlers = append(b.playbackEndedHandlers, handler)
}

// Close closes the event channel and stops the dispatcher.
// After calling Close, publishing will no longer send events.
func (b *ChannelEventBus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.mu.Unlock()

	b.cancel()
	close(b.playbackEnded)
	b.wg.Wait()

	slog.Debug("channel event bus closed")
}
