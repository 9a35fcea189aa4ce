package usecases

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/floofybot/floofy/internal/modules/music_player/application/ports"
	"github.com/floofybot/floofy/internal/modules/music_player/domain"
)

const (
	// DefaultIdleTimeout is how long an idle queue keeps its voice connection.
	DefaultIdleTimeout = 5 * time.Minute
	// DefaultEmptyChannelTimeout is how long the bot stays alone in a voice channel.
	DefaultEmptyChannelTimeout = time.Minute

	snapshotLimit = 10
	purgeLimit    = 10
	searchLimit   = 1
)

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// AfterFunc schedules f to run once after d.
type AfterFunc func(d time.Duration, f func()) Timer

func systemAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Timeouts configures the teardown delays.
type Timeouts struct {
	Idle         time.Duration
	EmptyChannel time.Duration
}

// QueueManager owns every guild queue and drives playback, display and teardown.
// All queue state is read and written while holding mu.
type QueueManager struct {
	mu sync.Mutex
	// serializes display creation so a guild never gets two display messages
	displayMu sync.Mutex

	repo       domain.QueueRepository
	resolver   ports.TrackResolver
	transport  ports.VoiceTransport
	display    ports.DisplaySender
	notifier   ports.NotificationSender
	settings   ports.SettingsStore
	voiceState ports.VoiceStateProvider

	timeouts    Timeouts
	afterFunc   AfterFunc
	idleTimers  map[snowflake.ID]Timer
	emptyTimers map[snowflake.ID]Timer

	ctx    context.Context
	cancel context.CancelFunc
}

// NewQueueManager creates a new QueueManager.
func NewQueueManager(
	repo domain.QueueRepository,
	resolver ports.TrackResolver,
	transport ports.VoiceTransport,
	display ports.DisplaySender,
	notifier ports.NotificationSender,
	settings ports.SettingsStore,
	voiceState ports.VoiceStateProvider,
	timeouts Timeouts,
) *QueueManager {
	if timeouts.Idle <= 0 {
		timeouts.Idle = DefaultIdleTimeout
	}
	if timeouts.EmptyChannel <= 0 {
		timeouts.EmptyChannel = DefaultEmptyChannelTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &QueueManager{
		repo:        repo,
		resolver:    resolver,
		transport:   transport,
		display:     display,
		notifier:    notifier,
		settings:    settings,
		voiceState:  voiceState,
		timeouts:    timeouts,
		afterFunc:   systemAfterFunc,
		idleTimers:  make(map[snowflake.ID]Timer),
		emptyTimers: make(map[snowflake.ID]Timer),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// SetAfterFunc replaces the timer scheduler. It must be called before Start.
func (m *QueueManager) SetAfterFunc(f AfterFunc) {
	m.afterFunc = f
}

// Start registers the manager for playback end notifications.
func (m *QueueManager) Start(subscriber ports.EventSubscriber) {
	subscriber.OnPlaybackEnded(m.HandlePlaybackEnded)
}

// Shutdown cancels every pending teardown timer.
func (m *QueueManager) Shutdown() {
	m.mu.Lock()
	for guildID := range m.idleTimers {
		m.stopTimerLocked(m.idleTimers, guildID)
	}
	for guildID := range m.emptyTimers {
		m.stopTimerLocked(m.emptyTimers, guildID)
	}
	m.mu.Unlock()

	m.cancel()
}

// GetOrCreateQueue returns the guild's queue, creating an empty one if none exists.
func (m *QueueManager) GetOrCreateQueue(ctx context.Context, guildID snowflake.ID) *domain.GuildQueue {
	if q := m.repo.Get(guildID); q != nil {
		return q
	}

	q := domain.NewGuildQueue(guildID, m.transport.NewPlayer(guildID))
	m.restoreStatusMessage(ctx, q)

	stored, created := m.repo.Create(q)
	if created {
		slog.Debug("created queue", "guild", guildID)
	}
	return stored
}

// restoreStatusMessage loads the persisted display message into a queue that is not yet shared.
func (m *QueueManager) restoreStatusMessage(ctx context.Context, q *domain.GuildQueue) {
	channelID, err := m.settings.ControlChannelID(ctx, q.GuildID())
	if err != nil {
		slog.Warn("failed to read control channel", "guild", q.GuildID(), "error", err)
		return
	}
	messageID, err := m.settings.DisplayMessageID(ctx, q.GuildID())
	if err != nil {
		slog.Warn("failed to read display message", "guild", q.GuildID(), "error", err)
		return
	}
	if channelID != 0 && messageID != 0 {
		q.SetStatusMessage(channelID, messageID)
	}
}

// detachLocked removes q from the queue table and cancels its timers.
// Returns false if q was no longer the guild's queue. m.mu must be held.
func (m *QueueManager) detachLocked(q *domain.GuildQueue) bool {
	if !m.repo.Delete(q) {
		return false
	}
	m.stopTimerLocked(m.idleTimers, q.GuildID())
	m.stopTimerLocked(m.emptyTimers, q.GuildID())
	return true
}

// stopTimerLocked cancels and forgets the guild's timer in timers. m.mu must be held.
func (m *QueueManager) stopTimerLocked(timers map[snowflake.ID]Timer, guildID snowflake.ID) {
	if timer, ok := timers[guildID]; ok {
		timer.Stop()
		delete(timers, guildID)
	}
}

// showIdleDisplay resets a detached queue's display message to the idle view.
func (m *QueueManager) showIdleDisplay(ctx context.Context, msg *domain.StatusMessage) {
	if msg == nil {
		return
	}

	err := m.display.Edit(ctx, msg.ChannelID, msg.MessageID, domain.RenderStatus(nil))
	switch {
	case err == nil:
	case errors.Is(err, ports.ErrDisplayMessageMissing):
		slog.Debug("display message missing while resetting", "channel", msg.ChannelID)
	default:
		slog.Warn("failed to reset display", "channel", msg.ChannelID, "error", err)
	}
}

// notify sends a best-effort notice to the channel.
func (m *QueueManager) notify(channelID snowflake.ID, message string) {
	if channelID == 0 {
		return
	}
	if err := m.notifier.SendNotice(channelID, message); err != nil {
		slog.Warn("failed to send notice", "channel", channelID, "error", err)
	}
}
