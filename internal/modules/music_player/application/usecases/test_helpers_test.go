package usecases

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/floofybot/floofy/internal/modules/music_player/application/ports"
	"github.com/floofybot/floofy/internal/modules/music_player/domain"
)

const (
	testGuildID        = snowflake.ID(1)
	testTextChannelID  = snowflake.ID(10)
	testVoiceChannelID = snowflake.ID(20)
	testControlChannel = snowflake.ID(30)
)

var errMock = errors.New("mock error")

func trackDescriptor(n int) ports.TrackDescriptor {
	return ports.TrackDescriptor{
		Title:    "Song " + strconv.Itoa(n),
		URL:      "https://youtu.be/" + strconv.Itoa(n),
		Duration: "03:00",
	}
}

func singleResult(n int) []ports.ResolvedResult {
	track := trackDescriptor(n)
	return []ports.ResolvedResult{{Track: &track}}
}

type mockRepository struct {
	queues map[snowflake.ID]*domain.GuildQueue
}

func newMockRepository() *mockRepository {
	return &mockRepository{queues: make(map[snowflake.ID]*domain.GuildQueue)}
}

func (m *mockRepository) Get(guildID snowflake.ID) *domain.GuildQueue {
	return m.queues[guildID]
}

func (m *mockRepository) Create(q *domain.GuildQueue) (*domain.GuildQueue, bool) {
	if existing, ok := m.queues[q.GuildID()]; ok {
		return existing, false
	}
	m.queues[q.GuildID()] = q
	return q, true
}

func (m *mockRepository) Delete(q *domain.GuildQueue) bool {
	if m.queues[q.GuildID()] != q {
		return false
	}
	delete(m.queues, q.GuildID())
	return true
}

type mockPlayer struct {
	played   []domain.StreamHandle
	playErrs map[string]error // by stream ID
	paused   bool
	stops    int
	pauseErr error
	stopErr  error
}

// Play mirrors the Lavalink player: a pause survives a failed update, and a
// successful one starts the new stream unpaused.
func (m *mockPlayer) Play(_ context.Context, stream domain.StreamHandle) error {
	if err := m.playErrs[stream.ID]; err != nil {
		return err
	}
	m.played = append(m.played, stream)
	m.paused = false
	return nil
}

func (m *mockPlayer) Pause(_ context.Context) error {
	if m.pauseErr != nil {
		return m.pauseErr
	}
	m.paused = true
	return nil
}

func (m *mockPlayer) Unpause(_ context.Context) error {
	m.paused = false
	return nil
}

func (m *mockPlayer) Stop(_ context.Context) error {
	m.stops++
	return m.stopErr
}

type mockConnection struct {
	channelID    snowflake.ID
	destroyed    bool
	destroyCalls int
	subscribed   domain.Player
	subscribeErr error
}

func (m *mockConnection) ChannelID() snowflake.ID { return m.channelID }

func (m *mockConnection) Destroyed() bool { return m.destroyed }

func (m *mockConnection) Subscribe(player domain.Player) error {
	if m.subscribeErr != nil {
		return m.subscribeErr
	}
	m.subscribed = player
	return nil
}

func (m *mockConnection) Destroy(_ context.Context) error {
	m.destroyCalls++
	m.destroyed = true
	return nil
}

type mockTransport struct {
	player  *mockPlayer
	conn    *mockConnection
	joinErr error
	joins   int
}

func newMockTransport() *mockTransport {
	return &mockTransport{player: &mockPlayer{}}
}

func (m *mockTransport) Join(_ context.Context, _, channelID snowflake.ID) (domain.Connection, error) {
	m.joins++
	if m.joinErr != nil {
		return nil, m.joinErr
	}
	if m.conn == nil || m.conn.destroyed {
		m.conn = &mockConnection{channelID: channelID}
	}
	return m.conn, nil
}

func (m *mockTransport) NewPlayer(_ snowflake.ID) domain.Player {
	return m.player
}

type mockResolver struct {
	results    []ports.ResolvedResult
	searchErr  error
	members    []ports.TrackDescriptor
	membersErr error
	openErrs   map[string]error // by URL
	opened     []string
	onOpen     func(url string) // runs before the stream is opened
}

func (m *mockResolver) Search(_ context.Context, _ string, limit int) ([]ports.ResolvedResult, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if limit > 0 && len(m.results) > limit {
		return m.results[:limit], nil
	}
	return m.results, nil
}

func (m *mockResolver) ListMembers(_ context.Context, _ *ports.PlaylistDescriptor) ([]ports.TrackDescriptor, error) {
	return m.members, m.membersErr
}

func (m *mockResolver) OpenStream(_ context.Context, url string) (domain.StreamHandle, error) {
	if m.onOpen != nil {
		m.onOpen(url)
	}
	if err := m.openErrs[url]; err != nil {
		return domain.StreamHandle{}, err
	}
	m.opened = append(m.opened, url)
	return domain.StreamHandle{ID: "stream:" + url, MediaType: "youtube"}, nil
}

func (m *mockResolver) IsPlayableLink(text string) bool {
	return domain.IsPlayableLink(text)
}

type displayEdit struct {
	channelID snowflake.ID
	messageID snowflake.ID
	payload   domain.DisplayPayload
}

type mockDisplay struct {
	nextID  snowflake.ID
	sent    []domain.DisplayPayload
	edits   []displayEdit
	purged  []snowflake.ID
	editErr error
	sendErr error
}

func newMockDisplay() *mockDisplay {
	return &mockDisplay{nextID: 100}
}

func (m *mockDisplay) Send(_ context.Context, _ snowflake.ID, payload domain.DisplayPayload) (snowflake.ID, error) {
	if m.sendErr != nil {
		return 0, m.sendErr
	}
	m.sent = append(m.sent, payload)
	m.nextID++
	return m.nextID, nil
}

func (m *mockDisplay) Edit(_ context.Context, channelID, messageID snowflake.ID, payload domain.DisplayPayload) error {
	if m.editErr != nil {
		err := m.editErr
		m.editErr = nil
		return err
	}
	m.edits = append(m.edits, displayEdit{channelID: channelID, messageID: messageID, payload: payload})
	return nil
}

func (m *mockDisplay) PurgeBotMessages(_ context.Context, channelID snowflake.ID, _ int) error {
	m.purged = append(m.purged, channelID)
	return nil
}

func (m *mockDisplay) lastEdit() *displayEdit {
	if len(m.edits) == 0 {
		return nil
	}
	return &m.edits[len(m.edits)-1]
}

type mockNotifier struct {
	notices []string
}

func (m *mockNotifier) SendNotice(_ snowflake.ID, message string) error {
	m.notices = append(m.notices, message)
	return nil
}

func (m *mockNotifier) SendError(_ snowflake.ID, message string) error {
	m.notices = append(m.notices, message)
	return nil
}

type mockSettings struct {
	controlChannels map[snowflake.ID]snowflake.ID
	displayMessages map[snowflake.ID]snowflake.ID
	flushes         int
}

func newMockSettings() *mockSettings {
	return &mockSettings{
		controlChannels: make(map[snowflake.ID]snowflake.ID),
		displayMessages: make(map[snowflake.ID]snowflake.ID),
	}
}

func (m *mockSettings) ControlChannelID(_ context.Context, guildID snowflake.ID) (snowflake.ID, error) {
	return m.controlChannels[guildID], nil
}

func (m *mockSettings) SetControlChannelID(_ context.Context, guildID, channelID snowflake.ID) error {
	m.controlChannels[guildID] = channelID
	return nil
}

func (m *mockSettings) DisplayMessageID(_ context.Context, guildID snowflake.ID) (snowflake.ID, error) {
	return m.displayMessages[guildID], nil
}

func (m *mockSettings) SetDisplayMessageID(_ context.Context, guildID, messageID snowflake.ID) error {
	m.displayMessages[guildID] = messageID
	return nil
}

func (m *mockSettings) Flush(_ context.Context) error {
	m.flushes++
	return nil
}

type mockVoiceState struct {
	alone bool
	err   error
}

func (m *mockVoiceState) GetUserVoiceChannel(_, _ snowflake.ID) (snowflake.ID, error) {
	return 0, nil
}

func (m *mockVoiceState) IsSoleOccupant(_, _ snowflake.ID) (bool, error) {
	return m.alone, m.err
}

type mockSubscriber struct {
	handler func(context.Context, domain.PlaybackEndedEvent)
}

func (m *mockSubscriber) OnPlaybackEnded(handler func(context.Context, domain.PlaybackEndedEvent)) {
	m.handler = handler
}

// fakeTimer is a timer fired manually by tests.
type fakeTimer struct {
	delay   time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

type fakeTimers struct {
	timers []*fakeTimer
}

func (f *fakeTimers) AfterFunc(d time.Duration, fn func()) Timer {
	t := &fakeTimer{delay: d, f: fn}
	f.timers = append(f.timers, t)
	return t
}

// pending returns the active timers scheduled with delay d.
func (f *fakeTimers) pending(d time.Duration) []*fakeTimer {
	var result []*fakeTimer
	for _, t := range f.timers {
		if t.delay == d && !t.stopped && !t.fired {
			result = append(result, t)
		}
	}
	return result
}

// fire runs every active timer scheduled with delay d.
func (f *fakeTimers) fire(d time.Duration) {
	for _, t := range f.pending(d) {
		t.fired = true
		t.f()
	}
}

type testEnv struct {
	manager    *QueueManager
	repo       *mockRepository
	resolver   *mockResolver
	transport  *mockTransport
	display    *mockDisplay
	notifier   *mockNotifier
	settings   *mockSettings
	voiceState *mockVoiceState
	timers     *fakeTimers
}

func newTestEnv() *testEnv {
	env := &testEnv{
		repo:       newMockRepository(),
		resolver:   &mockResolver{results: singleResult(1)},
		transport:  newMockTransport(),
		display:    newMockDisplay(),
		notifier:   &mockNotifier{},
		settings:   newMockSettings(),
		voiceState: &mockVoiceState{},
		timers:     &fakeTimers{},
	}
	env.manager = NewQueueManager(
		env.repo,
		env.resolver,
		env.transport,
		env.display,
		env.notifier,
		env.settings,
		env.voiceState,
		Timeouts{},
	)
	env.manager.SetAfterFunc(env.timers.AfterFunc)
	return env
}

func (e *testEnv) enqueue(query string) (*EnqueueOutput, error) {
	return e.manager.Enqueue(context.Background(), EnqueueInput{
		GuildID:        testGuildID,
		Query:          query,
		RequestedBy:    "tester",
		TextChannelID:  testTextChannelID,
		VoiceChannelID: testVoiceChannelID,
	})
}

// queue returns the guild's registered queue.
func (e *testEnv) queue() *domain.GuildQueue {
	return e.repo.Get(testGuildID)
}

// withControlChannel configures a control channel and posts the display.
func (e *testEnv) withControlChannel() {
	e.settings.controlChannels[testGuildID] = testControlChannel
	if err := e.manager.InitDisplay(context.Background(), testGuildID); err != nil {
		panic(err)
	}
}

// finish reports a completed playback of the current stream.
func (e *testEnv) finish(failed bool) {
	q := e.queue()
	stream := ""
	if q != nil {
		stream = q.CurrentStream()
	}
	e.manager.HandlePlaybackEnded(context.Background(), domain.PlaybackEndedEvent{
		GuildID:  testGuildID,
		StreamID: stream,
		Failed:   failed,
	})
}
