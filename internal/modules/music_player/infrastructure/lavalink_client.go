package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/disgolink/v3/disgolink"
	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/snowflake/v2"
	"github.com/floofybot/floofy/internal/modules/music_player/application/ports"
	"github.com/floofybot/floofy/internal/modules/music_player/domain"
)

// voiceConnectionTimeout is the maximum time to wait for voice connection to be established.
const voiceConnectionTimeout = 10 * time.Second

var (
	errNoNode            = errors.New("no available Lavalink node")
	errStreamUnavailable = errors.New("no stream available for track")
)

// pendingVoiceConnection tracks the state of a pending voice connection.
type pendingVoiceConnection struct {
	mu             sync.Mutex
	hasVoiceState  bool
	hasVoiceServer bool
	ready          chan struct{}
}

// onEvent marks an event as received and signals ready if both events are present.
func (p *pendingVoiceConnection) onEvent(isVoiceState bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if isVoiceState {
		p.hasVoiceState = true
	} else {
		p.hasVoiceServer = true
	}

	if p.hasVoiceState && p.hasVoiceServer {
		select {
		case <-p.ready:
			// Already closed
		default:
			close(p.ready)
		}
	}
}

// voiceEventBuffer buffers voice events to ensure both VoiceStateUpdate and
// VoiceServerUpdate are received before forwarding to Lavalink.
// This prevents "Partial Lavalink voice state" errors when events arrive out of order.
type voiceEventBuffer struct {
	mu sync.Mutex

	// From VoiceStateUpdate
	hasVoiceState bool
	channelID     *snowflake.ID
	sessionID     string

	// From VoiceServerUpdate
	hasVoiceServer bool
	token          string
	endpoint       string
}

// setVoiceState stores voice state data and returns true if both events are now ready.
func (b *voiceEventBuffer) setVoiceState(channelID *snowflake.ID, sessionID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.hasVoiceState = true
	b.channelID = channelID
	b.sessionID = sessionID

	return b.hasVoiceState && b.hasVoiceServer
}

// setVoiceServer stores voice server data and returns true if both events are now ready.
func (b *voiceEventBuffer) setVoiceServer(token, endpoint string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.hasVoiceServer = true
	b.token = token
	b.endpoint = endpoint

	return b.hasVoiceState && b.hasVoiceServer
}

// getData returns the buffered data and resets the buffer.
func (b *voiceEventBuffer) getData() (channelID *snowflake.ID, sessionID, token, endpoint string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	channelID = b.channelID
	sessionID = b.sessionID
	token = b.token
	endpoint = b.endpoint

	b.hasVoiceState = false
	b.hasVoiceServer = false
	b.channelID = nil
	b.sessionID = ""
	b.token = ""
	b.endpoint = ""

	return
}

// LavalinkAdapter wraps DisGoLink to implement the track resolver and voice transport ports.
type LavalinkAdapter struct {
	link    disgolink.Client
	session *discordgo.Session
	botID   snowflake.ID

	pendingMu sync.Mutex
	pending   map[snowflake.ID]*pendingVoiceConnection

	// voiceBuffers holds buffered voice events per guild to handle out-of-order events
	voiceBufferMu sync.Mutex
	voiceBuffers  map[snowflake.ID]*voiceEventBuffer

	connMu      sync.Mutex
	connections map[snowflake.ID]*lavalinkConnection

	// stuck holds the encoded track of each guild's stuck playback until its end event arrives
	stuckMu sync.Mutex
	stuck   map[snowflake.ID]string

	publisher ports.EventPublisher
}

// LavalinkConfig contains Lavalink connection configuration.
type LavalinkConfig struct {
	Address  string
	Password string
	Secure   bool
}

// NewLavalinkAdapter creates a new LavalinkAdapter and connects to the Lavalink node.
// The session must already be open so the bot user is known.
func NewLavalinkAdapter(
	session *discordgo.Session,
	publisher ports.EventPublisher,
	config LavalinkConfig,
) (*LavalinkAdapter, error) {
	if session.State == nil || session.State.User == nil {
		return nil, errors.New("session is not open")
	}
	botID, err := snowflake.Parse(session.State.User.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse bot ID: %w", err)
	}

	adapter := newLavalinkAdapter(session, botID, publisher)

	link := disgolink.New(botID,
		disgolink.WithListenerFunc(adapter.onTrackStart),
		disgolink.WithListenerFunc(adapter.onTrackEnd),
		disgolink.WithListenerFunc(adapter.onTrackException),
		disgolink.WithListenerFunc(adapter.onTrackStuck),
	)
	adapter.link = link

	node, err := link.AddNode(context.Background(), disgolink.NodeConfig{
		Name:     "main",
		Address:  config.Address,
		Password: config.Password,
		Secure:   config.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add Lavalink node: %w", err)
	}

	slog.Info("connected to Lavalink", "node", node.Config().Name, "address", config.Address)

	return adapter, nil
}

func newLavalinkAdapter(
	session *discordgo.Session,
	botID snowflake.ID,
	publisher ports.EventPublisher,
) *LavalinkAdapter {
	return &LavalinkAdapter{
		session:      session,
		botID:        botID,
		pending:      make(map[snowflake.ID]*pendingVoiceConnection),
		voiceBuffers: make(map[snowflake.ID]*voiceEventBuffer),
		connections:  make(map[snowflake.ID]*lavalinkConnection),
		stuck:        make(map[snowflake.ID]string),
		publisher:    publisher,
	}
}

// BotID returns the bot user ID.
func (c *LavalinkAdapter) BotID() snowflake.ID {
	return c.botID
}

// Close disconnects from every Lavalink node.
func (c *LavalinkAdapter) Close() {
	if c.link != nil {
		c.link.Close()
	}
}

// Join connects to a voice channel.
// It waits for both VoiceStateUpdate and VoiceServerUpdate events before returning.
func (c *LavalinkAdapter) Join(
	ctx context.Context,
	guildID, channelID snowflake.ID,
) (domain.Connection, error) {
	pending := &pendingVoiceConnection{
		ready: make(chan struct{}),
	}

	c.pendingMu.Lock()
	c.pending[guildID] = pending
	c.pendingMu.Unlock()

	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, guildID)
		c.pendingMu.Unlock()
	}()

	err := c.session.ChannelVoiceJoinManual(guildID.String(), channelID.String(), false, false)
	if err != nil {
		return nil, fmt.Errorf("failed to join voice channel: %w", err)
	}

	select {
	case <-pending.ready:
	case <-ctx.Done():
		return nil, fmt.Errorf("context cancelled while waiting for voice connection: %w", ctx.Err())
	case <-time.After(voiceConnectionTimeout):
		return nil, fmt.Errorf("timeout waiting for voice connection")
	}

	conn := &lavalinkConnection{
		adapter:   c,
		guildID:   guildID,
		channelID: channelID,
	}

	c.connMu.Lock()
	if old := c.connections[guildID]; old != nil {
		old.markDestroyed()
	}
	c.connections[guildID] = conn
	c.connMu.Unlock()

	return conn, nil
}

// NewPlayer returns the audio player for a guild.
func (c *LavalinkAdapter) NewPlayer(guildID snowflake.ID) domain.Player {
	return &lavalinkPlayer{
		adapter: c,
		guildID: guildID,
	}
}

// leave destroys the Lavalink player and leaves the voice channel.
func (c *LavalinkAdapter) leave(ctx context.Context, conn *lavalinkConnection) error {
	c.connMu.Lock()
	if c.connections[conn.guildID] == conn {
		delete(c.connections, conn.guildID)
	}
	c.connMu.Unlock()

	if player := c.link.ExistingPlayer(conn.guildID); player != nil {
		if err := player.Destroy(ctx); err != nil {
			slog.Warn("failed to destroy player", "guild", conn.guildID, "error", err)
		}
	}

	err := c.session.ChannelVoiceJoinManual(conn.guildID.String(), "", false, false)
	if err != nil {
		return fmt.Errorf("failed to leave voice channel: %w", err)
	}
	return nil
}

// Search resolves a query or URL into at most limit results.
func (c *LavalinkAdapter) Search(
	ctx context.Context,
	query string,
	limit int,
) ([]ports.ResolvedResult, error) {
	searchQuery := domain.NewSearchQuery(query)
	if !searchQuery.IsValid() {
		return nil, nil
	}

	result, err := c.loadTracks(ctx, searchQuery.LavalinkQuery())
	if err != nil {
		return nil, err
	}
	return convertLoadResult(result, searchQuery.Query, limit)
}

// ListMembers enumerates all member tracks of a playlist.
func (c *LavalinkAdapter) ListMembers(
	ctx context.Context,
	playlist *ports.PlaylistDescriptor,
) ([]ports.TrackDescriptor, error) {
	if playlist.Tracks != nil || playlist.URL == "" {
		return playlist.Tracks, nil
	}

	result, err := c.loadTracks(ctx, playlist.URL)
	if err != nil {
		return nil, err
	}

	data, ok := result.Data.(lavalink.Playlist)
	if !ok {
		return nil, fmt.Errorf("%s is not a playlist", playlist.URL)
	}
	return convertTracks(data.Tracks), nil
}

// OpenStream loads a playable resource for the track URL.
func (c *LavalinkAdapter) OpenStream(ctx context.Context, url string) (domain.StreamHandle, error) {
	result, err := c.loadTracks(ctx, url)
	if err != nil {
		return domain.StreamHandle{}, err
	}

	track, err := streamTrack(result)
	if err != nil {
		return domain.StreamHandle{}, err
	}
	return domain.StreamHandle{
		ID:        track.Encoded,
		MediaType: track.Info.SourceName,
	}, nil
}

// IsPlayableLink reports whether text is a link to a supported source.
func (c *LavalinkAdapter) IsPlayableLink(text string) bool {
	return domain.IsPlayableLink(text)
}

func (c *LavalinkAdapter) loadTracks(ctx context.Context, identifier string) (*lavalink.LoadResult, error) {
	node := c.link.BestNode()
	if node == nil {
		return nil, errNoNode
	}

	result, err := node.LoadTracks(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to load tracks: %w", err)
	}
	return result, nil
}

// convertLoadResult converts a Lavalink result into at most limit resolved results.
func convertLoadResult(
	result *lavalink.LoadResult,
	query string,
	limit int,
) ([]ports.ResolvedResult, error) {
	switch data := result.Data.(type) {
	case lavalink.Track:
		track := convertTrack(data)
		return []ports.ResolvedResult{{Track: &track}}, nil

	case lavalink.Playlist:
		return []ports.ResolvedResult{{
			Playlist: &ports.PlaylistDescriptor{
				Name:   data.Info.Name,
				URL:    query,
				Tracks: convertTracks(data.Tracks),
			},
		}}, nil

	case lavalink.Search:
		tracks := []lavalink.Track(data)
		if limit > 0 && len(tracks) > limit {
			tracks = tracks[:limit]
		}
		results := make([]ports.ResolvedResult, len(tracks))
		for i, t := range tracks {
			track := convertTrack(t)
			results[i] = ports.ResolvedResult{Track: &track}
		}
		return results, nil

	case lavalink.Exception:
		return nil, fmt.Errorf("lavalink: %s", data.Message)

	default:
		return nil, nil
	}
}

// streamTrack picks the track to stream from a load result.
func streamTrack(result *lavalink.LoadResult) (lavalink.Track, error) {
	switch data := result.Data.(type) {
	case lavalink.Track:
		return data, nil
	case lavalink.Search:
		if len(data) > 0 {
			return data[0], nil
		}
	case lavalink.Playlist:
		if len(data.Tracks) > 0 {
			selected := data.Info.SelectedTrack
			if selected < 0 || selected >= len(data.Tracks) {
				selected = 0
			}
			return data.Tracks[selected], nil
		}
	case lavalink.Exception:
		return lavalink.Track{}, fmt.Errorf("lavalink: %s", data.Message)
	}
	return lavalink.Track{}, errStreamUnavailable
}

func convertTracks(tracks []lavalink.Track) []ports.TrackDescriptor {
	result := make([]ports.TrackDescriptor, len(tracks))
	for i, track := range tracks {
		result[i] = convertTrack(track)
	}
	return result
}

// convertTrack converts a Lavalink track to a TrackDescriptor.
func convertTrack(track lavalink.Track) ports.TrackDescriptor {
	info := track.Info
	return ports.TrackDescriptor{
		Title:     info.Title,
		URL:       getStringPtr(info.URI),
		Duration:  domain.FormatDuration(time.Duration(info.Length)*time.Millisecond, info.IsStream),
		Thumbnail: getStringPtr(info.ArtworkURL),
	}
}

func getStringPtr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// OnVoiceServerUpdate handles Discord voice server updates.
// This must be called from the Discord event handler.
func (c *LavalinkAdapter) OnVoiceServerUpdate(event *discordgo.VoiceServerUpdate) {
	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice server update", "error", err)
		return
	}

	buffer := c.getOrCreateVoiceBuffer(guildID)
	if buffer.setVoiceServer(event.Token, event.Endpoint) {
		c.forwardBufferedVoiceEvents(guildID, buffer)
	}

	// Signal that we received the voice server update (for Join waiting)
	c.pendingMu.Lock()
	pending := c.pending[guildID]
	c.pendingMu.Unlock()

	if pending != nil {
		pending.onEvent(false)
	}
}

// OnVoiceStateUpdate handles Discord voice state updates.
// This must be called from the Discord event handler.
func (c *LavalinkAdapter) OnVoiceStateUpdate(event *discordgo.VoiceStateUpdate) {
	// Only handle updates for the bot itself
	if event.UserID != c.botID.String() {
		return
	}

	guildID, err := snowflake.Parse(event.GuildID)
	if err != nil {
		slog.Error("failed to parse guild ID in voice state update", "error", err)
		return
	}

	sessionID := event.SessionID

	// Parse the channel ID - if empty, the bot is disconnecting
	var channelID *snowflake.ID
	if event.ChannelID != "" {
		id, err := snowflake.Parse(event.ChannelID)
		if err != nil {
			slog.Error("failed to parse channel ID in voice state update", "error", err)
			return
		}
		channelID = &id
	}

	c.trackConnection(guildID, channelID)

	// Handle disconnect immediately (no need to wait for VoiceServerUpdate)
	if channelID == nil {
		if c.link != nil {
			c.link.OnVoiceStateUpdate(context.Background(), guildID, nil, sessionID)
		}
		c.clearVoiceBuffer(guildID)
		return
	}

	buffer := c.getOrCreateVoiceBuffer(guildID)
	if buffer.setVoiceState(channelID, sessionID) {
		c.forwardBufferedVoiceEvents(guildID, buffer)
	}

	// Signal that we received the voice state update (for Join waiting)
	c.pendingMu.Lock()
	pending := c.pending[guildID]
	c.pendingMu.Unlock()

	if pending != nil {
		pending.onEvent(true)
	}
}

// trackConnection keeps the guild's connection in sync with the bot's voice state.
func (c *LavalinkAdapter) trackConnection(guildID snowflake.ID, channelID *snowflake.ID) {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	conn := c.connections[guildID]
	if conn == nil {
		return
	}
	if channelID == nil {
		conn.markDestroyed()
		delete(c.connections, guildID)
		return
	}
	conn.setChannelID(*channelID)
}

// getOrCreateVoiceBuffer returns the voice buffer for a guild, creating one if needed.
func (c *LavalinkAdapter) getOrCreateVoiceBuffer(guildID snowflake.ID) *voiceEventBuffer {
	c.voiceBufferMu.Lock()
	defer c.voiceBufferMu.Unlock()

	buffer, exists := c.voiceBuffers[guildID]
	if !exists {
		buffer = &voiceEventBuffer{}
		c.voiceBuffers[guildID] = buffer
	}
	return buffer
}

// clearVoiceBuffer removes the voice buffer for a guild.
func (c *LavalinkAdapter) clearVoiceBuffer(guildID snowflake.ID) {
	c.voiceBufferMu.Lock()
	defer c.voiceBufferMu.Unlock()
	delete(c.voiceBuffers, guildID)
}

// forwardBufferedVoiceEvents sends the buffered voice events to Lavalink.
func (c *LavalinkAdapter) forwardBufferedVoiceEvents(
	guildID snowflake.ID,
	buffer *voiceEventBuffer,
) {
	channelID, sessionID, token, endpoint := buffer.getData()

	slog.Debug("forwarding buffered voice events to Lavalink",
		"guild", guildID,
		"channel", channelID,
		"hasSessionID", sessionID != "",
	)

	c.link.OnVoiceStateUpdate(context.Background(), guildID, channelID, sessionID)
	c.link.OnVoiceServerUpdate(context.Background(), guildID, token, endpoint)
}

func (c *LavalinkAdapter) onTrackStart(player disgolink.Player, event lavalink.TrackStartEvent) {
	slog.Debug("track started", "guild", player.GuildID(), "track", event.Track.Info.Title)
}

func (c *LavalinkAdapter) onTrackEnd(player disgolink.Player, event lavalink.TrackEndEvent) {
	c.handleTrackEnd(player.GuildID(), event.Track.Encoded, event.Reason)
}

// handleTrackEnd publishes one PlaybackEndedEvent per finished playback attempt.
func (c *LavalinkAdapter) handleTrackEnd(guildID snowflake.ID, encoded string, reason lavalink.TrackEndReason) {
	c.stuckMu.Lock()
	wasStuck := c.stuck[guildID] != "" && c.stuck[guildID] == encoded
	if wasStuck {
		delete(c.stuck, guildID)
	}
	c.stuckMu.Unlock()

	failed, ok := classifyTrackEnd(reason, wasStuck)
	slog.Debug("track ended", "guild", guildID, "reason", reason, "failed", failed)
	if !ok || c.publisher == nil {
		return
	}

	c.publisher.PublishPlaybackEnded(domain.PlaybackEndedEvent{
		GuildID:  guildID,
		StreamID: encoded,
		Failed:   failed,
	})
}

func (c *LavalinkAdapter) onTrackException(
	player disgolink.Player,
	event lavalink.TrackExceptionEvent,
) {
	// Lavalink follows an exception with a load-failed end event.
	slog.Warn("track exception", "guild", player.GuildID(), "error", event.Exception.Message)
}

func (c *LavalinkAdapter) onTrackStuck(player disgolink.Player, event lavalink.TrackStuckEvent) {
	slog.Warn("track stuck", "guild", player.GuildID(), "threshold", event.Threshold)

	c.stuckMu.Lock()
	c.stuck[player.GuildID()] = event.Track.Encoded
	c.stuckMu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := player.Update(ctx, lavalink.WithNullTrack()); err != nil {
			slog.Warn("failed to stop stuck track", "guild", player.GuildID(), "error", err)
		}
	}()
}

// classifyTrackEnd maps a Lavalink end reason to a playback outcome.
// ok is false for reasons that do not end a playback attempt of ours.
func classifyTrackEnd(reason lavalink.TrackEndReason, stuck bool) (failed bool, ok bool) {
	switch reason {
	case lavalink.TrackEndReasonFinished:
		return false, true
	case lavalink.TrackEndReasonLoadFailed:
		return true, true
	case lavalink.TrackEndReasonStopped:
		return stuck, true
	default:
		// replaced and cleanup
		return false, false
	}
}

// lavalinkConnection is a guild voice session established through Discord for Lavalink.
type lavalinkConnection struct {
	adapter *LavalinkAdapter
	guildID snowflake.ID

	mu        sync.Mutex
	channelID snowflake.ID
	destroyed bool
}

func (c *lavalinkConnection) ChannelID() snowflake.ID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channelID
}

func (c *lavalinkConnection) setChannelID(channelID snowflake.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.channelID = channelID
}

func (c *lavalinkConnection) Destroyed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.destroyed
}

func (c *lavalinkConnection) markDestroyed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	wasDestroyed := c.destroyed
	c.destroyed = true
	return !wasDestroyed
}

// Subscribe checks that the player streams into this guild. Lavalink binds
// the player to the guild's voice session, so nothing else is needed.
func (c *lavalinkConnection) Subscribe(player domain.Player) error {
	p, ok := player.(*lavalinkPlayer)
	if !ok || p.guildID != c.guildID {
		return fmt.Errorf("player does not belong to guild %s", c.guildID)
	}
	return nil
}

func (c *lavalinkConnection) Destroy(ctx context.Context) error {
	if !c.markDestroyed() {
		return nil
	}
	return c.adapter.leave(ctx, c)
}

// lavalinkPlayer controls the Lavalink player of one guild.
type lavalinkPlayer struct {
	adapter *LavalinkAdapter
	guildID snowflake.ID
}

func (p *lavalinkPlayer) Play(ctx context.Context, stream domain.StreamHandle) error {
	player := p.adapter.link.Player(p.guildID)

	// Use WithEncodedTrack to avoid userData:null issue.
	// Lavalink keeps the paused flag across track updates, so clear it here.
	if err := player.Update(ctx, lavalink.WithEncodedTrack(stream.ID), lavalink.WithPaused(false)); err != nil {
		return fmt.Errorf("failed to play track: %w", err)
	}
	return nil
}

func (p *lavalinkPlayer) Pause(ctx context.Context) error {
	if err := p.adapter.link.Player(p.guildID).Update(ctx, lavalink.WithPaused(true)); err != nil {
		return fmt.Errorf("failed to pause playback: %w", err)
	}
	return nil
}

func (p *lavalinkPlayer) Unpause(ctx context.Context) error {
	if err := p.adapter.link.Player(p.guildID).Update(ctx, lavalink.WithPaused(false)); err != nil {
		return fmt.Errorf("failed to resume playback: %w", err)
	}
	return nil
}

func (p *lavalinkPlayer) Stop(ctx context.Context) error {
	if err := p.adapter.link.Player(p.guildID).Update(ctx, lavalink.WithNullTrack()); err != nil {
		return fmt.Errorf("failed to stop playback: %w", err)
	}
	return nil
}

// Ensure LavalinkAdapter implements port interfaces.
var (
	_ ports.TrackResolver  = (*LavalinkAdapter)(nil)
	_ ports.VoiceTransport = (*LavalinkAdapter)(nil)
	_ domain.Connection    = (*lavalinkConnection)(nil)
	_ domain.Player        = (*lavalinkPlayer)(nil)
)
