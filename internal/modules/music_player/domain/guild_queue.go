package domain

import "github.com/disgoorg/snowflake/v2"

// PlaybackState is the derived playback state of a GuildQueue.
type PlaybackState int

const (
	PlaybackIdle PlaybackState = iota
	PlaybackPlaying
	PlaybackPaused
)

// String returns a human-readable representation of the playback state.
func (s PlaybackState) String() string {
	switch s {
	case PlaybackPlaying:
		return "playing"
	case PlaybackPaused:
		return "paused"
	default:
		return "idle"
	}
}

// StatusMessage identifies the persistent display message for a guild.
type StatusMessage struct {
	ChannelID snowflake.ID
	MessageID snowflake.ID
}

// GuildQueue holds the playback queue and voice resources of one guild.
type GuildQueue struct {
	guildID        snowflake.ID
	textChannelID  snowflake.ID // where notices are reported; zero if unset
	voiceChannelID snowflake.ID // most recently joined voice channel; zero if unset
	connection     Connection
	player         Player // created with the queue, never replaced
	Tracks         Queue
	playing        bool
	paused         bool
	loop           bool
	current        *Track // track handed to the player by the latest play attempt
	currentStream  string
	statusMessage  *StatusMessage
}

// NewGuildQueue creates an empty, idle GuildQueue owning the given player.
func NewGuildQueue(guildID snowflake.ID, player Player) *GuildQueue {
	return &GuildQueue{
		guildID: guildID,
		player:  player,
		Tracks:  NewQueue(),
	}
}

// GuildID returns the guild ID.
func (q *GuildQueue) GuildID() snowflake.ID {
	// guildID must not be modified after initialization
	return q.guildID
}

// TextChannelID returns the channel notices are reported to.
func (q *GuildQueue) TextChannelID() snowflake.ID {
	return q.textChannelID
}

// SetTextChannelID updates the notice channel.
func (q *GuildQueue) SetTextChannelID(channelID snowflake.ID) {
	q.textChannelID = channelID
}

// VoiceChannelID returns the most recently joined voice channel.
func (q *GuildQueue) VoiceChannelID() snowflake.ID {
	return q.voiceChannelID
}

// SetVoiceChannelID updates the voice channel ID.
func (q *GuildQueue) SetVoiceChannelID(channelID snowflake.ID) {
	q.voiceChannelID = channelID
}

// Connection returns the voice connection, or nil if none was established.
func (q *GuildQueue) Connection() Connection {
	return q.connection
}

// SetConnection stores the voice connection.
func (q *GuildQueue) SetConnection(conn Connection) {
	q.connection = conn
}

// HasLiveConnection returns true if the queue owns a connection that is not destroyed.
func (q *GuildQueue) HasLiveConnection() bool {
	return q.connection != nil && !q.connection.Destroyed()
}

// Player returns the guild's audio player.
func (q *GuildQueue) Player() Player {
	return q.player
}

// IsPlaying returns true while playback is active. It becomes false only when the queue drains.
func (q *GuildQueue) IsPlaying() bool {
	return q.playing
}

// IsPaused returns true if playback is user-paused.
func (q *GuildQueue) IsPaused() bool {
	return q.paused
}

// SetPaused sets the paused flag.
func (q *GuildQueue) SetPaused(paused bool) {
	q.paused = paused
}

// IsLooping returns true if the head track is replayed instead of discarded on completion.
func (q *GuildQueue) IsLooping() bool {
	return q.loop
}

// SetLoop sets the loop flag.
func (q *GuildQueue) SetLoop(loop bool) {
	q.loop = loop
}

// State returns the derived playback state.
func (q *GuildQueue) State() PlaybackState {
	switch {
	case !q.playing:
		return PlaybackIdle
	case q.paused:
		return PlaybackPaused
	default:
		return PlaybackPlaying
	}
}

// BeginPlayback marks the queue as playing the given track.
func (q *GuildQueue) BeginPlayback(track *Track) {
	q.playing = true
	q.paused = false
	q.current = track
	q.currentStream = ""
}

// SetCurrentStream records the resource identifier handed to the player.
func (q *GuildQueue) SetCurrentStream(id string) {
	q.currentStream = id
}

// CurrentStream returns the resource identifier of the latest play attempt.
func (q *GuildQueue) CurrentStream() string {
	return q.currentStream
}

// Current returns the track of the latest play attempt, or nil when idle.
func (q *GuildQueue) Current() *Track {
	return q.current
}

// EndPlayback marks the queue as idle.
func (q *GuildQueue) EndPlayback() {
	q.playing = false
	q.paused = false
	q.current = nil
	q.currentStream = ""
}

// DropHead removes the head track if it is still the given track.
// Returns true if a track was removed.
func (q *GuildQueue) DropHead(track *Track) bool {
	if track == nil || q.Tracks.Head() != track {
		return false
	}
	q.Tracks.PopHead()
	return true
}

// StatusMessage returns a copy of the display message info, or nil if unknown.
func (q *GuildQueue) StatusMessage() *StatusMessage {
	if q.statusMessage == nil {
		return nil
	}
	return &StatusMessage{
		ChannelID: q.statusMessage.ChannelID,
		MessageID: q.statusMessage.MessageID,
	}
}

// SetStatusMessage stores the display message info.
func (q *GuildQueue) SetStatusMessage(channelID, messageID snowflake.ID) {
	q.statusMessage = &StatusMessage{
		ChannelID: channelID,
		MessageID: messageID,
	}
}

// ClearStatusMessage forgets the display message.
func (q *GuildQueue) ClearStatusMessage() {
	q.statusMessage = nil
}
