package music_player

import "time"

// Config holds the music player module configuration.
type Config struct {
	LavalinkAddress  string `env:"LAVALINK_ADDRESS,notEmpty"`
	LavalinkPassword string `env:"LAVALINK_PASSWORD,notEmpty"`
	LavalinkSecure   bool   `env:"LAVALINK_SECURE"   envDefault:"false"`

	IdleTimeout         time.Duration `env:"MUSIC_IDLE_TIMEOUT"          envDefault:"5m"`
	EmptyChannelTimeout time.Duration `env:"MUSIC_EMPTY_CHANNEL_TIMEOUT" envDefault:"1m"`

	// Discord rate limits message edits per channel; the display paces itself below that.
	DisplayEditsPerSecond float64 `env:"MUSIC_DISPLAY_EDITS_PER_SECOND" envDefault:"1"`
	DisplayEditBurst      int     `env:"MUSIC_DISPLAY_EDIT_BURST"       envDefault:"3"`
}
