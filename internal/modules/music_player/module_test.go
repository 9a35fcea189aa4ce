package music_player

import (
	"testing"
	"time"

	"github.com/floofybot/floofy/internal/bot"
	"github.com/floofybot/floofy/internal/modules/music_player/domain"
)

func TestMusicPlayerModule_LoadConfig(t *testing.T) {
	t.Setenv("LAVALINK_ADDRESS", "localhost:2333")
	t.Setenv("LAVALINK_PASSWORD", "youshallnotpass")

	m := &MusicPlayerModule{}
	if err := m.LoadConfig(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if m.config.LavalinkSecure {
		t.Error("expected insecure connection by default")
	}
	if m.config.IdleTimeout != 5*time.Minute {
		t.Errorf("expected 5m idle timeout, got %v", m.config.IdleTimeout)
	}
	if m.config.EmptyChannelTimeout != time.Minute {
		t.Errorf("expected 1m empty channel timeout, got %v", m.config.EmptyChannelTimeout)
	}
	if m.config.DisplayEditsPerSecond != 1 || m.config.DisplayEditBurst != 3 {
		t.Errorf("unexpected display pacing %v/%d", m.config.DisplayEditsPerSecond, m.config.DisplayEditBurst)
	}
}

func TestMusicPlayerModule_LoadConfig_Overrides(t *testing.T) {
	t.Setenv("LAVALINK_ADDRESS", "lavalink:443")
	t.Setenv("LAVALINK_PASSWORD", "secret")
	t.Setenv("LAVALINK_SECURE", "true")
	t.Setenv("MUSIC_IDLE_TIMEOUT", "90s")

	m := &MusicPlayerModule{}
	if err := m.LoadConfig(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !m.config.LavalinkSecure {
		t.Error("expected secure connection")
	}
	if m.config.IdleTimeout != 90*time.Second {
		t.Errorf("expected 90s idle timeout, got %v", m.config.IdleTimeout)
	}
}

func TestMusicPlayerModule_LoadConfig_MissingPassword(t *testing.T) {
	t.Setenv("LAVALINK_ADDRESS", "localhost:2333")
	t.Setenv("LAVALINK_PASSWORD", "")

	m := &MusicPlayerModule{}
	if err := m.LoadConfig(); err == nil {
		t.Error("expected error for missing password")
	}
}

func TestMusicPlayerModule_EveryCommandHasHandler(t *testing.T) {
	m := &MusicPlayerModule{}
	handlers := m.CommandHandlers()

	for _, cmd := range m.Commands() {
		if _, ok := handlers[cmd.Name]; !ok {
			t.Errorf("command %q has no handler", cmd.Name)
		}
	}
	if len(handlers) != len(m.Commands()) {
		t.Errorf("expected %d handlers, got %d", len(m.Commands()), len(handlers))
	}
}

func TestMusicPlayerModule_EveryControlHasHandler(t *testing.T) {
	m := &MusicPlayerModule{}
	handlers := m.ComponentHandlers()

	for _, control := range domain.Controls() {
		if _, ok := handlers[control.ID]; !ok {
			t.Errorf("control %q has no handler", control.ID)
		}
	}
}

func TestMusicPlayerModule_InitRequiresSession(t *testing.T) {
	m := &MusicPlayerModule{config: &Config{}}

	if err := m.Init(bot.ModuleDependencies{}); err == nil {
		t.Error("expected error without a session")
	}
	if err := m.Shutdown(); err != nil {
		t.Errorf("unexpected shutdown error: %v", err)
	}
}
