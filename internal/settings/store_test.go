package settings

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/disgoorg/snowflake/v2"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestStore_MissingValuesReadAsZero(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	channelID, err := store.ControlChannelID(ctx, snowflake.ID(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if channelID != 0 {
		t.Errorf("expected zero channel, got %d", channelID)
	}

	messageID, err := store.DisplayMessageID(ctx, snowflake.ID(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if messageID != 0 {
		t.Errorf("expected zero message, got %d", messageID)
	}
}

func TestStore_SetAndGet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	guildID := snowflake.ID(1)

	if err := store.SetControlChannelID(ctx, guildID, snowflake.ID(10)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.SetDisplayMessageID(ctx, guildID, snowflake.ID(100)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// overwriting one column keeps the other
	if err := store.SetControlChannelID(ctx, guildID, snowflake.ID(11)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	channelID, err := store.ControlChannelID(ctx, guildID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if channelID != snowflake.ID(11) {
		t.Errorf("expected channel 11, got %d", channelID)
	}

	messageID, err := store.DisplayMessageID(ctx, guildID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if messageID != snowflake.ID(100) {
		t.Errorf("expected message 100, got %d", messageID)
	}
}

func TestStore_ClearValue(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	guildID := snowflake.ID(1)

	if err := store.SetDisplayMessageID(ctx, guildID, snowflake.ID(100)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.SetDisplayMessageID(ctx, guildID, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	messageID, err := store.DisplayMessageID(ctx, guildID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if messageID != 0 {
		t.Errorf("expected cleared message, got %d", messageID)
	}
}

func TestStore_GuildsWithControlChannel(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.SetControlChannelID(ctx, snowflake.ID(2), snowflake.ID(20)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.SetControlChannelID(ctx, snowflake.ID(1), snowflake.ID(10)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.SetDisplayMessageID(ctx, snowflake.ID(3), snowflake.ID(30)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	guilds, err := store.GuildsWithControlChannel(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(guilds) != 2 || guilds[0] != snowflake.ID(1) || guilds[1] != snowflake.ID(2) {
		t.Errorf("unexpected guilds %v", guilds)
	}
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.db")
	ctx := context.Background()

	store, err := Open(path)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	if err := store.SetControlChannelID(ctx, snowflake.ID(1), snowflake.ID(10)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := store.Flush(ctx); err != nil {
		t.Fatalf("unexpected flush error: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("unexpected close error: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	channelID, err := reopened.ControlChannelID(ctx, snowflake.ID(1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if channelID != snowflake.ID(10) {
		t.Errorf("expected channel 10 after reopen, got %d", channelID)
	}
}
