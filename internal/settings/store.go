// Package settings persists per-guild bot settings in SQLite.
package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/disgoorg/snowflake/v2"
	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed per-guild settings store.
// Missing values read as zero IDs.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the settings database at path.
// Use ":memory:" for a throwaway database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps in-memory databases consistent and serializes writes.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA journal_mode = WAL",
		"PRAGMA temp_store = MEMORY",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS guild_settings (
			guild_id TEXT PRIMARY KEY,
			control_channel_id TEXT,
			display_message_id TEXT,
			updated_at INTEGER NOT NULL
		);
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// ControlChannelID returns the guild's music control channel.
func (s *Store) ControlChannelID(ctx context.Context, guildID snowflake.ID) (snowflake.ID, error) {
	return s.readID(ctx, "control_channel_id", guildID)
}

// SetControlChannelID stores the guild's music control channel.
func (s *Store) SetControlChannelID(ctx context.Context, guildID, channelID snowflake.ID) error {
	return s.writeID(ctx, "control_channel_id", guildID, channelID)
}

// DisplayMessageID returns the guild's display message.
func (s *Store) DisplayMessageID(ctx context.Context, guildID snowflake.ID) (snowflake.ID, error) {
	return s.readID(ctx, "display_message_id", guildID)
}

// SetDisplayMessageID stores the guild's display message.
func (s *Store) SetDisplayMessageID(ctx context.Context, guildID, messageID snowflake.ID) error {
	return s.writeID(ctx, "display_message_id", guildID, messageID)
}

// GuildsWithControlChannel returns every guild that has a control channel configured.
func (s *Store) GuildsWithControlChannel(ctx context.Context) ([]snowflake.ID, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT guild_id FROM guild_settings
		WHERE control_channel_id IS NOT NULL AND control_channel_id != ''
		ORDER BY guild_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query guilds: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var guilds []snowflake.ID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan guild: %w", err)
		}
		id, err := snowflake.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid guild id %q: %w", raw, err)
		}
		guilds = append(guilds, id)
	}
	return guilds, rows.Err()
}

// Flush checkpoints the write-ahead log so previous writes reach the main database file.
func (s *Store) Flush(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return fmt.Errorf("failed to checkpoint: %w", err)
	}
	return nil
}

// column names are constants from this file only
func (s *Store) readID(ctx context.Context, column string, guildID snowflake.ID) (snowflake.ID, error) {
	var raw sql.NullString
	query := "SELECT " + column + " FROM guild_settings WHERE guild_id = ?"
	err := s.db.QueryRowContext(ctx, query, guildID.String()).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", column, err)
	}
	if !raw.Valid || raw.String == "" {
		return 0, nil
	}

	id, err := snowflake.Parse(raw.String)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", column, raw.String, err)
	}
	return id, nil
}

func (s *Store) writeID(ctx context.Context, column string, guildID, value snowflake.ID) error {
	var stored any
	if value != 0 {
		stored = value.String()
	}

	query := "INSERT INTO guild_settings (guild_id, " + column + ", updated_at) VALUES (?, ?, ?) " +
		"ON CONFLICT(guild_id) DO UPDATE SET " + column + " = excluded." + column +
		", updated_at = excluded.updated_at"
	if _, err := s.db.ExecContext(ctx, query, guildID.String(), stored, time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to write %s: %w", column, err)
	}
	return nil
}
