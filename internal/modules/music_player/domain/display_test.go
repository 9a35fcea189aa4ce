package domain

import (
	"strings"
	"testing"
)

func TestRenderStatus_NoSong(t *testing.T) {
	tests := []struct {
		name  string
		queue *GuildQueue
	}{
		{name: "absent queue", queue: nil},
		{name: "empty queue", queue: newTestGuildQueue()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := RenderStatus(tt.queue)

			if payload.Title != "No song playing" {
				t.Errorf("expected title %q, got %q", "No song playing", payload.Title)
			}
			if payload.Description == "" || payload.ImageURL == "" {
				t.Error("expected placeholder description and image")
			}
			if len(payload.Fields) != 0 {
				t.Errorf("expected no fields, got %d", len(payload.Fields))
			}
			if len(payload.Controls) != 4 {
				t.Errorf("expected 4 controls, got %d", len(payload.Controls))
			}
		})
	}
}

func TestRenderStatus_NowPlaying(t *testing.T) {
	q := newTestGuildQueue()
	head := NewTrack("Song T", "https://youtu.be/t", "04:20", "https://img/t.jpg", "alice")
	q.Tracks.Append(head)
	q.Tracks.Append(makeTracks(2)...)
	q.BeginPlayback(head)

	payload := RenderStatus(q)

	if payload.Title != "Now Playing" {
		t.Errorf("expected title %q, got %q", "Now Playing", payload.Title)
	}
	if !strings.Contains(payload.Description, "Song T") ||
		!strings.Contains(payload.Description, "https://youtu.be/t") {
		t.Errorf("expected description to link the head track, got %q", payload.Description)
	}
	if payload.ThumbnailURL != "https://img/t.jpg" {
		t.Errorf("expected thumbnail, got %q", payload.ThumbnailURL)
	}
	if payload.Footer != "2 songs left in queue" {
		t.Errorf("expected footer %q, got %q", "2 songs left in queue", payload.Footer)
	}

	fields := map[string]string{}
	for _, f := range payload.Fields {
		fields[f.Name] = f.Value
	}
	if fields["Duration"] != "04:20" {
		t.Errorf("expected duration field, got %q", fields["Duration"])
	}
	if fields["Requested by"] != "alice" {
		t.Errorf("expected requester field, got %q", fields["Requested by"])
	}
}

func TestRenderStatus_IsPure(t *testing.T) {
	q := newTestGuildQueue()
	q.Tracks.Append(makeTracks(3)...)

	first := RenderStatus(q)
	second := RenderStatus(q)

	if first.Title != second.Title || first.Footer != second.Footer ||
		first.Description != second.Description {
		t.Error("expected identical payloads for unchanged state")
	}
	if q.Tracks.Len() != 3 {
		t.Errorf("expected queue to be untouched, got length %d", q.Tracks.Len())
	}
}

func TestControls(t *testing.T) {
	want := []string{ControlPauseResume, ControlSkip, ControlStop, ControlQueue}

	controls := Controls()
	if len(controls) != len(want) {
		t.Fatalf("expected %d controls, got %d", len(want), len(controls))
	}
	for i, c := range controls {
		if c.ID != want[i] {
			t.Errorf("control %d: expected %q, got %q", i, want[i], c.ID)
		}
		if c.Label == "" {
			t.Errorf("control %d: expected a label", i)
		}
	}
}
