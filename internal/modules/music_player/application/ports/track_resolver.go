package ports

import (
	"context"

	"github.com/floofybot/floofy/internal/modules/music_player/domain"
)

// TrackDescriptor describes a resolved track.
type TrackDescriptor struct {
	Title     string
	URL       string // empty if the source exposed no playable locator
	Duration  string
	Thumbnail string
}

// PlaylistDescriptor describes a resolved playlist.
type PlaylistDescriptor struct {
	Name   string
	URL    string
	Tracks []TrackDescriptor // members already known from resolution, if any
}

// ResolvedResult carries either a single track or a playlist.
type ResolvedResult struct {
	Track    *TrackDescriptor
	Playlist *PlaylistDescriptor
}

// IsPlaylist returns true if the result is a playlist.
func (r ResolvedResult) IsPlaylist() bool {
	return r.Playlist != nil
}

// TrackResolver defines the interface for turning queries into playable tracks.
type TrackResolver interface {
	// Search resolves a query or URL into at most limit results.
	Search(ctx context.Context, query string, limit int) ([]ResolvedResult, error)

	// ListMembers enumerates all member tracks of a playlist.
	ListMembers(ctx context.Context, playlist *PlaylistDescriptor) ([]TrackDescriptor, error)

	// OpenStream obtains a playable resource for a track URL.
	OpenStream(ctx context.Context, url string) (domain.StreamHandle, error)

	// IsPlayableLink reports whether text is a link the resolver can play.
	IsPlayableLink(text string) bool
}
