package domain

import (
	"strconv"
	"strings"
	"time"
)

// UnknownTitle is shown for tracks whose source provided no title.
const UnknownTitle = "Unknown Title"

// Track represents a queued audio track.
type Track struct {
	Title       string
	URL         string // playable locator; a track without one is never played
	Duration    string // display string, e.g. "03:25" or "LIVE"
	Thumbnail   string
	RequestedBy string // display name of the requester, captured at enqueue time
}

// NewTrack creates a new Track with the given parameters.
func NewTrack(title, url, duration, thumbnail, requestedBy string) *Track {
	title = strings.TrimSpace(title)
	if title == "" {
		title = UnknownTitle
	}

	return &Track{
		Title:       title,
		URL:         strings.TrimSpace(url),
		Duration:    duration,
		Thumbnail:   thumbnail,
		RequestedBy: requestedBy,
	}
}

// IsPlayable returns true if the track has a usable locator.
func (t *Track) IsPlayable() bool {
	return t != nil && t.URL != ""
}

// FormatDuration returns the duration as a human-readable string (mm:ss or hh:mm:ss).
func FormatDuration(d time.Duration, isStream bool) string {
	if isStream {
		return "LIVE"
	}

	totalSeconds := int(d.Seconds())
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return formatTime(hours, minutes, seconds)
	}
	return formatTimeShort(minutes, seconds)
}

func formatTime(hours, minutes, seconds int) string {
	return pad(hours) + ":" + pad(minutes) + ":" + pad(seconds)
}

func formatTimeShort(minutes, seconds int) string {
	return pad(minutes) + ":" + pad(seconds)
}

func pad(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
