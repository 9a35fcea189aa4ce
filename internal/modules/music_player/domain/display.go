package domain

import "fmt"

// Control identifiers carried by the display's buttons.
const (
	ControlPauseResume = "music_pauseplay"
	ControlSkip        = "music_skip"
	ControlStop        = "music_stop"
	ControlQueue       = "music_queue"
)

const (
	idleDescription = "Use `/play` or paste a link in this channel to start!"
	idleImageURL    = "https://media.tenor.com/D-s_hJ_l-9EAAAAC/fox-femboy.gif"
)

// ControlStyle is the visual emphasis of a control.
type ControlStyle int

const (
	ControlStylePrimary ControlStyle = iota
	ControlStyleSecondary
	ControlStyleDanger
)

// Control is a user affordance attached to the display.
type Control struct {
	ID    string
	Label string
	Style ControlStyle
}

// DisplayField is a labelled value shown on the display.
type DisplayField struct {
	Name  string
	Value string
}

// DisplayPayload is the rendered content of the persistent status display.
type DisplayPayload struct {
	Title        string
	Description  string
	ImageURL     string
	ThumbnailURL string
	Fields       []DisplayField
	Footer       string
	Controls     []Control
}

// Controls returns the fixed set of display controls.
func Controls() []Control {
	return []Control{
		{ID: ControlPauseResume, Label: "▶️ / ⏸️", Style: ControlStylePrimary},
		{ID: ControlSkip, Label: "⏭️ Skip", Style: ControlStyleSecondary},
		{ID: ControlStop, Label: "⏹️ Stop", Style: ControlStyleDanger},
		{ID: ControlQueue, Label: "📜 Queue", Style: ControlStyleSecondary},
	}
}

// RenderStatus renders the display payload for the given queue.
// A nil queue renders the same as an empty one.
func RenderStatus(q *GuildQueue) DisplayPayload {
	var head *Track
	if q != nil {
		head = q.Tracks.Head()
	}

	if head == nil {
		return DisplayPayload{
			Title:       "No song playing",
			Description: idleDescription,
			ImageURL:    idleImageURL,
			Controls:    Controls(),
		}
	}

	return DisplayPayload{
		Title:        "Now Playing",
		Description:  fmt.Sprintf("[%s](%s)", head.Title, head.URL),
		ThumbnailURL: head.Thumbnail,
		Fields: []DisplayField{
			{Name: "Duration", Value: head.Duration},
			{Name: "Requested by", Value: head.RequestedBy},
		},
		Footer:   fmt.Sprintf("%d songs left in queue", q.Tracks.Len()-1),
		Controls: Controls(),
	}
}
