package domain

// Queue is an ordered sequence of tracks. Index 0 is the head track.
type Queue struct {
	tracks []*Track
}

// NewQueue creates a new empty Queue.
func NewQueue() Queue {
	return Queue{
		tracks: make([]*Track, 0),
	}
}

// IsEmpty returns true if the queue has no tracks.
func (q *Queue) IsEmpty() bool {
	return q.Len() == 0
}

// Len returns the total number of tracks in the queue.
func (q *Queue) Len() int {
	return len(q.tracks)
}

// Head returns the track at index 0, or nil if the queue is empty.
func (q *Queue) Head() *Track {
	if q.IsEmpty() {
		return nil
	}
	return q.tracks[0]
}

// Append adds tracks to the tail of the queue, preserving their order.
func (q *Queue) Append(tracks ...*Track) {
	q.tracks = append(q.tracks, tracks...)
}

// PopHead removes and returns the head track, or nil if the queue is empty.
func (q *Queue) PopHead() *Track {
	if q.IsEmpty() {
		return nil
	}
	head := q.tracks[0]
	q.tracks[0] = nil
	q.tracks = q.tracks[1:]
	return head
}

// List returns a copy of all tracks in order.
func (q *Queue) List() []*Track {
	result := make([]*Track, len(q.tracks))
	copy(result, q.tracks)
	return result
}

// Titles returns the titles of the first limit tracks in order.
// A non-positive limit returns every title.
func (q *Queue) Titles(limit int) []string {
	n := q.Len()
	if limit > 0 && limit < n {
		n = limit
	}

	titles := make([]string, n)
	for i := range n {
		titles[i] = q.tracks[i].Title
	}
	return titles
}

// Clear removes all tracks from the queue.
func (q *Queue) Clear() {
	q.tracks = make([]*Track, 0)
}
