package model

import (
	"sync"
	"time"
)

// Episode id formats that count as a scheduled date. Anything else (the
// trailer in particular) leaves the episode without a publish-date gate.
var scheduledDateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// Episode is a single podcast entry, keyed by the top-level segment of its
// object keys. The id doubles as the default title and, when it parses as
// a date, as the earliest moment the episode may appear in the feed.
type Episode struct {
	Item

	id            string
	scheduledDate time.Time

	metaMu     sync.Mutex
	metaLoaded bool
	mediaSize  int64
	duration   int64

	inheritMu sync.Mutex
	inherited bool
}

// NewEpisode creates an episode for the given id. The title defaults to
// the id until a descriptor overrides it.
func NewEpisode(id string) *Episode {
	e := &Episode{
		Item:          newItem(),
		id:            id,
		scheduledDate: parseScheduledDate(id),
	}
	e.setTitle(id)

	return e
}

func parseScheduledDate(id string) time.Time {
	for _, layout := range scheduledDateLayouts {
		if t, err := time.Parse(layout, id); err == nil {
			return t.UTC()
		}
	}

	return Epoch
}

func (e *Episode) ID() string {
	return e.id
}

// ScheduledDate is the date parsed from the episode id, or Epoch if the id
// is not a date.
func (e *Episode) ScheduledDate() time.Time {
	return e.scheduledDate
}

// Dated reports whether the episode id carried a real scheduled date.
func (e *Episode) Dated() bool {
	return !e.scheduledDate.Equal(Epoch)
}

// PublishDate of an episode is its scheduled date, not the descriptor
// timestamp.
func (e *Episode) PublishDate() time.Time {
	return e.scheduledDate
}

// BeginMetadataLoad flips the one-shot media metadata flag. It returns
// true exactly once, so repeated media file arrivals don't re-fetch the
// audio object.
func (e *Episode) BeginMetadataLoad() bool {
	e.metaMu.Lock()
	defer e.metaMu.Unlock()

	if e.metaLoaded {
		return false
	}

	e.metaLoaded = true
	return true
}

// SetMediaMetadata records the media object's byte length and playback
// duration in whole seconds.
func (e *Episode) SetMediaMetadata(size, duration int64) {
	e.metaMu.Lock()
	defer e.metaMu.Unlock()

	e.mediaSize = size
	e.duration = duration
}

func (e *Episode) MediaSize() int64 {
	e.metaMu.Lock()
	defer e.metaMu.Unlock()

	return e.mediaSize
}

// Duration is the media playback time in seconds.
func (e *Episode) Duration() int64 {
	e.metaMu.Lock()
	defer e.metaMu.Unlock()

	return e.duration
}

// InheritKeywords appends podcast-level keywords after the episode's own
// ones. The podcast pushes its keywords both at episode creation and again
// when its descriptor is parsed, so application is guarded to happen once.
func (e *Episode) InheritKeywords(keywords []string) {
	if len(keywords) == 0 {
		return
	}

	e.inheritMu.Lock()
	defer e.inheritMu.Unlock()

	if e.inherited {
		return
	}

	e.inherited = true
	e.AppendKeywords(keywords)
}

// Ready reports whether the episode may appear in rendered output: it has
// a media file, a non-empty title, a positive decoded duration, and its
// scheduled date has passed.
func (e *Episode) Ready(now time.Time) bool {
	return e.Media() != "" &&
		e.Title() != "" &&
		e.Duration() > 0 &&
		now.After(e.scheduledDate)
}
