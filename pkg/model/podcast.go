package model

import (
	"sync"
	"time"
)

// TrailerID is the reserved episode id that routes files to the trailer
// slot instead of the regular episode sequence.
const TrailerID = "trailer"

// How long before the earliest episode a date-less trailer is published.
const trailerLead = 3 * 24 * time.Hour

// Podcast is the root of the feed model: its own Item files live at the
// top level of the bucket, episodes under id prefixes. One instance is
// built per run from a full listing and discarded after rendering.
type Podcast struct {
	Item

	epMu     sync.Mutex
	episodes []*Episode
	trailer  *Episode
}

func NewPodcast() *Podcast {
	return &Podcast{Item: newItem()}
}

// EnsureEpisode returns the episode for the given id, creating it on first
// sight. Episodes keep their first-seen order; the literal id "trailer"
// maps to the single trailer slot. A new episode inherits the podcast
// keywords known at creation time.
func (p *Podcast) EnsureEpisode(id string) *Episode {
	p.epMu.Lock()
	defer p.epMu.Unlock()

	if id == TrailerID {
		if p.trailer == nil {
			p.trailer = p.createEpisode(id)
		}
		return p.trailer
	}

	for _, e := range p.episodes {
		if e.ID() == id {
			return e
		}
	}

	e := p.createEpisode(id)
	p.episodes = append(p.episodes, e)
	return e
}

func (p *Podcast) createEpisode(id string) *Episode {
	e := NewEpisode(id)
	e.InheritKeywords(p.Keywords())
	return e
}

// Episodes returns the episode sequence in first-seen order.
func (p *Podcast) Episodes() []*Episode {
	p.epMu.Lock()
	defer p.epMu.Unlock()

	return append([]*Episode(nil), p.episodes...)
}

// Trailer returns the trailer episode, or nil if the bucket has none.
func (p *Podcast) Trailer() *Episode {
	p.epMu.Lock()
	defer p.epMu.Unlock()

	return p.trailer
}

// PropagateKeywords pushes the podcast's keywords to every episode that
// exists at this point. Called once the podcast descriptor is parsed;
// episodes created later pick the keywords up at creation instead.
func (p *Podcast) PropagateKeywords() {
	keywords := p.Keywords()
	if len(keywords) == 0 {
		return
	}

	p.epMu.Lock()
	defer p.epMu.Unlock()

	for _, e := range p.episodes {
		e.InheritKeywords(keywords)
	}
	if p.trailer != nil {
		p.trailer.InheritKeywords(keywords)
	}
}

// PublishDate of the feed is the latest of the podcast's own descriptor
// date and the publish dates of all currently ready episodes.
func (p *Podcast) PublishDate(now time.Time) time.Time {
	target := p.PubDate()

	for _, e := range p.Episodes() {
		if e.Ready(now) && e.PublishDate().After(target) {
			target = e.PublishDate()
		}
	}

	return target
}

// TrailerPubDate resolves the date a date-less trailer is published under:
// now if there are no episodes yet, otherwise three days before the
// earliest episode's scheduled date. A trailer whose id parsed as a real
// date keeps it. The model is not mutated, so the resolution always
// reflects the final episode set.
func (p *Podcast) TrailerPubDate(now time.Time) time.Time {
	p.epMu.Lock()
	defer p.epMu.Unlock()

	if p.trailer == nil {
		return Epoch
	}
	if p.trailer.Dated() {
		return p.trailer.ScheduledDate()
	}

	if len(p.episodes) == 0 {
		return now
	}

	earliest := p.episodes[0].ScheduledDate()
	for _, e := range p.episodes[1:] {
		if e.ScheduledDate().Before(earliest) {
			earliest = e.ScheduledDate()
		}
	}

	return earliest.Add(-trailerLead)
}
