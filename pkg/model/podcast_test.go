package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marksup/podcx/pkg/descriptor"
)

func TestPodcast_EnsureEpisode(t *testing.T) {
	p := NewPodcast()

	a := p.EnsureEpisode("2024-01-10")
	b := p.EnsureEpisode("2024-01-17")
	again := p.EnsureEpisode("2024-01-10")

	assert.Same(t, a, again)

	eps := p.Episodes()
	require.Len(t, eps, 2)
	assert.Same(t, a, eps[0])
	assert.Same(t, b, eps[1])
}

func TestPodcast_TrailerSlot(t *testing.T) {
	p := NewPodcast()

	assert.Nil(t, p.Trailer())

	tr := p.EnsureEpisode(TrailerID)
	assert.Same(t, tr, p.Trailer())
	assert.Same(t, tr, p.EnsureEpisode(TrailerID))
	assert.Empty(t, p.Episodes(), "trailer must not join the episode sequence")
}

func TestPodcast_KeywordPropagation(t *testing.T) {
	p := NewPodcast()
	early := p.EnsureEpisode("2024-01-10")
	early.ApplyDescriptor(descriptor.Descriptor{Title: "one", Keywords: []string{"own"}}, time.Now())

	p.ApplyDescriptor(descriptor.Descriptor{Title: "Show", Keywords: []string{"show", "tech"}}, time.Now())
	p.PropagateKeywords()

	// Existing episodes get the podcast keywords pushed, after their own.
	assert.EqualValues(t, []string{"own", "show", "tech"}, early.Keywords())

	// Episodes created afterward inherit at creation time.
	late := p.EnsureEpisode("2024-01-17")
	assert.EqualValues(t, []string{"show", "tech"}, late.Keywords())

	// A second push must not duplicate.
	p.PropagateKeywords()
	assert.EqualValues(t, []string{"own", "show", "tech"}, early.Keywords())
	assert.EqualValues(t, []string{"show", "tech"}, late.Keywords())
}

func TestPodcast_PublishDate(t *testing.T) {
	now := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	descriptorDate := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

	p := NewPodcast()
	p.ApplyDescriptor(descriptor.Descriptor{Title: "Show"}, descriptorDate)

	assert.Equal(t, descriptorDate, p.PublishDate(now))

	// A ready episode with a later date moves the feed date forward.
	e := p.EnsureEpisode("2024-01-10")
	e.SetMedia("e.mp3")
	e.SetMediaMetadata(10, 60)
	assert.Equal(t, e.ScheduledDate(), p.PublishDate(now))

	// An episode that is not ready is ignored even if it is newer.
	p.EnsureEpisode("2024-01-20")
	assert.Equal(t, e.ScheduledDate(), p.PublishDate(now))
}

func TestPodcast_TrailerPubDate(t *testing.T) {
	now := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	p := NewPodcast()
	assert.Equal(t, Epoch, p.TrailerPubDate(now))

	p.EnsureEpisode(TrailerID)

	// No episodes yet: the trailer publishes now.
	assert.Equal(t, now, p.TrailerPubDate(now))

	// With episodes: three days before the earliest scheduled date.
	p.EnsureEpisode("2024-01-17")
	p.EnsureEpisode("2024-01-10")
	expected := time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, expected, p.TrailerPubDate(now))
}

func TestPodcast_TrailerWithRealDateKeepsIt(t *testing.T) {
	p := NewPodcast()
	tr := p.EnsureEpisode(TrailerID)
	tr.scheduledDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, tr.scheduledDate, p.TrailerPubDate(time.Now()))
}
