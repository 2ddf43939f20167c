// Package model holds the podcast object graph assembled from a bucket
// listing: a Podcast, its Episodes, and the Item block both share.
package model

import (
	"sort"
	"sync"
	"time"

	"github.com/marksup/podcx/pkg/descriptor"
)

// Epoch is the publish date of an item whose descriptor has not been
// loaded yet, and the scheduled date of an episode whose id does not
// parse as a date.
var Epoch = time.Unix(0, 0).UTC()

// Item is the set of fields shared by Podcast and Episode: a descriptor
// (title, description, keywords, publish date), image size variants and a
// single media object. Fields are filled in as files arrive, possibly from
// concurrent goroutines, and once set are never cleared. The only
// overwrite allowed is a later media key replacing an earlier one.
type Item struct {
	mu sync.Mutex

	title       string
	description string
	images      map[int]string
	media       string
	keywords    []string
	pubDate     time.Time
}

func newItem() Item {
	return Item{
		images:  make(map[int]string),
		pubDate: Epoch,
	}
}

// ApplyDescriptor sets title, description and keywords from a parsed
// descriptor. The storage last-modified timestamp of the descriptor object
// becomes the item's publish date.
func (i *Item) ApplyDescriptor(d descriptor.Descriptor, modified time.Time) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.title = d.Title
	i.description = d.Description
	i.keywords = append(d.Keywords, i.keywords...)
	i.pubDate = modified
}

// AddImage registers an image variant of the given pixel size. At most one
// image per size, later arrivals of the same size win.
func (i *Item) AddImage(size int, key string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.images[size] = key
}

// SetMedia sets the single audio object key. Last write wins.
func (i *Item) SetMedia(key string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.media = key
}

// AppendKeywords adds keywords after the item's own ones.
func (i *Item) AppendKeywords(keywords []string) {
	if len(keywords) == 0 {
		return
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	i.keywords = append(i.keywords, keywords...)
}

func (i *Item) Title() string {
	i.mu.Lock()
	defer i.mu.Unlock()

	return i.title
}

func (i *Item) Description() string {
	i.mu.Lock()
	defer i.mu.Unlock()

	return i.description
}

func (i *Item) Media() string {
	i.mu.Lock()
	defer i.mu.Unlock()

	return i.media
}

func (i *Item) Keywords() []string {
	i.mu.Lock()
	defer i.mu.Unlock()

	return append([]string(nil), i.keywords...)
}

// PubDate is the descriptor's last-modified timestamp, or Epoch if no
// descriptor has been loaded.
func (i *Item) PubDate() time.Time {
	i.mu.Lock()
	defer i.mu.Unlock()

	return i.pubDate
}

// Image returns the key registered for the given size.
func (i *Item) Image(size int) string {
	i.mu.Lock()
	defer i.mu.Unlock()

	return i.images[size]
}

// ImageSizes returns all registered sizes in ascending order.
func (i *Item) ImageSizes() []int {
	i.mu.Lock()
	defer i.mu.Unlock()

	sizes := make([]int, 0, len(i.images))
	for size := range i.images {
		sizes = append(sizes, size)
	}

	sort.Ints(sizes)
	return sizes
}

func (i *Item) setTitle(title string) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.title = title
}
