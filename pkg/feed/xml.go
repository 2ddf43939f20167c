// Package feed renders a populated model.Podcast into an RSS 2.0 document
// with the itunes and podcast namespace extensions. Rendering is a pure
// transformation: the model is never mutated, and re-rendering unchanged
// input yields byte-identical output apart from lastBuildDate.
package feed

import (
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/marksup/podcx/pkg/config"
	"github.com/marksup/podcx/pkg/model"
)

const (
	// GeneratorVersion identifies this renderer in the channel metadata.
	GeneratorVersion = "1.0"
	GeneratorName    = "MarksUpPodCX/" + GeneratorVersion

	itunesNS  = "http://www.itunes.com/dtds/podcast-1.0.dtd"
	atomNS    = "http://www.w3.org/2005/Atom"
	podcastNS = "https://github.com/Podcastindex-org/podcast-namespace/blob/main/docs/1.0.md"

	// RFC822 with a numeric zone, the way podcast clients expect dates.
	rfc822 = "Mon, 02 Jan 2006 15:04:05 -0700"
)

type xmlCDATA struct {
	Text string `xml:",cdata"`
}

type xmlAtomLink struct {
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
	Type string `xml:"type,attr"`
}

type xmlLocked struct {
	Owner string `xml:"owner,attr"`
	Value string `xml:",chardata"`
}

type xmlOwner struct {
	Email string `xml:"itunes:email"`
	Name  string `xml:"itunes:name"`
}

type xmlChannelImage struct {
	URL         string   `xml:"url"`
	Link        string   `xml:"link"`
	Title       string   `xml:"title"`
	Description xmlCDATA `xml:"description"`
	Width       int      `xml:"width"`
	Height      int      `xml:"height"`
}

type xmlCategory struct {
	Text string `xml:"text,attr"`
}

type xmlHref struct {
	Href string `xml:"href,attr"`
}

type xmlSrcset struct {
	Srcset string `xml:"srcset,attr"`
}

type xmlGUID struct {
	IsPermaLink string `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type xmlEnclosure struct {
	URL    string `xml:"url,attr"`
	Type   string `xml:"type,attr"`
	Length int64  `xml:"length,attr"`
}

type xmlItem struct {
	Title        string       `xml:"title"`
	Description  xmlCDATA     `xml:"description"`
	Link         string       `xml:"link"`
	GUID         xmlGUID      `xml:"guid"`
	PubDate      string       `xml:"pubDate"`
	Subtitle     string       `xml:"itunes:subtitle"`
	Summary      xmlCDATA     `xml:"itunes:summary"`
	ItunesAuthor string       `xml:"itunes:author"`
	Author       string       `xml:"author"`
	Explicit     string       `xml:"itunes:explicit"`
	Keywords     string       `xml:"itunes:keywords"`
	Enclosure    xmlEnclosure `xml:"enclosure"`
	Duration     int64        `xml:"itunes:duration"`
	ItunesImage  *xmlHref     `xml:"itunes:image,omitempty"`
	Images       *xmlSrcset   `xml:"podcast:images,omitempty"`
}

type xmlChannel struct {
	Title          string           `xml:"title"`
	Description    xmlCDATA         `xml:"description"`
	Link           string           `xml:"link"`
	AtomLink       xmlAtomLink      `xml:"atom:link"`
	Language       string           `xml:"language"`
	Generator      string           `xml:"generator"`
	PubDate        string           `xml:"pubDate"`
	LastBuildDate  string           `xml:"lastBuildDate"`
	Locked         xmlLocked        `xml:"podcast:locked"`
	ManagingEditor string           `xml:"managingEditor"`
	Owner          xmlOwner         `xml:"itunes:owner"`
	Image          *xmlChannelImage `xml:"image,omitempty"`
	Summary        xmlCDATA         `xml:"itunes:summary"`
	Author         string           `xml:"itunes:author"`
	ItunesImage    *xmlHref         `xml:"itunes:image,omitempty"`
	Explicit       string           `xml:"itunes:explicit"`
	Keywords       string           `xml:"itunes:keywords"`
	Categories     []xmlCategory    `xml:"itunes:category"`
	GUID           string           `xml:"podcast:guid"`
	Medium         string           `xml:"podcast:medium"`
	Images         *xmlSrcset       `xml:"podcast:images,omitempty"`
	Items          []xmlItem        `xml:"item"`
}

type xmlFeed struct {
	XMLName   xml.Name   `xml:"rss"`
	ItunesNS  string     `xml:"xmlns:itunes,attr"`
	AtomNS    string     `xml:"xmlns:atom,attr"`
	PodcastNS string     `xml:"xmlns:podcast,attr"`
	Version   string     `xml:"version,attr"`
	Channel   xmlChannel `xml:"channel"`
}

// Render produces the feed document for a fully aggregated podcast. The
// trailer, if any, comes first with its fallback-resolved date, followed
// by every ready episode in first-seen order.
func Render(p *model.Podcast, cfg *config.Config, now time.Time) ([]byte, error) {
	baseURL := cfg.BaseURL + "/"
	feedURL := baseURL + cfg.FeedName

	channel := xmlChannel{
		Title:          p.Title(),
		Description:    xmlCDATA{p.Description()},
		Link:           feedURL,
		AtomLink:       xmlAtomLink{Rel: "self", Href: feedURL, Type: "application/rss+xml"},
		Language:       "en",
		Generator:      GeneratorName,
		PubDate:        formatDate(p.PublishDate(now)),
		LastBuildDate:  formatDate(now),
		Locked:         xmlLocked{Owner: cfg.OwnerEmail, Value: "yes"},
		ManagingEditor: fmt.Sprintf("%s (%s)", cfg.OwnerEmail, cfg.Owner),
		Owner:          xmlOwner{Email: cfg.OwnerEmail, Name: cfg.Owner},
		Summary:        xmlCDATA{p.Description()},
		Author:         cfg.Author,
		Explicit:       "no",
		Keywords:       strings.Join(p.Keywords(), ","),
		Categories:     categories(cfg.Categories),
		GUID:           guid(baseURL),
		Medium:         "podcast",
	}

	if sizes := p.ImageSizes(); len(sizes) > 0 {
		largest := sizes[len(sizes)-1]

		channel.Image = &xmlChannelImage{
			URL:         imageURL(baseURL, p.Image(largest)),
			Link:        feedURL,
			Title:       p.Title(),
			Description: xmlCDATA{p.Description()},
			Width:       largest,
			Height:      largest,
		}
		channel.ItunesImage = &xmlHref{Href: imageURL(baseURL, p.Image(largest))}
		channel.Images = &xmlSrcset{Srcset: srcset(baseURL, &p.Item, sizes)}
	}

	if trailer := p.Trailer(); trailer != nil && trailerReady(trailer, now) {
		channel.Items = append(channel.Items, renderItem(trailer, p.TrailerPubDate(now), cfg, baseURL))
	}

	for _, ep := range p.Episodes() {
		if !ep.Ready(now) {
			continue
		}
		channel.Items = append(channel.Items, renderItem(ep, ep.PublishDate(), cfg, baseURL))
	}

	out, err := xml.MarshalIndent(&xmlFeed{
		ItunesNS:  itunesNS,
		AtomNS:    atomNS,
		PodcastNS: podcastNS,
		Version:   "2.0",
		Channel:   channel,
	}, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal feed")
	}

	return out, nil
}

func renderItem(ep *model.Episode, pubDate time.Time, cfg *config.Config, baseURL string) xmlItem {
	itemURL := baseURL + ep.ID() + "/"

	item := xmlItem{
		Title:        ep.Title(),
		Description:  xmlCDATA{ep.Description()},
		Link:         baseURL + ep.ID(),
		GUID:         xmlGUID{IsPermaLink: "false", Value: guid(itemURL)},
		PubDate:      formatDate(pubDate),
		Subtitle:     ep.Title(),
		Summary:      xmlCDATA{ep.Description()},
		ItunesAuthor: cfg.Author,
		Author:       fmt.Sprintf("%s (%s)", cfg.OwnerEmail, cfg.Author),
		Explicit:     "no",
		Keywords:     strings.Join(ep.Keywords(), ","),
		Enclosure: xmlEnclosure{
			URL:    itemURL + ep.Media(),
			Type:   "audio/mpeg",
			Length: ep.MediaSize(),
		},
		Duration: ep.Duration(),
	}

	if sizes := ep.ImageSizes(); len(sizes) > 0 {
		largest := sizes[len(sizes)-1]
		item.ItunesImage = &xmlHref{Href: imageURL(itemURL, ep.Image(largest))}
		item.Images = &xmlSrcset{Srcset: srcset(itemURL, &ep.Item, sizes)}
	}

	return item
}

// trailerReady gates the trailer like any other episode except that the
// date check runs against its original scheduled date. The synthesized
// fallback date only decides what pubDate the trailer is rendered with.
func trailerReady(trailer *model.Episode, now time.Time) bool {
	return trailer.Ready(now)
}

// guid derives a stable identifier from a canonical URL, so re-renders
// produce identical ids for unchanged URLs.
func guid(canonicalURL string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(canonicalURL)).String()
}

func formatDate(t time.Time) string {
	return t.UTC().Format(rfc822)
}

func imageURL(base, key string) string {
	return base + url.PathEscape(key)
}

// srcset lists every image variant with its width, smallest first.
func srcset(base string, item *model.Item, sizes []int) string {
	entries := lo.Map(sizes, func(size int, _ int) string {
		return fmt.Sprintf("%s %dw", imageURL(base, item.Image(size)), size)
	})

	return strings.Join(entries, ", ")
}

func categories(list []string) []xmlCategory {
	trimmed := lo.FilterMap(list, func(c string, _ int) (xmlCategory, bool) {
		c = strings.TrimSpace(c)
		return xmlCategory{Text: c}, c != ""
	})

	return trimmed
}
