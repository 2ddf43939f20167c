// Package builder turns the flat key listing of a podcast bucket into a
// populated model.Podcast: keys are routed to the podcast or to episodes by
// their prefix, classified by suffix, and enriched with descriptor and
// media metadata fetched concurrently.
package builder

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/marksup/podcx/pkg/descriptor"
	"github.com/marksup/podcx/pkg/fs"
	"github.com/marksup/podcx/pkg/model"
)

// DurationFunc decodes the playback duration of a raw audio payload.
type DurationFunc func(data []byte) (time.Duration, error)

// item is the slice of the model a single file lands on. Both the Podcast
// and each Episode satisfy it.
type item interface {
	ApplyDescriptor(d descriptor.Descriptor, modified time.Time)
	AddImage(size int, key string)
	SetMedia(key string)
}

type Builder struct {
	storage  fs.Storage
	duration DurationFunc
	feedName string
}

func New(storage fs.Storage, duration DurationFunc, feedName string) *Builder {
	return &Builder{
		storage:  storage,
		duration: duration,
		feedName: feedName,
	}
}

// Build lists the bucket and assembles the full podcast model. Per-file
// operations run concurrently; Build returns only after every one of them
// has finished. Unrecognized or malformed files are logged and skipped,
// while any storage failure aborts the build.
func (b *Builder) Build(ctx context.Context) (*model.Podcast, error) {
	keys, err := b.storage.ListKeys(ctx)
	if err != nil {
		return nil, err
	}

	log.Debugf("processing %d object(s)", len(keys))

	podcast := model.NewPodcast()
	group, ctx := errgroup.WithContext(ctx)

	for _, key := range keys {
		prefix, rest, nested := strings.Cut(key, "/")

		switch {
		case !nested:
			name := prefix
			group.Go(func() error {
				return b.addPodcastFile(ctx, podcast, name)
			})
		case rest == "":
			// A zero-length directory marker, carries no content.
			log.Debugf("skipping directory marker %q", key)
		default:
			ep := podcast.EnsureEpisode(prefix)
			name := rest
			group.Go(func() error {
				return b.addEpisodeFile(ctx, ep, name)
			})
		}
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	log.Debugf("finished processing, %d episode(s)", len(podcast.Episodes()))
	return podcast, nil
}

func (b *Builder) addPodcastFile(ctx context.Context, podcast *model.Podcast, name string) error {
	kind, err := b.addFile(ctx, podcast, "", name)
	if err != nil || kind != fileDescriptor {
		return err
	}

	// The podcast descriptor may carry keywords every episode inherits.
	podcast.PropagateKeywords()
	return nil
}

func (b *Builder) addEpisodeFile(ctx context.Context, ep *model.Episode, name string) error {
	kind, err := b.addFile(ctx, ep, ep.ID()+"/", name)
	if err != nil || kind != fileMedia {
		return err
	}

	return b.loadMediaMetadata(ctx, ep)
}

// addFile classifies a single file and applies it to the owning item. The
// public-read grant is enforced for every successfully classified content
// file.
func (b *Builder) addFile(ctx context.Context, it item, keyPrefix, name string) (fileKind, error) {
	key := keyPrefix + name
	kind, size := classify(name, b.feedName)

	switch kind {
	case fileIgnored:
		return kind, nil

	case fileUnknown:
		log.Warnf("unrecognized file %q, skipping", key)
		return kind, nil

	case fileImage:
		if size == 0 {
			log.Warnf("no image size in file name %q, skipping", key)
			return fileUnknown, nil
		}
		it.AddImage(size, name)

	case fileMedia:
		it.SetMedia(name)

	case fileDescriptor:
		obj, err := b.storage.GetObject(ctx, key)
		if err != nil {
			return kind, errors.Wrapf(err, "failed to fetch descriptor %q", key)
		}
		it.ApplyDescriptor(descriptor.Parse(string(obj.Body)), obj.LastModified)
	}

	if err := b.storage.EnsurePublicRead(ctx, key); err != nil {
		return kind, errors.Wrapf(err, "failed to verify access to %q", key)
	}

	return kind, nil
}

// loadMediaMetadata fetches the episode's audio object and records its
// byte length and duration. Guarded by a one-shot flag, so a repeated
// media arrival doesn't fetch twice.
func (b *Builder) loadMediaMetadata(ctx context.Context, ep *model.Episode) error {
	if !ep.BeginMetadataLoad() {
		return nil
	}

	key := ep.ID() + "/" + ep.Media()
	logger := log.WithField("episode_id", ep.ID())

	logger.Debugf("loading media %s", key)
	obj, err := b.storage.GetObject(ctx, key)
	if err != nil {
		return errors.Wrapf(err, "failed to fetch media %q", key)
	}

	duration, err := b.duration(obj.Body)
	if err != nil {
		// A broken payload keeps the episode out of the feed via the
		// readiness gate, it doesn't abort the run.
		logger.WithError(err).Errorf("failed to decode duration of %s", key)
		return nil
	}

	ep.SetMediaMetadata(obj.Size, int64(duration.Seconds()))
	logger.Debugf("media duration is %ds", int64(duration.Seconds()))
	return nil
}
