package main

import (
	"context"
	"net/url"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/marksup/podcx/pkg/builder"
	"github.com/marksup/podcx/pkg/config"
	"github.com/marksup/podcx/pkg/feed"
	"github.com/marksup/podcx/pkg/fs"
	"github.com/marksup/podcx/pkg/media"
)

// event covers both triggers the function is wired to: an S3 change
// notification carrying Records, and a scheduled CloudWatch refresh
// carrying source "aws.events".
type event struct {
	Source  string                 `json:"source"`
	Records []events.S3EventRecord `json:"Records"`
}

const scheduledEventSource = "aws.events"

var cfg *config.Config

func init() {
	log.SetFormatter(&log.TextFormatter{
		TimestampFormat: time.RFC3339,
		FullTimestamp:   true,
	})

	var err error
	cfg, err = config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	log.Infof("starting %s RSS generator for %s", feed.GeneratorName, cfg.PodcastName)
}

func handler(ctx context.Context, ev event) error {
	bucket := cfg.Bucket

	if ev.Source != scheduledEventSource && len(ev.Records) > 0 {
		record := ev.Records[0]
		bucket = record.S3.Bucket.Name

		key, err := url.QueryUnescape(record.S3.Object.Key)
		if err != nil {
			return errors.Wrapf(err, "failed to decode object key %q", record.S3.Object.Key)
		}

		// A write of the feed itself triggers a notification too, don't
		// loop on it.
		if key == cfg.FeedName {
			log.Info("ignoring changes to the RSS feed itself")
			return nil
		}
	}

	if bucket == "" {
		log.Error("cannot determine source bucket, set the `bucket` environment variable for scheduled runs")
		return nil
	}

	return update(ctx, bucket)
}

func update(ctx context.Context, bucket string) error {
	log.Infof("-> updating feed for bucket %s", bucket)
	started := time.Now()

	storage, err := fs.NewS3(bucket)
	if err != nil {
		return errors.Wrapf(err, "failed to generate RSS feed for %q", cfg.PodcastName)
	}

	podcast, err := builder.New(storage, media.Duration, cfg.FeedName).Build(ctx)
	if err != nil {
		return errors.Wrapf(err, "failed to generate RSS feed for %q", cfg.PodcastName)
	}

	out, err := feed.Render(podcast, cfg, time.Now().UTC())
	if err != nil {
		return errors.Wrapf(err, "failed to generate RSS feed for %q", cfg.PodcastName)
	}

	if err := storage.Create(ctx, cfg.FeedName, "application/xml", out); err != nil {
		return errors.Wrapf(err, "failed to generate RSS feed for %q", cfg.PodcastName)
	}

	log.Infof("successfully updated feed in %s", time.Since(started))
	return nil
}

func main() {
	lambda.Start(handler)
}
