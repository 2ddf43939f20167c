package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/marksup/podcx/pkg/builder"
	"github.com/marksup/podcx/pkg/config"
	"github.com/marksup/podcx/pkg/feed"
	"github.com/marksup/podcx/pkg/fs"
	"github.com/marksup/podcx/pkg/media"
)

type Opts struct {
	Bucket   string `long:"bucket" short:"b" description:"bucket to build the feed from (defaults to the bucket environment variable)"`
	Schedule string `long:"schedule" description:"cron expression for periodic rebuilds; runs once when empty"`
	Debug    bool   `long:"debug"`
}

var (
	version = "dev"
	commit  = "none"
)

func main() {
	log.SetFormatter(&log.TextFormatter{
		TimestampFormat: time.RFC3339,
		FullTimestamp:   true,
	})

	opts := Opts{}
	if _, err := flags.Parse(&opts); err != nil {
		log.WithError(err).Fatal("failed to parse command line arguments")
	}

	if opts.Debug {
		log.SetLevel(log.DebugLevel)
	}

	log.WithFields(log.Fields{
		"version": version,
		"commit":  commit,
	}).Infof("running %s feed generator", feed.GeneratorName)

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	bucket := opts.Bucket
	if bucket == "" {
		bucket = cfg.Bucket
	}
	if bucket == "" {
		log.Fatal("no bucket specified, pass --bucket or set the `bucket` environment variable")
	}

	if opts.Schedule == "" {
		if err := update(context.Background(), cfg, bucket); err != nil {
			log.WithError(err).Fatal("feed update failed")
		}
		return
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	group, ctx := errgroup.WithContext(ctx)

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	if _, err := c.AddFunc(opts.Schedule, func() {
		if err := update(ctx, cfg, bucket); err != nil {
			log.WithError(err).Error("feed update failed")
		}
	}); err != nil {
		log.WithError(err).Fatalf("can't create cron task for schedule %q", opts.Schedule)
	}

	// Initial update on start, then on schedule.
	if err := update(ctx, cfg, bucket); err != nil {
		log.WithError(err).Error("feed update failed")
	}

	c.Start()

	group.Go(func() error {
		defer func() {
			log.Info("shutting down cron")
			c.Stop()
		}()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			cancel()
			return nil
		}
	})

	if err := group.Wait(); err != nil && err != context.Canceled {
		log.WithError(err).Error("wait error")
	}

	log.Info("gracefully stopped")
}

func update(ctx context.Context, cfg *config.Config, bucket string) error {
	log.Infof("-> updating feed for bucket %s", bucket)
	started := time.Now()

	storage, err := fs.NewS3(bucket)
	if err != nil {
		return err
	}

	podcast, err := builder.New(storage, media.Duration, cfg.FeedName).Build(ctx)
	if err != nil {
		return err
	}

	out, err := feed.Render(podcast, cfg, time.Now().UTC())
	if err != nil {
		return err
	}

	if err := storage.Create(ctx, cfg.FeedName, "application/xml", out); err != nil {
		return err
	}

	log.Infof("successfully updated feed in %s", time.Since(started))
	return nil
}
