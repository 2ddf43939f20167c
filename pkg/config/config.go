// Package config carries the environment-derived settings of the feed
// generator. The value is loaded once at startup and threaded explicitly
// into the builder and renderer.
package config

import (
	"strings"

	"github.com/cristalhq/aconfig"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// DefaultFeedName is the object key the rendered feed is written under
// when the environment doesn't override it.
const DefaultFeedName = "rss"

type Config struct {
	// BaseURL is the public URL the bucket contents are served from.
	BaseURL string `env:"baseURL"`
	// Author shown in itunes:author fields.
	Author string `env:"author"`
	// Owner name and email for itunes:owner, managingEditor and
	// podcast:locked.
	Owner      string `env:"owner"`
	OwnerEmail string `env:"owner_email"`
	// Categories is a comma separated itunes category list.
	Categories []string `env:"categories"`
	// FeedName is the object key the rendered feed is stored under. Files
	// with this exact name are never treated as content.
	FeedName string `env:"filename" default:"rss"`
	// Bucket to process on scheduled runs, when no storage notification
	// names one.
	Bucket string `env:"bucket"`
	// PodcastName identifies the feed in top-level failure reports.
	PodcastName string `env:"podcast_name"`
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	cfg := Config{}

	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		SkipFlags: true,
		SkipFiles: true,
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "failed to load configuration")
	}

	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")

	return &cfg, nil
}

// Validate reports every missing setting the renderer cannot work without.
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.BaseURL == "" {
		result = multierror.Append(result, errors.New("base URL is required"))
	}

	if c.FeedName == "" {
		result = multierror.Append(result, errors.New("feed filename can't be empty"))
	}

	return result.ErrorOrNil()
}
