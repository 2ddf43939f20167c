package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("baseURL", "https://cdn.example.com/")
	t.Setenv("author", "Jane Host")
	t.Setenv("owner", "Jane")
	t.Setenv("owner_email", "jane@example.com")
	t.Setenv("categories", "Technology,News")
	t.Setenv("bucket", "my-podcast")

	cfg, err := Load()
	require.NoError(t, err)

	assert.EqualValues(t, "https://cdn.example.com", cfg.BaseURL, "trailing slash is trimmed")
	assert.EqualValues(t, "Jane Host", cfg.Author)
	assert.EqualValues(t, "jane@example.com", cfg.OwnerEmail)
	assert.EqualValues(t, []string{"Technology", "News"}, cfg.Categories)
	assert.EqualValues(t, "my-podcast", cfg.Bucket)
	assert.EqualValues(t, DefaultFeedName, cfg.FeedName)
}

func TestLoad_FeedNameOverride(t *testing.T) {
	t.Setenv("filename", "feed.xml")

	cfg, err := Load()
	require.NoError(t, err)
	assert.EqualValues(t, "feed.xml", cfg.FeedName)
}

func TestValidate(t *testing.T) {
	cfg := &Config{BaseURL: "https://cdn.example.com", FeedName: "rss"}
	assert.NoError(t, cfg.Validate())

	cfg = &Config{}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base URL")
	assert.Contains(t, err.Error(), "filename")
}
