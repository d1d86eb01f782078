// Package mappiness reads the mood samples a Mappiness user exports as JSON.
package mappiness

import (
	"context"
	"fmt"

	"github.com/mrwolf/daybook/internal/mood"
	"github.com/mrwolf/daybook/internal/transport"
)

// Client reads one user's export feed.
type Client struct {
	http *transport.Client
	url  string
}

// NewClient creates a client for the feed at url.
func NewClient(url string, opts transport.Options) *Client {
	opts.Name = "mappiness"
	return &Client{
		http: transport.New(opts),
		url:  url,
	}
}

// RecentSamples returns the feed's samples, most recent first.
func (c *Client) RecentSamples(ctx context.Context) ([]mood.Sample, error) {
	var samples []mood.Sample
	if err := c.http.GetJSON(ctx, c.url, &samples); err != nil {
		return nil, fmt.Errorf("fetching mood samples: %w", err)
	}
	return samples, nil
}
