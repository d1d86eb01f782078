// Package moves fetches daily storylines from the Moves activity tracker.
package moves

import (
	"context"
	"fmt"
	"net/url"

	"github.com/mrwolf/daybook/internal/dates"
	"github.com/mrwolf/daybook/internal/storyline"
	"github.com/mrwolf/daybook/internal/transport"
)

// Client fetches storylines for one user.
type Client struct {
	http        *transport.Client
	baseURL     string
	accessToken string
}

// NewClient creates a Moves client.
func NewClient(baseURL, accessToken string, opts transport.Options) *Client {
	opts.Name = "moves"
	return &Client{
		http:        transport.New(opts),
		baseURL:     baseURL,
		accessToken: accessToken,
	}
}

// Storyline fetches the storyline for day. The API answers with a list of
// days; only the first is used. An empty answer is storyline.ErrNoStorylineData.
func (c *Client) Storyline(ctx context.Context, day dates.Date, trackPoints bool) (*storyline.Day, error) {
	q := url.Values{}
	q.Set("trackPoints", fmt.Sprint(trackPoints))
	q.Set("access_token", c.accessToken)
	endpoint := c.baseURL + "/user/storyline/daily/" + day.Format("20060102") + "?" + q.Encode()

	var days []apiDay
	if err := c.http.GetJSON(ctx, endpoint, &days); err != nil {
		return nil, fmt.Errorf("fetching storyline for %s: %w", day, err)
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("storyline for %s: %w", day, storyline.ErrNoStorylineData)
	}

	return days[0].toDay(), nil
}
