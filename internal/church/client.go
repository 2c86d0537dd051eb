package church

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Client reads the church API over HTTP. It offers the same read methods as
// Store so either can back the dashboard.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient returns a client for the API rooted at baseURL.
func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: hc}
}

// Members returns one directory page.
func (c *Client) Members(ctx context.Context, page, size int) (MemberPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	var out MemberPage
	err := c.get(ctx, "/api/members?"+q.Encode(), &out)
	return out, err
}

// Member returns one member.
func (c *Client) Member(ctx context.Context, id int) (Member, error) {
	var out Member
	err := c.get(ctx, fmt.Sprintf("/api/members/%d", id), &out)
	return out, err
}

// Events lists events.
func (c *Client) Events(ctx context.Context) ([]Event, error) {
	var out []Event
	err := c.get(ctx, "/api/events", &out)
	return out, err
}

// Gifts lists gifts, newest first.
func (c *Client) Gifts(ctx context.Context) ([]Gift, error) {
	var out []Gift
	err := c.get(ctx, "/api/giving", &out)
	return out, err
}

// FundTotals returns per-fund sums.
func (c *Client) FundTotals(ctx context.Context) ([]FundTotal, error) {
	var out []FundTotal
	err := c.get(ctx, "/api/giving/totals", &out)
	return out, err
}

// Classes lists Sunday school classes.
func (c *Client) Classes(ctx context.Context) ([]Class, error) {
	var out []Class
	err := c.get(ctx, "/api/classes", &out)
	return out, err
}

// Announcements lists announcements.
func (c *Client) Announcements(ctx context.Context) ([]Announcement, error) {
	var out []Announcement
	err := c.get(ctx, "/api/announcements", &out)
	return out, err
}

// PhotoURL returns the absolute URL of a member photo path.
func (c *Client) PhotoURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.BaseURL + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	case resp.StatusCode == http.StatusServiceUnavailable:
		return fmt.Errorf("%w: %s", ErrUnavailable, path)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("requesting %s: unexpected status %d", path, resp.StatusCode)
	}

	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}
