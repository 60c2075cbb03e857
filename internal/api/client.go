package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/seo-joon/benkyou/internal/logging"
)

// Client talks to the learning-feed retrieval API.
type Client struct {
	baseURL    string
	session    string
	httpClient *http.Client
}

// NewClient builds a client for baseURL. session, when set, is sent as the
// Cookie header on session-aware requests.
func NewClient(baseURL string, timeout time.Duration, session string) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		session:    session,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Concepts lists the selectable concepts for track. "all" or an empty track
// asks for every concept.
func (c *Client) Concepts(ctx context.Context, track string) ([]string, error) {
	q := url.Values{}
	if track != "" && track != "all" {
		q.Set("track", track)
	}

	var resp conceptsResponse
	if err := c.get(ctx, "/api/concepts", q, false, &resp); err != nil {
		return nil, fmt.Errorf("concepts: %w", err)
	}
	if resp.Concepts == nil {
		return nil, fmt.Errorf("concepts: %w: missing concepts field", ErrParse)
	}
	return *resp.Concepts, nil
}

// Examples retrieves the items matching params, in server order.
func (c *Client) Examples(ctx context.Context, params url.Values) ([]Example, error) {
	var raw []apiExample
	if err := c.get(ctx, "/api/examples", params, false, &raw); err != nil {
		return nil, fmt.Errorf("examples: %w", err)
	}

	out := make([]Example, 0, len(raw))
	for _, r := range raw {
		out = append(out, convertExample(r))
	}
	return out, nil
}

// Session reports the current authentication status.
func (c *Client) Session(ctx context.Context) (Session, error) {
	var s Session
	if err := c.get(ctx, "/api/session", nil, true, &s); err != nil {
		return Session{}, fmt.Errorf("session: %w", err)
	}
	return s, nil
}

// Logout submits the logout form. The response body is ignored.
func (c *Client) Logout(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/logout", strings.NewReader(""))
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.withSession(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("logout: %w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("logout: %w: status %s", ErrNetwork, resp.Status)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, withSession bool, dest any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if withSession {
		c.withSession(req)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logging.Logger().Warn("request failed", "url", u, "err", err)
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	logging.Logger().Debug("request done", "url", u, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %s", ErrNetwork, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("%w: %w", ErrParse, err)
	}
	return nil
}

func (c *Client) withSession(req *http.Request) {
	if c.session != "" {
		req.Header.Set("Cookie", c.session)
	}
}

func convertExample(r apiExample) Example {
	e := Example{
		Source:   r.Source,
		URL:      r.URL,
		Concepts: r.Concepts,
	}
	if r.Title != nil {
		e.Title = *r.Title
	}
	if r.Summary != nil {
		e.Summary = *r.Summary
	}
	if r.Published != nil {
		e.Published = parsePublished(*r.Published)
	}
	return e
}

// published comes from Python's isoformat, which drops the zone for naive
// datetimes and may carry microseconds.
var publishedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parsePublished(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range publishedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
