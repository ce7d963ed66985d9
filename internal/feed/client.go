// Package feed loads a season from the remote matches API: fetch an
// access token once, then pull every match with it.
package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/xaitan80/X-Standings/internal/league"
)

const maxBody = 8 << 20

var errUnauthorized = errors.New("feed: unauthorized")

// Client talks to the matches API. The access token is cached for the
// life of the client and refetched once when the API rejects it.
type Client struct {
	base string
	http *http.Client
	log  logrus.FieldLogger

	mu    sync.Mutex
	token string
}

func NewClient(baseURL string, timeout time.Duration, log logrus.FieldLogger) *Client {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: timeout},
		log:  log,
	}
}

// Load implements matches.Loader.
func (c *Client) Load(ctx context.Context) ([]league.Match, error) {
	list, err := c.fetchMatches(ctx)
	if errors.Is(err, errUnauthorized) {
		c.log.Info("feed token rejected, refreshing")
		c.dropToken()
		list, err = c.fetchMatches(ctx)
	}
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) fetchMatches(ctx context.Context) ([]league.Match, error) {
	tok, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}
	var body matchesResponse
	if err := c.getJSON(ctx, "/getAllMatches", tok, &body); err != nil {
		return nil, err
	}
	out := make([]league.Match, 0, len(body.Matches))
	for _, m := range body.Matches {
		out = append(out, m.toLeague())
	}
	c.log.WithField("matches", len(out)).Debug("feed matches fetched")
	return out, nil
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" {
		return c.token, nil
	}
	var body tokenResponse
	if err := c.getJSON(ctx, "/getAccessToken", "", &body); err != nil {
		return "", fmt.Errorf("access token: %w", err)
	}
	if body.AccessToken == "" {
		return "", fmt.Errorf("access token: empty token")
	}
	c.token = body.AccessToken
	return c.token, nil
}

func (c *Client) dropToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

func (c *Client) getJSON(ctx context.Context, path, token string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return errUnauthorized
	case resp.StatusCode != http.StatusOK:
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("GET %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(dst); err != nil {
		return fmt.Errorf("GET %s: decode: %w", path, err)
	}
	return nil
}
