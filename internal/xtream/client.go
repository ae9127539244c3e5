// Package xtream talks to an Xtream-Codes style IPTV provider API.
// The payloads are treated as opaque JSON; callers decide how to interpret them.
package xtream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kmarchat/streamgate/pkg/logger"
	"github.com/kmarchat/streamgate/pkg/metrics"
)

// Actions exposed by the provider's player_api.php endpoint.
const (
	ActionVodCategories    = "get_vod_categories"
	ActionVodStreams       = "get_vod_streams"
	ActionVodInfo          = "get_vod_info"
	ActionSeriesCategories = "get_series_categories"
	ActionSeries           = "get_series"
	ActionSeriesInfo       = "get_series_info"
	ActionLiveCategories   = "get_live_categories"
	ActionLiveStreams      = "get_live_streams"
)

const defaultTimeout = 30 * time.Second

// maxResponseBytes caps how much of an upstream body is read; full VOD
// listings from large providers run to a few tens of megabytes.
const maxResponseBytes = 64 << 20

// Fetcher supplies raw JSON payloads for a provider action.
type Fetcher interface {
	FetchAction(ctx context.Context, action string, params url.Values) ([]byte, error)
}

// Config holds provider connection settings.
type Config struct {
	BaseURL   string
	Username  string
	Password  string
	Timeout   time.Duration
	UserAgent string
}

// Client is an HTTP client for the provider API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        *zap.Logger
}

// NewClient validates the configuration and constructs a provider client.
func NewClient(cfg Config) (*Client, error) {
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.BaseURL == "" {
		return nil, errors.New("xtream: base url is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("xtream: invalid base url: %w", err)
	}
	if cfg.Username == "" || cfg.Password == "" {
		return nil, errors.New("xtream: username and password are required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        logger.WithModule("xtream"),
	}, nil
}

// BaseURL returns the configured provider endpoint.
func (c *Client) BaseURL() string {
	return c.cfg.BaseURL
}

// ActionURL builds the full player_api.php URL for an action, credentials included.
func (c *Client) ActionURL(action string, params url.Values) string {
	values := url.Values{}
	for name, vs := range params {
		for _, v := range vs {
			values.Add(name, v)
		}
	}
	values.Set("username", c.cfg.Username)
	values.Set("password", c.cfg.Password)
	values.Set("action", action)

	return c.cfg.BaseURL + "/player_api.php?" + values.Encode()
}

// FetchAction performs a GET against the provider and returns the raw body.
func (c *Client) FetchAction(ctx context.Context, action string, params url.Values) ([]byte, error) {
	requestURL := c.ActionURL(action, params)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("xtream: build request: %w", err)
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(action, "failure").Inc()
		return nil, fmt.Errorf("xtream: %s: %w", action, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamRequests.WithLabelValues(action, "failure").Inc()
		return nil, fmt.Errorf("xtream: %s: unexpected status %d", action, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		metrics.UpstreamRequests.WithLabelValues(action, "failure").Inc()
		return nil, fmt.Errorf("xtream: %s: read body: %w", action, err)
	}

	metrics.UpstreamRequests.WithLabelValues(action, "success").Inc()
	c.log.Debug("upstream fetch",
		zap.String("action", action),
		zap.Int("bytes", len(body)),
		zap.Duration("duration", time.Since(start)),
	)

	return body, nil
}
