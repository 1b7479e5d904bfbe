package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

// ErrFeedUnavailable wraps any upstream failure (network, status, decode).
var ErrFeedUnavailable = errors.New("feed unavailable")

const (
	// DefaultNewsFeedURL searches Google News for health/fitness savings.
	DefaultNewsFeedURL = "https://news.google.com/rss/search?q=health+fitness+nutrition+grocery+discount+gym+membership&hl=en-US&gl=US&ceid=US:en"
	// DefaultDealsURL is the NewsAPI top-headlines endpoint.
	DefaultDealsURL = "https://newsapi.org/v2/top-headlines"

	dealsPageSize = 5

	// Upstream bodies are read up to maxBodyBytes. Only the processed
	// headlines are cached; freecache rejects entries above 1/1024 of its
	// size, so cacheSizeMB allows entries of 32 KiB.
	maxBodyBytes = 4 << 20
	cacheSizeMB  = 32
)

// HTTPDoer is satisfied by *http.Client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client fetches the news RSS feed and the NewsAPI health headlines. The
// resulting headlines are cached for cacheTTLSeconds.
type Client struct {
	httpClient      HTTPDoer
	cache           *freecache.Cache
	cacheTTLSeconds int
	newsFeedURL     string
	dealsURL        string
	dealsAPIKey     string
}

// NewClient builds a feed client. Empty URLs fall back to the defaults.
func NewClient(httpClient HTTPDoer, newsFeedURL, dealsURL, dealsAPIKey string, cacheTTLSeconds int) *Client {
	if newsFeedURL == "" {
		newsFeedURL = DefaultNewsFeedURL
	}
	if dealsURL == "" {
		dealsURL = DefaultDealsURL
	}
	return &Client{
		httpClient:      httpClient,
		cache:           freecache.NewCache(cacheSizeMB * 1024 * 1024),
		cacheTTLSeconds: cacheTTLSeconds,
		newsFeedURL:     newsFeedURL,
		dealsURL:        dealsURL,
		dealsAPIKey:     dealsAPIKey,
	}
}

// DealHeadlines returns the deal-like items from the news feed.
func (c *Client) DealHeadlines(ctx context.Context) ([]Item, error) {
	return c.cached("news", func() ([]Item, error) {
		raw, err := c.fetch(ctx, "news", c.newsFeedURL)
		if err != nil {
			return nil, err
		}
		items, err := ParseRSS(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrFeedUnavailable, err)
		}
		return FilterDeals(items), nil
	})
}

type newsAPIResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title string `json:"title"`
		URL   string `json:"url"`
	} `json:"articles"`
}

// HealthHeadlines returns the top health headlines from NewsAPI.
func (c *Client) HealthHeadlines(ctx context.Context) ([]Item, error) {
	if c.dealsAPIKey == "" {
		return nil, fmt.Errorf("%w: no newsapi key configured", ErrFeedUnavailable)
	}
	return c.cached("deals", func() ([]Item, error) {
		return c.fetchHealthHeadlines(ctx)
	})
}

func (c *Client) fetchHealthHeadlines(ctx context.Context) ([]Item, error) {
	q := url.Values{}
	q.Set("category", "health")
	q.Set("language", "en")
	q.Set("pageSize", fmt.Sprint(dealsPageSize))
	q.Set("apiKey", c.dealsAPIKey)
	sep := "?"
	if strings.Contains(c.dealsURL, "?") {
		sep = "&"
	}

	raw, err := c.fetch(ctx, "deals", c.dealsURL+sep+q.Encode())
	if err != nil {
		return nil, err
	}

	var resp newsAPIResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: decode newsapi response: %s", ErrFeedUnavailable, err)
	}
	if resp.Status != "" && resp.Status != "ok" {
		return nil, fmt.Errorf("%w: newsapi status %s: %s", ErrFeedUnavailable, resp.Status, resp.Message)
	}

	items := make([]Item, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		if a.Title == "" || a.URL == "" {
			continue
		}
		source := a.Source.Name
		if source == "" {
			source = DefaultSource
		}
		items = append(items, Item{Title: a.Title, URL: a.URL, Source: source})
	}
	return items, nil
}

// cached serves key from the cache, or calls load and caches its result.
// Failed loads are never cached.
func (c *Client) cached(key string, load func() ([]Item, error)) ([]Item, error) {
	if raw, err := c.cache.Get([]byte(key)); err == nil {
		var items []Item
		if err := json.Unmarshal(raw, &items); err == nil {
			log.Tracef("[feed] %s served from cache", key)
			return items, nil
		}
		c.cache.Del([]byte(key))
	}

	items, err := load()
	if err != nil {
		return nil, err
	}

	if c.cacheTTLSeconds > 0 {
		raw, err := json.Marshal(items)
		if err != nil {
			log.Errorf("[feed] encode %s for cache: %s", key, err)
		} else if err := c.cache.Set([]byte(key), raw, c.cacheTTLSeconds); err != nil {
			log.Warnf("[feed] cache %s: %s", key, err)
		} else {
			log.Debugf("[feed] %s cached for %ds", key, c.cacheTTLSeconds)
		}
	}
	return items, nil
}

// fetch GETs target and returns at most maxBodyBytes of its body.
func (c *Client) fetch(ctx context.Context, name, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %s", ErrFeedUnavailable, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrFeedUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrFeedUnavailable, name, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %s", ErrFeedUnavailable, err)
	}
	if len(body) > maxBodyBytes {
		return nil, fmt.Errorf("%w: %s body exceeds %d bytes", ErrFeedUnavailable, name, maxBodyBytes)
	}
	return body, nil
}
