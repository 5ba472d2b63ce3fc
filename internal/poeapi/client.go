// Package poeapi is a small client for the public character-window endpoints
// on pathofexile.com. Responses are cached briefly and requests are paced
// with a token bucket so snapshot capture never trips the site's limits.
package poeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"
)

const (
	baseURL   = "https://www.pathofexile.com"
	userAgent = "POE-Watcher/0.1.0 (contact: poe-watcher@example.com)"
)

// Client talks to the character-window API
type Client struct {
	httpClient *http.Client
	base       string
	limiter    *tokenBucket

	cacheMu sync.Mutex
	cache   map[string]cacheEntry
}

type cacheEntry struct {
	body      []byte
	expiresAt time.Time
}

// NewClient builds a client with the default endpoint and pacing.
func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		base:       baseURL,
		// The site tolerates short bursts; 10 tokens refilled at 5/s
		// keeps a snapshot's three requests well inside that.
		limiter: newTokenBucket(10, 5),
		cache:   make(map[string]cacheEntry),
	}
}

// NewClientWithBase builds a client against a different endpoint. Test hook.
func NewClientWithBase(base string) *Client {
	c := NewClient()
	c.base = base
	return c
}

// GetCharacters lists the account's characters.
func (c *Client) GetCharacters(ctx context.Context, account string) ([]Character, error) {
	u := fmt.Sprintf("%s/character-window/get-characters?accountName=%s",
		c.base, url.QueryEscape(account))

	body, err := c.get(ctx, u, 60*time.Second)
	if err != nil {
		return nil, err
	}

	var characters []Character
	if err := json.Unmarshal(body, &characters); err != nil {
		return nil, fmt.Errorf("decode characters: %w", err)
	}
	return characters, nil
}

// GetItems fetches a character's equipped items.
func (c *Client) GetItems(ctx context.Context, account, character string) (*CharacterItems, error) {
	u := fmt.Sprintf("%s/character-window/get-items?accountName=%s&character=%s",
		c.base, url.QueryEscape(account), url.QueryEscape(character))

	body, err := c.get(ctx, u, 30*time.Second)
	if err != nil {
		return nil, err
	}

	items := &CharacterItems{}
	if err := json.Unmarshal(body, items); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	return items, nil
}

// GetPassiveSkills fetches a character's allocated passive tree.
func (c *Client) GetPassiveSkills(ctx context.Context, account, character string) (*PassiveSkills, error) {
	u := fmt.Sprintf("%s/character-window/get-passive-skills?accountName=%s&character=%s",
		c.base, url.QueryEscape(account), url.QueryEscape(character))

	body, err := c.get(ctx, u, 30*time.Second)
	if err != nil {
		return nil, err
	}

	passives := &PassiveSkills{}
	if err := json.Unmarshal(body, passives); err != nil {
		return nil, fmt.Errorf("decode passive skills: %w", err)
	}
	return passives, nil
}

// get performs a paced, cached GET and returns the raw body.
func (c *Client) get(ctx context.Context, u string, ttl time.Duration) ([]byte, error) {
	if body, ok := c.cached(u); ok {
		return body, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", u, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case http.StatusForbidden:
		// Private profile or hidden characters tab.
		return nil, ErrProfilePrivate
	case http.StatusNotFound:
		return nil, ErrNotFound
	default:
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, u)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	c.store(u, body, ttl)
	return body, nil
}

func (c *Client) cached(u string) ([]byte, bool) {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	entry, ok := c.cache[u]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.body, true
}

func (c *Client) store(u string, body []byte, ttl time.Duration) {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	c.cache[u] = cacheEntry{body: body, expiresAt: time.Now().Add(ttl)}
}
