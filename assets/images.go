package assets

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/png"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Fetcher retrieves the image for an emote id.
type Fetcher func(ctx context.Context, id string) (image.Image, error)

// HTTPFetcher downloads and decodes images from urlTemplate.
func HTTPFetcher(client *http.Client, urlTemplate string) Fetcher {
	return func(ctx context.Context, id string) (image.Image, error) {
		url := strings.ReplaceAll(urlTemplate, "{id}", id)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build request: %w", err)
		}

		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("failed to fetch %s: status %d", url, resp.StatusCode)
		}

		img, _, err := image.Decode(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", url, err)
		}
		return img, nil
	}
}

// ImageCache loads emote images on first request and keeps them for the
// lifetime of the process. Lookups never block on a download.
type ImageCache struct {
	fetch   Fetcher
	log     *logrus.Entry
	timeout time.Duration
	sem     chan struct{}

	mu      sync.RWMutex
	entries map[string]Slot[image.Image]
}

// NewImageCache creates a cache running at most parallel downloads at a time.
func NewImageCache(fetch Fetcher, parallel int, log *logrus.Entry) *ImageCache {
	if parallel < 1 {
		parallel = 1
	}
	return &ImageCache{
		fetch:   fetch,
		log:     log,
		timeout: 10 * time.Second,
		sem:     make(chan struct{}, parallel),
		entries: make(map[string]Slot[image.Image]),
	}
}

// Request starts loading id unless it is already loaded, loading or failed.
func (c *ImageCache) Request(ctx context.Context, id string) {
	c.mu.Lock()
	if _, ok := c.entries[id]; ok {
		c.mu.Unlock()
		return
	}
	c.entries[id] = Slot[image.Image]{State: Pending}
	c.mu.Unlock()

	go c.load(ctx, id)
}

func (c *ImageCache) load(ctx context.Context, id string) {
	select {
	case c.sem <- struct{}{}:
		defer func() { <-c.sem }()
	case <-ctx.Done():
		c.store(id, Slot[image.Image]{State: Failed})
		return
	}

	fetchCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	img, err := c.fetch(fetchCtx, id)
	if err != nil {
		c.log.WithError(err).WithField("emote", id).Warn("Failed to load emote image")
		c.store(id, Slot[image.Image]{State: Failed})
		return
	}

	c.store(id, Slot[image.Image]{State: Loaded, Value: img})
	c.log.WithField("emote", id).Debug("Emote image loaded")
}

func (c *ImageCache) store(id string, slot Slot[image.Image]) {
	c.mu.Lock()
	c.entries[id] = slot
	c.mu.Unlock()
}

// Image returns the loaded image for id.
func (c *ImageCache) Image(id string) (image.Image, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries[id].Get()
}

// State returns the slot state for id; unknown ids are pending.
func (c *ImageCache) State(id string) SlotState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries[id].State
}
