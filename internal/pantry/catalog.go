package pantry

import (
	"context"
	"log"
	"sync"
	"time"

	"foodhive/internal/docstore"
)

// Feed delivers change events for a user's collection.
type Feed interface {
	Subscribe(userID, collection string) (<-chan docstore.Event, func())
}

// Catalog mirrors one user's products in memory and keeps the mirror in sync
// with the store's change feed.
type Catalog struct {
	repo   *Repository
	feed   Feed
	userID string
	now    func() time.Time

	mu        sync.RWMutex
	products  []Product
	listeners []func([]Product)
}

// NewCatalog creates a catalog for userID. Call Start to load and follow it.
func NewCatalog(repo *Repository, feed Feed, userID string) *Catalog {
	return &Catalog{repo: repo, feed: feed, userID: userID, now: time.Now}
}

// Start loads the products and follows the change feed until ctx is done.
// Only the initial load error is returned.
func (c *Catalog) Start(ctx context.Context) error {
	events, cancel := c.feed.Subscribe(c.userID, collection)
	if err := c.Refresh(ctx); err != nil {
		cancel()
		return err
	}

	go func() {
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-events:
				if !ok {
					return
				}
				if err := c.Refresh(ctx); err != nil {
					log.Printf("Warning: failed to refresh catalog for %s: %v", c.userID, err)
				}
			}
		}
	}()
	return nil
}

// Refresh re-reads the collection and notifies listeners.
func (c *Catalog) Refresh(ctx context.Context) error {
	products, err := c.repo.List(ctx, c.userID)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.products = products
	listeners := append([]func([]Product){}, c.listeners...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(products)
	}
	return nil
}

// OnChange registers fn to run after every refresh.
func (c *Catalog) OnChange(fn func([]Product)) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// Snapshot returns a copy of the mirrored products.
func (c *Catalog) Snapshot() []Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Product(nil), c.products...)
}

// ExpiringSoon returns the mirrored products expiring within three days.
func (c *Catalog) ExpiringSoon() []Product {
	return Classify(c.now(), c.Snapshot()).ExpiringSoon
}

// Expired returns the mirrored products past their date.
func (c *Catalog) Expired() []Product {
	return Classify(c.now(), c.Snapshot()).Expired
}

// Catalogs lazily starts one Catalog per user, all bound to ctx.
type Catalogs struct {
	ctx  context.Context
	repo *Repository
	feed Feed

	mu       sync.Mutex
	catalogs map[string]*Catalog
}

// NewCatalogs creates a catalog registry. Catalogs stop when ctx is done.
func NewCatalogs(ctx context.Context, repo *Repository, feed Feed) *Catalogs {
	return &Catalogs{ctx: ctx, repo: repo, feed: feed, catalogs: make(map[string]*Catalog)}
}

// For returns the running catalog of userID, starting it on first use.
func (cs *Catalogs) For(userID string) (*Catalog, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if c, ok := cs.catalogs[userID]; ok {
		return c, nil
	}
	c := NewCatalog(cs.repo, cs.feed, userID)
	if err := c.Start(cs.ctx); err != nil {
		return nil, err
	}
	cs.catalogs[userID] = c
	return c, nil
}
