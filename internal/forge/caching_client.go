package forge

import (
	"context"
	"sync"
	"time"

	"github.com/ghbulk/ghbulk/internal/domain"
)

// CachingClient wraps a Client with a TTL cache over the metadata reads that
// back the issue forms (identity, organizations, repositories, members,
// labels, milestones). Issue search and every write pass straight through;
// writes additionally invalidate the entries they make stale, so a label
// created through this client shows up on the next Labels call.
type CachingClient struct {
	client Client
	cache  *cache
}

// NewCachingClient creates a new caching client wrapper.
func NewCachingClient(client Client, cacheDuration time.Duration) *CachingClient {
	return &CachingClient{
		client: client,
		cache:  newCache(cacheDuration),
	}
}

// CurrentUser retrieves the authenticated identity with caching.
func (c *CachingClient) CurrentUser(ctx context.Context) (domain.User, error) {
	key := "CurrentUser"

	if cached, found := c.cache.get(key); found {
		if user, ok := cached.(domain.User); ok {
			return user, nil
		}
	}

	user, err := c.client.CurrentUser(ctx)
	if err != nil {
		return domain.User{}, err
	}

	c.cache.set(key, user)
	return user, nil
}

// Organizations retrieves organizations with caching.
func (c *CachingClient) Organizations(ctx context.Context) ([]domain.Owner, error) {
	key := "Organizations"

	if cached, found := c.cache.get(key); found {
		if owners, ok := cached.([]domain.Owner); ok {
			return owners, nil
		}
	}

	owners, err := c.client.Organizations(ctx)
	if err != nil {
		return nil, err
	}

	c.cache.set(key, owners)
	return owners, nil
}

// Repositories retrieves an owner's repositories with caching.
func (c *CachingClient) Repositories(ctx context.Context, owner domain.Owner) ([]domain.Repository, error) {
	key := "Repositories:" + owner.Qualifier()

	if cached, found := c.cache.get(key); found {
		if repos, ok := cached.([]domain.Repository); ok {
			return repos, nil
		}
	}

	repos, err := c.client.Repositories(ctx, owner)
	if err != nil {
		return nil, err
	}

	c.cache.set(key, repos)
	return repos, nil
}

// Members retrieves an organization's members with caching.
func (c *CachingClient) Members(ctx context.Context, org string) ([]domain.Assignee, error) {
	key := "Members:" + org

	if cached, found := c.cache.get(key); found {
		if members, ok := cached.([]domain.Assignee); ok {
			return members, nil
		}
	}

	members, err := c.client.Members(ctx, org)
	if err != nil {
		return nil, err
	}

	c.cache.set(key, members)
	return members, nil
}

// Labels retrieves a repository's labels with caching.
func (c *CachingClient) Labels(ctx context.Context, repo string) ([]domain.Label, error) {
	key := "Labels:" + repo

	if cached, found := c.cache.get(key); found {
		if labels, ok := cached.([]domain.Label); ok {
			return labels, nil
		}
	}

	labels, err := c.client.Labels(ctx, repo)
	if err != nil {
		return nil, err
	}

	c.cache.set(key, labels)
	return labels, nil
}

// Milestones retrieves a repository's milestones with caching.
func (c *CachingClient) Milestones(ctx context.Context, repo string) ([]domain.Milestone, error) {
	key := "Milestones:" + repo

	if cached, found := c.cache.get(key); found {
		if milestones, ok := cached.([]domain.Milestone); ok {
			return milestones, nil
		}
	}

	milestones, err := c.client.Milestones(ctx, repo)
	if err != nil {
		return nil, err
	}

	c.cache.set(key, milestones)
	return milestones, nil
}

// SearchIssues is never cached: search results are browsed live.
func (c *CachingClient) SearchIssues(ctx context.Context, filter domain.IssueFilter, page int) (IssueSearchPage, error) {
	return c.client.SearchIssues(ctx, filter, page)
}

// CreateIssues passes through uncached.
func (c *CachingClient) CreateIssues(ctx context.Context, repo string, drafts []domain.IssueDraft) ([]domain.Issue, error) {
	return c.client.CreateIssues(ctx, repo, drafts)
}

// UpdateIssue passes through uncached.
func (c *CachingClient) UpdateIssue(ctx context.Context, repo string, number int, patch domain.IssuePatch) (domain.Issue, error) {
	return c.client.UpdateIssue(ctx, repo, number, patch)
}

// CreateLabels creates labels and invalidates the repository's label cache.
func (c *CachingClient) CreateLabels(ctx context.Context, repo string, labels []domain.Label) ([]domain.Label, error) {
	created, err := c.client.CreateLabels(ctx, repo, labels)
	if err != nil {
		return nil, err
	}

	c.cache.invalidate("Labels:" + repo)
	return created, nil
}

// CreateMilestones creates milestones and invalidates the repository's
// milestone cache.
func (c *CachingClient) CreateMilestones(ctx context.Context, repo string, milestones []domain.Milestone) ([]domain.Milestone, error) {
	created, err := c.client.CreateMilestones(ctx, repo, milestones)
	if err != nil {
		return nil, err
	}

	c.cache.invalidate("Milestones:" + repo)
	return created, nil
}

// UpdateMilestone updates a milestone and invalidates the repository's
// milestone cache.
func (c *CachingClient) UpdateMilestone(ctx context.Context, repo string, milestone domain.Milestone) (domain.Milestone, error) {
	updated, err := c.client.UpdateMilestone(ctx, repo, milestone)
	if err != nil {
		return domain.Milestone{}, err
	}

	c.cache.invalidate("Milestones:" + repo)
	return updated, nil
}

// cache implements a thread-safe TTL cache.
type cache struct {
	mu       sync.RWMutex
	entries  map[string]*cacheEntry
	duration time.Duration
}

// cacheEntry holds a cached value with expiry time.
type cacheEntry struct {
	value     interface{}
	expiresAt time.Time
}

// newCache creates a new cache with the specified duration.
func newCache(duration time.Duration) *cache {
	c := &cache{
		entries:  make(map[string]*cacheEntry),
		duration: duration,
	}

	// Start cleanup goroutine
	go c.cleanup()

	return c
}

// get retrieves a value from cache.
func (c *cache) get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists {
		return nil, false
	}

	if time.Now().After(entry.expiresAt) {
		return nil, false
	}

	return entry.value, true
}

// set stores a value in cache with TTL.
func (c *cache) set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &cacheEntry{
		value:     value,
		expiresAt: time.Now().Add(c.duration),
	}
}

// invalidate drops a single entry.
func (c *cache) invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}

// cleanup periodically removes expired entries.
func (c *cache) cleanup() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		now := time.Now()
		for key, entry := range c.entries {
			if now.After(entry.expiresAt) {
				delete(c.entries, key)
			}
		}
		c.mu.Unlock()
	}
}
