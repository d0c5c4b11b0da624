package brain

import (
	"context"
	"sync"

	"github.com/ankitmittal-AIPM/meal-taxonomy/internal/domain"
)

// TagCache memoizes tag-type and tag lookups for the lifetime of a batch run.
// It is an explicit object handed to the resolver rather than package state,
// so concurrent batch runs each keep their own cache.
type TagCache struct {
	mu      sync.Mutex
	typeIDs map[string]string
	tagIDs  map[tagKey]string
}

type tagKey struct {
	typeID string
	value  string
}

// NewTagCache creates an empty TagCache.
func NewTagCache() *TagCache {
	return &TagCache{
		typeIDs: make(map[string]string),
		tagIDs:  make(map[tagKey]string),
	}
}

// TagTypeID returns the id of the named tag type, consulting the store only
// on a cache miss.
func (c *TagCache) TagTypeID(ctx context.Context, store Store, name, description string) (string, error) {
	c.mu.Lock()
	id, ok := c.typeIDs[name]
	c.mu.Unlock()
	if ok {
		return id, nil
	}

	id, err := store.EnsureTagType(ctx, name, description)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.typeIDs[name] = id
	c.mu.Unlock()
	return id, nil
}

// TagID returns the id of the (tag type, value) tag, consulting the store
// only on a cache miss.
func (c *TagCache) TagID(ctx context.Context, store Store, tagTypeID string, cand domain.TagCandidate) (string, error) {
	k := tagKey{typeID: tagTypeID, value: cand.Value}
	c.mu.Lock()
	id, ok := c.tagIDs[k]
	c.mu.Unlock()
	if ok {
		return id, nil
	}

	id, err := store.EnsureTag(ctx, tagTypeID, cand)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.tagIDs[k] = id
	c.mu.Unlock()
	return id, nil
}
