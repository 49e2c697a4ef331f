package summarizer

import (
	"container/list"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync"
	"time"

	"docsummarizer/internal/domain"
)

// CachedSummarizer memoizes summaries of identical input for a limited time.
type CachedSummarizer struct {
	log  *slog.Logger
	next Summarizer
	ttl  time.Duration
	now  func() time.Time

	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List
	maxEntries int
}

type summaryCacheEntry struct {
	key       string
	result    Result
	expiresAt time.Time
}

func NewCachedSummarizer(
	log *slog.Logger,
	next Summarizer,
	maxEntries int,
	ttl time.Duration,
) *CachedSummarizer {
	return &CachedSummarizer{
		log:        log,
		next:       next,
		ttl:        ttl,
		now:        time.Now,
		entries:    make(map[string]*list.Element, max(maxEntries, 0)),
		order:      list.New(),
		maxEntries: maxEntries,
	}
}

func (c *CachedSummarizer) Summarize(
	ctx context.Context,
	docs []domain.Document,
	model domain.ModelID,
) (Result, error) {
	if c.maxEntries <= 0 || c.ttl <= 0 {
		return c.next.Summarize(ctx, docs, model)
	}

	key := cacheKey(docs, model)
	if result, ok := c.get(key, c.now()); ok {
		c.log.DebugContext(ctx, "Summary cache hit", "model", model)

		return result, nil
	}

	result, err := c.next.Summarize(ctx, docs, model)
	if err != nil {
		return Result{}, err
	}

	now := c.now()
	c.set(key, result, now.Add(c.ttl), now)

	return result, nil
}

// Len reports the number of live and not yet evicted entries.
func (c *CachedSummarizer) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.entries)
}

func cacheKey(docs []domain.Document, model domain.ModelID) string {
	h := sha256.New()
	h.Write([]byte(model))
	for _, d := range docs {
		h.Write([]byte{0})
		h.Write([]byte(d.Content))
	}

	return hex.EncodeToString(h.Sum(nil))
}

func (c *CachedSummarizer) get(key string, now time.Time) (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return Result{}, false
	}

	entry, ok := elem.Value.(*summaryCacheEntry)
	if !ok {
		return Result{}, false
	}

	if now.After(entry.expiresAt) {
		c.removeElement(elem)

		return Result{}, false
	}

	c.order.MoveToFront(elem)

	return entry.result, true
}

func (c *CachedSummarizer) set(
	key string,
	result Result,
	expiresAt time.Time,
	now time.Time,
) {
	if result.Text == "" || !expiresAt.After(now) {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		entry, castOk := elem.Value.(*summaryCacheEntry)
		if !castOk {
			return
		}

		entry.result = result
		entry.expiresAt = expiresAt
		c.order.MoveToFront(elem)

		return
	}

	elem := c.order.PushFront(&summaryCacheEntry{
		key:       key,
		result:    result,
		expiresAt: expiresAt,
	})
	c.entries[key] = elem

	c.evictExpiredLocked(now)
	c.enforceSizeLimitLocked()
}

func (c *CachedSummarizer) evictExpiredLocked(now time.Time) {
	for elem := c.order.Back(); elem != nil; {
		prev := elem.Prev()

		entry, ok := elem.Value.(*summaryCacheEntry)
		if ok && now.After(entry.expiresAt) {
			c.removeElement(elem)
		}

		elem = prev
	}
}

func (c *CachedSummarizer) enforceSizeLimitLocked() {
	for len(c.entries) > c.maxEntries {
		elem := c.order.Back()
		if elem == nil {
			return
		}
		c.removeElement(elem)
	}
}

func (c *CachedSummarizer) removeElement(elem *list.Element) {
	entry, ok := elem.Value.(*summaryCacheEntry)
	if !ok {
		return
	}

	delete(c.entries, entry.key)
	c.order.Remove(elem)
}
