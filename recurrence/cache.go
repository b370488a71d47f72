package recurrence

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"
)

// CacheEntry represents a cached expansion
type CacheEntry struct {
	Dates      []time.Time
	ExpiresAt  time.Time
	AccessedAt time.Time
}

// RecurrenceCache caches generated due dates keyed by spec.
type RecurrenceCache struct {
	entries         map[string]*CacheEntry
	mutex           sync.RWMutex
	ttl             time.Duration
	maxEntries      int
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	closeOnce       sync.Once
}

// CacheConfig holds configuration for the recurrence cache
type CacheConfig struct {
	TTL             time.Duration // How long entries stay valid
	MaxEntries      int           // Maximum number of entries before cleanup
	CleanupInterval time.Duration // How often to run cleanup
}

// DefaultCacheConfig provides sensible defaults for recurrence caching
var DefaultCacheConfig = CacheConfig{
	TTL:             15 * time.Minute,
	MaxEntries:      1000,
	CleanupInterval: 5 * time.Minute,
}

// NewRecurrenceCache creates a new recurrence cache with the given configuration
func NewRecurrenceCache(config CacheConfig) *RecurrenceCache {
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = DefaultCacheConfig.CleanupInterval
	}
	cache := &RecurrenceCache{
		entries:         make(map[string]*CacheEntry),
		ttl:             config.TTL,
		maxEntries:      config.MaxEntries,
		cleanupInterval: config.CleanupInterval,
		stopCleanup:     make(chan struct{}),
	}

	go cache.cleanupLoop()

	return cache
}

// cacheKey hashes every input that can change the expansion. now only
// matters through the end-of-year fallback, so that is what goes in.
func (c *RecurrenceCache) cacheKey(spec Spec, now time.Time) string {
	hasher := sha256.New()

	hasher.Write([]byte(spec.Mode))
	hasher.Write([]byte(keyTime(spec.Start)))
	if end, ok := spec.End.Get(); ok {
		hasher.Write([]byte("end" + keyTime(end)))
	}
	hasher.Write([]byte(keyTime(EndOfYear(now))))

	if cu := spec.Custom; cu != nil {
		hasher.Write([]byte("custom" + string(cu.RepeatFrequency) + strconv.Itoa(cu.RepeatUnits)))
		for _, d := range cu.RepeatDays {
			hasher.Write([]byte{byte(d)})
		}
		if on, ok := cu.Ends.On.Get(); ok {
			hasher.Write([]byte("on" + keyTime(on)))
		}
		if n, ok := cu.Ends.After.Get(); ok {
			hasher.Write([]byte("after" + strconv.Itoa(n)))
		}
	}

	return fmt.Sprintf("%x", hasher.Sum(nil))
}

// keyTime renders t with its zone name. Zones sharing an offset at one
// instant can still expand differently across a DST change.
func keyTime(t time.Time) string {
	return t.Format(time.RFC3339Nano) + "@" + t.Location().String()
}

// Get retrieves a copy of the cached dates if present and not expired
func (c *RecurrenceCache) Get(spec Spec, now time.Time) ([]time.Time, bool) {
	key := c.cacheKey(spec, now)

	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.entries[key]
	if !exists {
		return nil, false
	}

	current := time.Now()
	if current.After(entry.ExpiresAt) {
		delete(c.entries, key)
		return nil, false
	}

	entry.AccessedAt = current
	return cloneDates(entry.Dates), true
}

// Set stores dates in the cache
func (c *RecurrenceCache) Set(spec Spec, now time.Time, dates []time.Time) {
	key := c.cacheKey(spec, now)
	current := time.Now()

	entry := &CacheEntry{
		Dates:      cloneDates(dates),
		ExpiresAt:  current.Add(c.ttl),
		AccessedAt: current,
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries[key] = entry

	if len(c.entries) > c.maxEntries {
		c.cleanup()
	}
}

// cleanup removes expired entries, then the least recently used ones while
// over the limit. Callers hold the write lock.
func (c *RecurrenceCache) cleanup() {
	now := time.Now()

	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
		}
	}

	if len(c.entries) <= c.maxEntries {
		return
	}

	keys := make([]string, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return c.entries[keys[i]].AccessedAt.Before(c.entries[keys[j]].AccessedAt)
	})

	excess := len(c.entries) - c.maxEntries
	for _, key := range keys[:excess] {
		delete(c.entries, key)
	}
}

// cleanupLoop runs periodic cleanup
func (c *RecurrenceCache) cleanupLoop() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mutex.Lock()
			c.cleanup()
			c.mutex.Unlock()
		case <-c.stopCleanup:
			return
		}
	}
}

// Close stops the cleanup goroutine and clears the cache
func (c *RecurrenceCache) Close() {
	c.closeOnce.Do(func() {
		close(c.stopCleanup)
	})
	c.mutex.Lock()
	c.entries = make(map[string]*CacheEntry)
	c.mutex.Unlock()
}

// Stats returns cache statistics
func (c *RecurrenceCache) Stats() CacheStats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entryCount := len(c.entries)
	expiredCount := 0
	now := time.Now()

	for _, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			expiredCount++
		}
	}

	return CacheStats{
		TotalEntries:   entryCount,
		ExpiredEntries: expiredCount,
		ActiveEntries:  entryCount - expiredCount,
	}
}

// CacheStats provides information about cache performance
type CacheStats struct {
	TotalEntries   int
	ExpiredEntries int
	ActiveEntries  int
}

func cloneDates(dates []time.Time) []time.Time {
	if dates == nil {
		return nil
	}
	out := make([]time.Time, len(dates))
	copy(out, dates)
	return out
}
