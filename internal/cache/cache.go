// Package cache keeps small, frequently read JSON documents (the exercise
// catalog) in an in-process freecache.
package cache

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

const megabyte = 1024 * 1024

// minimum size freecache accepts
const minSizeMB = 1

type JSONCache struct {
	cache *freecache.Cache
	ttl   time.Duration
}

func NewJSONCache(sizeMB int, ttl time.Duration) *JSONCache {
	if sizeMB < minSizeMB {
		sizeMB = minSizeMB
	}
	return &JSONCache{
		cache: freecache.NewCache(sizeMB * megabyte),
		ttl:   ttl,
	}
}

// Get decodes the cached value for key into dst and reports whether it was found.
func (c *JSONCache) Get(key string, dst any) bool {
	raw, err := c.cache.Get([]byte(key))
	if err != nil {
		if !errors.Is(err, freecache.ErrNotFound) {
			log.Debugf("cache get %s: %s", key, err)
		}
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		log.Errorf("failed to unmarshal cached %s: %s", key, err)
		c.cache.Del([]byte(key))
		return false
	}
	return true
}

func (c *JSONCache) Set(key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		log.Errorf("failed to marshal %s for cache: %s", key, err)
		return
	}
	if err := c.cache.Set([]byte(key), raw, int(c.ttl.Seconds())); err != nil {
		log.Warnf("cache set %s: %s", key, err)
	}
}

func (c *JSONCache) Delete(key string) {
	c.cache.Del([]byte(key))
}
