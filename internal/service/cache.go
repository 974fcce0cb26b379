package service

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache keeps rendered PNG images for a while, keyed by everything that
// goes into the image.
type Cache struct {
	lru *expirable.LRU[string, []byte]
}

// NewCache returns a cache of at most size images, each kept for ttl.
// A size of 0 returns nil, which caches nothing.
func NewCache(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		return nil
	}
	return &Cache{lru: expirable.NewLRU[string, []byte](size, nil, ttl)}
}

// Get returns the image stored under key.
func (c *Cache) Get(key string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.lru.Get(key)
	if ok {
		cacheHitsTotal.Inc()
		return v, true
	}
	cacheMissesTotal.Inc()
	return nil, false
}

// Set stores an image under key.
func (c *Cache) Set(key string, png []byte) {
	if c != nil {
		c.lru.Add(key, png)
	}
}

// Len returns the number of cached images.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}

// cacheKey hashes the encoded text, the caption and the rendering
// parameters.  Strings are length-prefixed so that adjacent fields
// cannot run into each other.
func cacheKey(data, caption string, p Params) string {
	h := sha256.New()
	var b [8]byte
	str := func(s string) {
		binary.BigEndian.PutUint64(b[:], uint64(len(s)))
		h.Write(b[:])
		h.Write([]byte(s))
	}
	num := func(n uint64) {
		binary.BigEndian.PutUint64(b[:], n)
		h.Write(b[:])
	}
	str(data)
	str(caption)
	num(uint64(p.Level))
	num(uint64(p.Shape))
	num(uint64(p.Scale))
	num(uint64(p.Border))
	num(uint64(p.LogoEdge))
	num(math.Float64bits(p.LogoFraction))
	h.Write([]byte{p.Foreground.R, p.Foreground.G, p.Foreground.B, p.Foreground.A,
		p.Background.R, p.Background.G, p.Background.B, p.Background.A})
	logo := sha256.Sum256(p.Logo)
	str(string(logo[:]))
	return hex.EncodeToString(h.Sum(nil))
}
