package aniskip

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/marquee-player/marquee/filesystem"
	"github.com/marquee-player/marquee/log"
	"github.com/marquee-player/marquee/where"
	"github.com/metafates/gache"
)

// cacheLifetime bounds how long fetched skip times are trusted. AniSkip entries are crowd-sourced and do get corrected.
const cacheLifetime = 7 * 24 * time.Hour

var skipCache = sync.OnceValue(func() *gache.Cache[map[string]*SkipTimes] {
	return gache.New[map[string]*SkipTimes](&gache.Options{
		Path:       where.Aniskip(),
		Lifetime:   cacheLifetime,
		FileSystem: &filesystem.CacheFs{},
	})
})

func cacheKey(malID, episode int) string {
	return fmt.Sprintf("%d/%d", malID, episode)
}

// Cached is SkipTimes backed by an on-disk cache. Only episodes with data are cached, so a missing
// entry is asked again on the next lookup.
func (c *Client) Cached(ctx context.Context, malID, episode int) (*SkipTimes, error) {
	cache := skipCache()
	k := cacheKey(malID, episode)

	entries, expired, err := cache.Get()
	if err != nil {
		log.Warnf("read aniskip cache: %v", err)
	}
	if err != nil || expired || entries == nil {
		entries = make(map[string]*SkipTimes)
	}

	if times, ok := entries[k]; ok {
		return times, nil
	}

	times, err := c.SkipTimes(ctx, malID, episode)
	if err != nil || times == nil {
		return times, err
	}

	entries[k] = times
	if err := cache.Set(entries); err != nil {
		log.Warnf("write aniskip cache: %v", err)
	}

	return times, nil
}
