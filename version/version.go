// Package version tracks releases: it looks up the latest published version and tells the user when theirs is behind.
package version

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/marquee-player/marquee/constant"
	"github.com/marquee-player/marquee/filesystem"
	"github.com/marquee-player/marquee/network"
	"github.com/marquee-player/marquee/util"
	"github.com/marquee-player/marquee/where"
	"github.com/metafates/gache"
)

// ReleasesURL is the GitHub API endpoint of the latest release.
var ReleasesURL = "https://api.github.com/repos/" + constant.Repository + "/releases/latest"

var latestCache = sync.OnceValue(func() *gache.Cache[string] {
	return gache.New[string](&gache.Options{
		Path:       filepath.Join(where.Cache(), "version.json"),
		Lifetime:   48 * time.Hour,
		FileSystem: &filesystem.CacheFs{},
	})
})

// Latest returns the most recent release version, without the leading "v".
// Lookups are cached for two days to stay clear of the API rate limit.
func Latest() (string, error) {
	cache := latestCache()

	if cached, expired, err := cache.Get(); err == nil && !expired && cached != "" {
		return cached, nil
	}

	resp, err := network.Client.Get(ReleasesURL)
	if err != nil {
		return "", err
	}
	defer util.Ignore(resp.Body.Close)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("release lookup: status %d", resp.StatusCode)
	}

	var release struct {
		TagName string `json:"tag_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", fmt.Errorf("release lookup: %w", err)
	}

	if release.TagName == "" {
		return "", errors.New("empty tag name")
	}

	latest := strings.TrimPrefix(release.TagName, "v")
	_ = cache.Set(latest)
	return latest, nil
}
