// Package aniskip provides a client for the AniSkip API, which publishes opening and ending
// timestamps of anime episodes. They are turned into chapter markers for the progress bar.
package aniskip

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/marquee-player/marquee/log"
	"github.com/marquee-player/marquee/network"
)

const baseURL = "https://api.aniskip.com/v1/skip-times"

// SkipTimes encapsulates the temporal intervals for opening and ending sequences.
type SkipTimes struct {
	Opening  Interval `json:"opening"`
	Ending   Interval `json:"ending"`
	HasIntro bool     `json:"has_intro"`
	HasOutro bool     `json:"has_outro"`
}

// Interval represents a continuous temporal range defined in seconds.
type Interval struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// apiResponse defines the internal structural mapping for AniSkip API responses.
type apiResponse struct {
	Found   bool `json:"found"`
	Results []struct {
		Interval struct {
			StartTime float64 `json:"start_time"`
			EndTime   float64 `json:"end_time"`
		} `json:"interval"`
		SkipType string `json:"skip_type"`
	} `json:"results"`
}

// Client queries an AniSkip-compatible endpoint.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// DefaultClient talks to the public AniSkip service.
var DefaultClient = &Client{
	BaseURL: baseURL,
	HTTP:    network.Client,
}

// GetSkipTimes retrieves skip intervals through DefaultClient and the on-disk cache.
func GetSkipTimes(ctx context.Context, malID, episode int) (*SkipTimes, error) {
	return DefaultClient.Cached(ctx, malID, episode)
}

// SkipTimes retrieves the skip intervals for a MyAnimeList entry and episode number.
// Returns nil (not an error) if the service is unreachable or has no data for the episode.
func (c *Client) SkipTimes(ctx context.Context, malID, episode int) (*SkipTimes, error) {
	url := fmt.Sprintf("%s/%d/%d?types=op&types=ed", c.BaseURL, malID, episode)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build aniskip request: %w", err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		log.Warnf("aniskip API request failed: %v", err)
		return nil, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warnf("aniskip API returned status %d", resp.StatusCode)
		return nil, nil
	}

	var data apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("parse aniskip response: %w", err)
	}

	if !data.Found || len(data.Results) == 0 {
		return nil, nil
	}

	times := &SkipTimes{}

	for _, result := range data.Results {
		interval := Interval{
			Start: result.Interval.StartTime,
			End:   result.Interval.EndTime,
		}

		switch result.SkipType {
		case "op":
			times.Opening = interval
			times.HasIntro = true
		case "ed":
			times.Ending = interval
			times.HasOutro = true
		}
	}

	return times, nil
}
