package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"
)

// Nominatim queries the OpenStreetMap geocoder. Requests are paced to one
// per MinInterval and results are cached per query for the process
// lifetime (office addresses do not change mid-run).
type Nominatim struct {
	BaseURL     string
	UserAgent   string
	MinInterval time.Duration
	Client      *http.Client

	mu        sync.Mutex
	lastReqAt time.Time
	cache     map[string][2]float64
}

type searchItem struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (g *Nominatim) Geocode(ctx context.Context, query string) (float64, float64, error) {
	if g.Client == nil {
		g.Client = &http.Client{Timeout: 10 * time.Second}
	}
	if g.BaseURL == "" {
		g.BaseURL = "https://nominatim.openstreetmap.org"
	}
	if g.UserAgent == "" {
		g.UserAgent = "qaztriage-backend"
	}
	if g.MinInterval <= 0 {
		g.MinInterval = time.Second
	}

	g.mu.Lock()
	if g.cache == nil {
		g.cache = map[string][2]float64{}
	}
	if cached, ok := g.cache[query]; ok {
		g.mu.Unlock()
		return cached[0], cached[1], nil
	}
	sleepFor := time.Until(g.lastReqAt.Add(g.MinInterval))
	g.lastReqAt = time.Now().Add(sleepFor)
	g.mu.Unlock()

	if sleepFor > 0 {
		timer := time.NewTimer(sleepFor)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return 0, 0, ctx.Err()
		case <-timer.C:
		}
	}

	endpoint := fmt.Sprintf("%s/search?q=%s&format=json&limit=1", g.BaseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, 0, err
	}
	req.Header.Set("User-Agent", g.UserAgent)

	resp, err := g.Client.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, 0, fmt.Errorf("nominatim http error: %s", resp.Status)
	}

	var items []searchItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return 0, 0, err
	}
	lat, lon, err := parseSearchItems(items)
	if err != nil {
		return 0, 0, err
	}

	g.mu.Lock()
	g.cache[query] = [2]float64{lat, lon}
	g.mu.Unlock()
	return lat, lon, nil
}

func parseSearchItems(items []searchItem) (float64, float64, error) {
	if len(items) == 0 {
		return 0, 0, ErrNotFound
	}
	lat, err := strconv.ParseFloat(items[0].Lat, 64)
	if err != nil {
		return 0, 0, err
	}
	lon, err := strconv.ParseFloat(items[0].Lon, 64)
	if err != nil {
		return 0, 0, err
	}
	return lat, lon, nil
}
