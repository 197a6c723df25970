package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

type Config struct {
	BaseURL   string
	UserAgent string
}

func ConfigFromEnv() Config {
	c := Config{
		BaseURL:   os.Getenv("GEOCODE_SERVICE_URL"),
		UserAgent: os.Getenv("GEOCODE_USER_AGENT"),
	}
	if c.BaseURL == "" {
		c.BaseURL = "https://nominatim.openstreetmap.org"
	}
	if c.UserAgent == "" {
		c.UserAgent = "aquaflow"
	}
	return c
}

// LonLat is a coordinate pair ordered [longitude, latitude].
type LonLat [2]float64

type Geocoder struct {
	config  Config
	client  *http.Client
	limiter *rate.Limiter
}

func NewGeocoder(config Config, transport http.RoundTripper) *Geocoder {
	return &Geocoder{
		config: config,
		client: &http.Client{Transport: transport, Timeout: 10 * time.Second},
		// nominatim usage policy: at most one request per second
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

type searchResult struct {
	Lon string `json:"lon"`
	Lat string `json:"lat"`
}

// Locate resolves a free-form address text to a coordinate pair.
// A text the provider cannot resolve yields (nil, nil).
func (g *Geocoder) Locate(ctx context.Context, text string) (*LonLat, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqURL := fmt.Sprintf("%s/search?format=json&limit=1&q=%s", g.config.BaseURL, url.QueryEscape(text))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", g.config.UserAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode service responded %d", resp.StatusCode)
	}

	results := []searchResult{}
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}

	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("geocode service returned malformed longitude %q", results[0].Lon)
	}
	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("geocode service returned malformed latitude %q", results[0].Lat)
	}
	return &LonLat{lon, lat}, nil
}
