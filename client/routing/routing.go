package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

type Config struct {
	BaseURL string
}

func ConfigFromEnv() Config {
	c := Config{BaseURL: os.Getenv("ROUTING_SERVICE_URL")}
	if c.BaseURL == "" {
		c.BaseURL = "https://router.project-osrm.org"
	}
	return c
}

type Router struct {
	config Config
	client *http.Client
}

func NewRouter(config Config, transport http.RoundTripper) *Router {
	return &Router{config: config, client: &http.Client{Transport: transport, Timeout: 20 * time.Second}}
}

// RouteDescription keeps the provider geometry opaque: it is handed to
// callers exactly as received.
type RouteDescription struct {
	Geometry json.RawMessage `json:"geometry"`
	Duration float64         `json:"duration"`
	Distance float64         `json:"distance"`
}

type routeResponse struct {
	Code   string             `json:"code"`
	Routes []RouteDescription `json:"routes"`
}

// DriveRoute asks for a driving route visiting the coordinates in order.
// Each coordinate pair is [longitude, latitude].
func (r *Router) DriveRoute(ctx context.Context, coords [][2]float64) (*RouteDescription, error) {
	if len(coords) < 2 {
		return nil, fmt.Errorf("drive route needs at least 2 coordinates, got %d", len(coords))
	}

	points := make([]string, 0, len(coords))
	for _, c := range coords {
		points = append(points, fmt.Sprintf("%f,%f", c[0], c[1]))
	}
	reqURL := fmt.Sprintf("%s/route/v1/driving/%s?overview=full&geometries=geojson",
		r.config.BaseURL, strings.Join(points, ";"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("routing service responded %d", resp.StatusCode)
	}

	body := routeResponse{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	if body.Code != "Ok" || len(body.Routes) == 0 {
		return nil, fmt.Errorf("routing service returned code %q with %d routes", body.Code, len(body.Routes))
	}
	return &body.Routes[0], nil
}
