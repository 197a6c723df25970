package routing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriveRoute(t *testing.T) {
	t.Run("should request a driving route through the stops in order", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/route/v1/driving/1.000000,2.000000;3.000000,4.000000", r.URL.Path)
			assert.Equal(t, "full", r.URL.Query().Get("overview"))
			assert.Equal(t, "geojson", r.URL.Query().Get("geometries"))
			w.Write([]byte(`{"code":"Ok","routes":[{"geometry":{"type":"LineString","coordinates":[]},
				"duration":60.5,"distance":1200.3}]}`))
		}))
		defer server.Close()

		router := NewRouter(Config{BaseURL: server.URL}, http.DefaultTransport)
		route, err := router.DriveRoute(context.Background(), [][2]float64{{1, 2}, {3, 4}})
		require.NoError(t, err)
		assert.Equal(t, 60.5, route.Duration)
		assert.Equal(t, 1200.3, route.Distance)
		assert.JSONEq(t, `{"type":"LineString","coordinates":[]}`, string(route.Geometry))
	})

	t.Run("should refuse fewer than two stops", func(t *testing.T) {
		router := NewRouter(Config{BaseURL: "http://unused.local"}, http.DefaultTransport)
		_, err := router.DriveRoute(context.Background(), [][2]float64{{1, 2}})
		assert.ErrorContains(t, err, "at least 2")
	})

	t.Run("should fail when the provider answers a non Ok code", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"code":"NoRoute","routes":[]}`))
		}))
		defer server.Close()

		router := NewRouter(Config{BaseURL: server.URL}, http.DefaultTransport)
		_, err := router.DriveRoute(context.Background(), [][2]float64{{1, 2}, {3, 4}})
		assert.ErrorContains(t, err, "NoRoute")
	})

	t.Run("should fail on provider errors", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		router := NewRouter(Config{BaseURL: server.URL}, http.DefaultTransport)
		_, err := router.DriveRoute(context.Background(), [][2]float64{{1, 2}, {3, 4}})
		assert.ErrorContains(t, err, "500")
	})
}
