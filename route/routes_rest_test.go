package route

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"aquaflow/bizerror"
	"aquaflow/client/routing"
	"aquaflow/session"
	"aquaflow/testinfra"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
)

func TestRoutesRestAPI(t *testing.T) {
	RegisterTestingT(t)

	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	RegisterRoutesRestAPI(router)

	t.Run("should reject generations with less than two stops", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, PathRoutes, strings.NewReader(`{"stops":[[1,2]]}`))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(ContainSubstring("common.bad_param"))
	})

	t.Run("should generate routes", func(t *testing.T) {
		GenerateRouteFunc = func(ctx context.Context, c *RouteGeneration, sec *session.Context) (*RouteDetail, error) {
			Expect(c.Stops).To(Equal([][2]float64{{1, 2}, {3, 4}}))
			start := [2]float64{5, 6}
			return &RouteDetail{Route: &routing.RouteDescription{
				Geometry: json.RawMessage(`{"type":"LineString"}`), Duration: 120.5, Distance: 800.1,
			}, Start: &start}, nil
		}
		req := httptest.NewRequest(http.MethodPost, PathRoutes, strings.NewReader(
			`{"stops":[[1,2],[3,4]],"startAddressId":"300"}`))
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`{"route":{"geometry":{"type":"LineString"},"duration":120.5,"distance":800.1},
			"start":[5,6]}`))
	})

	t.Run("should surface unknown depot addresses as not found", func(t *testing.T) {
		GenerateRouteFunc = func(ctx context.Context, c *RouteGeneration, sec *session.Context) (*RouteDetail, error) {
			return nil, bizerror.ErrNotFound
		}
		req := httptest.NewRequest(http.MethodPost, PathRoutes, strings.NewReader(
			`{"stops":[[1,2],[3,4]],"startAddressId":"999"}`))
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusNotFound))
	})

	t.Run("should surface permission denial as conflict", func(t *testing.T) {
		GenerateRouteFunc = func(ctx context.Context, c *RouteGeneration, sec *session.Context) (*RouteDetail, error) {
			return nil, bizerror.ErrNoPermission
		}
		req := httptest.NewRequest(http.MethodPost, PathRoutes, strings.NewReader(`{"stops":[[1,2],[3,4]]}`))
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusConflict))
	})
}
