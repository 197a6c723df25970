package session_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"aquaflow/bizerror"
	"aquaflow/session"
	"aquaflow/testinfra"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"
	"github.com/patrickmn/go-cache"
)

func buildSessionRouter() *gin.Engine {
	router := gin.Default()
	router.Use(bizerror.ErrorHandling())
	router.GET("/secured", session.SimpleAuthFilter(), func(c *gin.Context) {
		secCtx := session.FindSecurityContext(c)
		c.JSON(http.StatusOK, gin.H{"uid": secCtx.Identity.ID.String()})
	})
	return router
}

func TestSimpleAuthFilter(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should reject requests without a token", func(t *testing.T) {
		router := buildSessionRouter()
		req := httptest.NewRequest(http.MethodGet, "/secured", nil)
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusUnauthorized))
	})

	t.Run("should reject garbage bearer tokens", func(t *testing.T) {
		router := buildSessionRouter()
		req := httptest.NewRequest(http.MethodGet, "/secured", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		status, _, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusUnauthorized))
	})

	t.Run("should accept a signed bearer token and cache the session", func(t *testing.T) {
		router := buildSessionRouter()
		token, err := session.SignToken(session.Identity{ID: 42, Name: "Ana"}, true, time.Now())
		Expect(err).To(BeNil())

		req := httptest.NewRequest(http.MethodGet, "/secured", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`{"uid":"42"}`))

		_, found := session.TokenCache.Get(token)
		Expect(found).To(BeTrue())
	})

	t.Run("should accept the token from the session cookie", func(t *testing.T) {
		router := buildSessionRouter()
		token, err := session.SignToken(session.Identity{ID: 7}, true, time.Now())
		Expect(err).To(BeNil())

		req := httptest.NewRequest(http.MethodGet, "/secured", nil)
		req.AddCookie(&http.Cookie{Name: session.KeySecToken, Value: token})
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`{"uid":"7"}`))
	})

	t.Run("should serve cached sessions without re-parsing", func(t *testing.T) {
		router := buildSessionRouter()
		secCtx := &session.Context{Token: "cached-token", Identity: session.Identity{ID: 99}}
		session.TokenCache.Set("cached-token", secCtx, cache.DefaultExpiration)

		req := httptest.NewRequest(http.MethodGet, "/secured", nil)
		req.Header.Set("Authorization", "Bearer cached-token")
		status, body, _ := testinfra.ExecuteRequest(req, router)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(MatchJSON(`{"uid":"99"}`))
	})
}
