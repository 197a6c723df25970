package testinfra

import (
	"io"
	"io/ioutil"
	"net/http"
	"net/http/httptest"

	"aquaflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

// BuildSecCtx builds a security context for an already authenticated user
func BuildSecCtx(uid types.ID) *session.Context {
	return &session.Context{Identity: session.Identity{ID: uid}}
}

func ExecuteRequest(req *http.Request, router *gin.Engine) (int, string, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	bodyBytes, _ := ioutil.ReadAll(w.Body)
	return w.Code, string(bodyBytes), w
}

func ExecuteRequestWithHeaders(method, path string, body io.Reader, headers map[string]string, router *gin.Engine) (int, string, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return ExecuteRequest(req, router)
}
