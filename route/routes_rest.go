package route

import (
	"aquaflow/bizerror"
	"aquaflow/session"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var PathRoutes = "/v1/routes"

func RegisterRoutesRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathRoutes, middleWares...)
	g.POST("", handleGenerateRoute)
}

func handleGenerateRoute(c *gin.Context) {
	generation := RouteGeneration{}
	if err := c.ShouldBindBodyWith(&generation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	detail, err := GenerateRouteFunc(c.Request.Context(), &generation, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, detail)
}
