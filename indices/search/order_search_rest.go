package search

import (
	"net/http"

	"aquaflow/bizerror"
	"aquaflow/session"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var PathOrderDocuments = "/v1/order-documents"

func RegisterOrderSearchRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathOrderDocuments, middleWares...)
	g.GET("", handleSearchOrders)
}

func handleSearchOrders(c *gin.Context) {
	query := OrderSearchQuery{}
	if err := c.MustBindWith(&query, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	records, err := SearchOrdersFunc(c.Request.Context(), query, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}
