package order

import (
	"aquaflow/bizerror"
	"aquaflow/domain"
	"aquaflow/session"
	"net/http"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	PathOrders      = "/v1/orders"
	PathOrderStates = "/v1/order-states"
)

func RegisterOrdersRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathOrders, middleWares...)
	g.POST("", handleCreateOrder)
	g.GET("", handleQueryOrders)
	g.PUT(":id/cancellation", handleCancelOrder)
	g.PUT(":id/confirmation", handleConfirmOrder)
	g.PUT(":id/delivery", handleAssignDelivery)

	s := r.Group(PathOrderStates, middleWares...)
	s.PUT("", handleChangeStates)

	u := r.Group("/v1/users", middleWares...)
	u.GET(":id/orders", handleQueryOrdersByUser)

	d := r.Group("/v1/delivery-users", middleWares...)
	d.GET(":id/orders", handleQueryOrdersByDelivery)
}

func parseIdParam(c *gin.Context) types.ID {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	return id
}

func handleCreateOrder(c *gin.Context) {
	creation := domain.OrderCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	record, err := CreateOrderFunc(&creation, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}

func handleCancelOrder(c *gin.Context) {
	if err := CancelOrderFunc(parseIdParam(c), session.FindSecurityContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleConfirmOrder(c *gin.Context) {
	if err := ConfirmOrderFunc(parseIdParam(c), session.FindSecurityContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleAssignDelivery(c *gin.Context) {
	assignment := domain.DeliveryAssignment{}
	if err := c.ShouldBindBodyWith(&assignment, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := AssignDeliveryFunc(parseIdParam(c), &assignment, session.FindSecurityContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleChangeStates(c *gin.Context) {
	changes := []domain.StateChange{}
	if err := c.ShouldBindBodyWith(&changes, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := ChangeStatesFunc(changes, session.FindSecurityContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleQueryOrders(c *gin.Context) {
	query := domain.OrderQuery{}
	if err := c.MustBindWith(&query, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	page, err := QueryOrdersFunc(&query, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, page)
}

func handleQueryOrdersByUser(c *gin.Context) {
	query := domain.OrderQuery{}
	if err := c.MustBindWith(&query, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	page, err := QueryOrdersByUserFunc(parseIdParam(c), &query, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, page)
}

func handleQueryOrdersByDelivery(c *gin.Context) {
	query := domain.DeliveryOrderQuery{}
	if err := c.MustBindWith(&query, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	page, err := QueryOrdersByDeliveryFunc(parseIdParam(c), &query, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, page)
}
