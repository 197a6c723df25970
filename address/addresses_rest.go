package address

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
	PathAddresses         = "/v1/addresses"
	PathDeliveryAddresses = "/v1/delivery-addresses"
)

func RegisterAddressesRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathAddresses, middleWares...)
	g.POST("", handleCreateAddress)
	g.GET(":id", handleDetailAddress)
	g.PUT(":id", handleEditAddress)
	g.DELETE(":id", handleDeleteAddress)

	d := r.Group(PathDeliveryAddresses, middleWares...)
	d.GET("", handleQueryDeliveryOriginAddresses)

	u := r.Group("/v1/users", middleWares...)
	u.GET(":id/addresses", handleQueryUserAddresses)
}

func parseIdParam(c *gin.Context) types.ID {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	return id
}

func handleCreateAddress(c *gin.Context) {
	creation := domain.AddressCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	record, err := CreateAddressFunc(c.Request.Context(), &creation, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}

func handleDetailAddress(c *gin.Context) {
	record, err := DetailAddressFunc(parseIdParam(c), session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleEditAddress(c *gin.Context) {
	updating := domain.AddressUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := EditAddressFunc(c.Request.Context(), parseIdParam(c), &updating, session.FindSecurityContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleDeleteAddress(c *gin.Context) {
	if err := DeleteAddressFunc(parseIdParam(c), session.FindSecurityContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleQueryUserAddresses(c *gin.Context) {
	records, err := QueryUserAddressesFunc(parseIdParam(c), session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}

func handleQueryDeliveryOriginAddresses(c *gin.Context) {
	records, err := QueryDeliveryOriginAddressesFunc(session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}
