package authority

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
	PathRoles   = "/v1/roles"
	PathActions = "/v1/actions"
)

func RegisterRolesRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathRoles, middleWares...)
	g.POST("", handleCreateRole)
	g.GET("", handleQueryRoles)
	g.GET(":id/actions", handleDetailRoleActions)
	g.PUT(":id", handleEditRole)
	g.DELETE(":id", handleDeleteRole)
	g.POST(":id/activation", handleActivateRole)

	a := r.Group(PathActions, middleWares...)
	a.GET("", handleQueryActions)
}

func parseIdParam(c *gin.Context) types.ID {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	return id
}

func handleCreateRole(c *gin.Context) {
	creation := domain.RoleCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	record, err := CreateRoleFunc(&creation, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleQueryRoles(c *gin.Context) {
	records, err := QueryRolesFunc(session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}

func handleDetailRoleActions(c *gin.Context) {
	record, err := DetailRoleActionsFunc(parseIdParam(c), session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleEditRole(c *gin.Context) {
	updating := domain.RoleUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := EditRoleFunc(parseIdParam(c), &updating, session.FindSecurityContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleDeleteRole(c *gin.Context) {
	if err := DeleteRoleFunc(parseIdParam(c), session.FindSecurityContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleActivateRole(c *gin.Context) {
	if err := ActivateRoleFunc(parseIdParam(c), session.FindSecurityContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleQueryActions(c *gin.Context) {
	query := domain.ActionQuery{}
	if err := c.MustBindWith(&query, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	page, err := QueryActionsFunc(&query, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, page)
}
