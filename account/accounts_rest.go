package account

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
	PathUsers         = "/v1/users"
	PathDeliveryUsers = "/v1/delivery-users"
	PathSessions      = "/v1/sessions"
)

// RegisterAccountsRestAPI mounts the endpoints reachable without a session:
// registration, login and the token driven account flows.
func RegisterAccountsRestAPI(r *gin.Engine) {
	r.POST(PathUsers, handleRegisterUser)
	r.POST(PathSessions, handleLogin)
	r.POST("/v1/account-confirmations", handleConfirmUser)
	r.POST("/v1/token-validations", handleValidateToken)
	r.POST("/v1/password-resets", handleResetPassword)
	r.PUT("/v1/passwords", handleUpdatePassword)
}

func RegisterUsersRestAPI(r *gin.Engine, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathUsers, middleWares...)
	g.GET("", handleQueryUsers)
	g.GET(":id", handleDetailUser)
	g.DELETE(":id", handleDeactivateUser)

	d := r.Group(PathDeliveryUsers, middleWares...)
	d.GET("", handleQueryDeliveryUsers)
}

func parseIdParam(c *gin.Context) types.ID {
	id, err := types.ParseID(c.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	return id
}

func handleRegisterUser(c *gin.Context) {
	registration := domain.UserRegistration{}
	if err := c.ShouldBindBodyWith(&registration, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	record, err := RegisterUserFunc(&registration)
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, record)
}

func handleLogin(c *gin.Context) {
	login := domain.LoginRequest{}
	if err := c.ShouldBindBodyWith(&login, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	result, err := LoginFunc(&login)
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, result)
}

func handleConfirmUser(c *gin.Context) {
	req := domain.TokenRequest{}
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := ConfirmUserFunc(req.Token); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleValidateToken(c *gin.Context) {
	req := domain.TokenRequest{}
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := ValidateTokenFunc(req.Token); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleResetPassword(c *gin.Context) {
	req := domain.PasswordResetRequest{}
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := ResetPasswordFunc(req.Email); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleUpdatePassword(c *gin.Context) {
	updating := domain.PasswordUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	if err := UpdatePasswordFunc(updating.Token, updating.Password); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleQueryUsers(c *gin.Context) {
	query := domain.UserQuery{}
	if err := c.MustBindWith(&query, binding.Query); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	page, err := QueryUsersFunc(&query, session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, page)
}

func handleDetailUser(c *gin.Context) {
	record, err := DetailUserFunc(parseIdParam(c), session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, record)
}

func handleDeactivateUser(c *gin.Context) {
	if err := DeactivateUserFunc(parseIdParam(c), session.FindSecurityContext(c)); err != nil {
		panic(err)
	}
	c.AbortWithStatus(http.StatusNoContent)
}

func handleQueryDeliveryUsers(c *gin.Context) {
	records, err := QueryDeliveryUsersFunc(session.FindSecurityContext(c))
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, records)
}
