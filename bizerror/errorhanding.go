package bizerror

import (
	"aquaflow/common"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
)

func ErrorHandling() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handle(c)
		c.Next()
	}
}

func handle(c *gin.Context) {
	if ret := recover(); ret != nil {
		err, ok := ret.(error)
		if !ok {
			err = errors.New(fmt.Sprintf("%s", ret))
		}
		HandleError(c, err)
	} else {
		if err := c.Errors.Last(); err != nil {
			HandleError(c, err)
		}
	}
}

var statusMappings = []struct {
	err    error
	status int
	code   string
}{
	{ErrUnauthenticated, http.StatusUnauthorized, "common.unauthenticated"},
	{ErrInvalidPassword, http.StatusUnauthorized, "security.invalid_password"},
	{ErrUserNotConfirmed, http.StatusUnauthorized, "security.user_not_confirmed"},
	{ErrForbidden, http.StatusForbidden, "security.forbidden"},
	{ErrRoleProtected, http.StatusForbidden, "authority.role_protected"},
	{ErrRoleActive, http.StatusForbidden, "authority.role_active"},
	{ErrNoPermission, http.StatusConflict, "security.no_permission"},
	{ErrEmailExisted, http.StatusConflict, "account.email_existed"},
	{ErrEmailUnknown, http.StatusConflict, "account.email_unknown"},
	{ErrRoleExisted, http.StatusConflict, "authority.role_existed"},
	{ErrAddressLimitExceeded, http.StatusConflict, "address.limit_exceeded"},
	{ErrGeocodeNoResult, http.StatusConflict, "address.geocode_no_result"},
	{ErrOrderStateInvalid, http.StatusConflict, "order.state_invalid"},
	{ErrNotDeliveryUser, http.StatusConflict, "order.not_delivery_user"},
	{ErrUnknownAction, http.StatusBadRequest, "authority.unknown_action"},
	{ErrInvalidToken, http.StatusNotFound, "account.invalid_token"},
}

func HandleError(c *gin.Context, err error) {
	logrus.Error(err)

	genericErr := err
	var ginErr *gin.Error
	if errors.As(err, &ginErr) {
		genericErr = ginErr.Err
	}

	if bizErr, ok := genericErr.(BizError); ok {
		respond := bizErr.Respond()
		c.JSON(respond.Status, &common.ErrorBody{Code: respond.Code, Message: respond.Message, Data: respond.Data})
		c.Abort()
		return
	}

	// bad request: io.EOF (no body)
	if errors.Is(genericErr, io.EOF) {
		c.JSON(http.StatusBadRequest, &common.ErrorBody{Code: "bad_request.body_not_found", Message: "body not found"})
		c.Abort()
		return
	}
	// bad request: json syntax error
	if syntaxErr, ok := genericErr.(*json.SyntaxError); ok {
		c.JSON(http.StatusBadRequest, &common.ErrorBody{Code: "bad_request.invalid_body_format", Message: "invalid body format", Data: syntaxErr.Error()})
		c.Abort()
		return
	}
	// validation failed
	if validationErr, ok := genericErr.(validator.ValidationErrors); ok {
		c.JSON(http.StatusBadRequest, &common.ErrorBody{Code: "bad_request.validation_failed", Message: "validation failed", Data: validationErr.Error()})
		c.Abort()
		return
	}

	for _, m := range statusMappings {
		if errors.Is(genericErr, m.err) {
			c.JSON(m.status, &common.ErrorBody{Code: m.code, Message: m.err.Error()})
			c.Abort()
			return
		}
	}

	if errors.Is(genericErr, gorm.ErrRecordNotFound) || errors.Is(genericErr, ErrNotFound) {
		c.JSON(http.StatusNotFound, &common.ErrorBody{Code: "common.record_not_found", Message: "record not found"})
		c.Abort()
		return
	}

	c.JSON(http.StatusInternalServerError, &common.ErrorBody{Code: "common.internal_server_error", Message: err.Error()})
	c.Abort()
}
