package bizerror

import (
	"errors"
	"net/http"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")

	// permission denial is a business-rule conflict, not a 403
	ErrNoPermission = errors.New("user has no permission")

	ErrInvalidPassword  = errors.New("invalid password")
	ErrUserNotConfirmed = errors.New("user is not confirmed, a confirmation email has been sent")
	ErrEmailExisted     = errors.New("email is already registered")
	ErrEmailUnknown     = errors.New("email is not registered")
	ErrInvalidToken     = errors.New("invalid token")

	ErrRoleExisted   = errors.New("role already exists")
	ErrRoleProtected = errors.New("role can not be deleted")
	ErrRoleActive    = errors.New("role is not deactivated")
	ErrUnknownAction = errors.New("one or more actions do not exist")

	ErrAddressLimitExceeded = errors.New("user already holds 3 addresses")
	ErrGeocodeNoResult      = errors.New("address can not be located")

	ErrOrderStateInvalid = errors.New("order state does not allow this transition")
	ErrNotDeliveryUser   = errors.New("target user does not hold the delivery role")
)

type BizError interface {
	Respond() *BizErrorDetail
}

type BizErrorDetail struct {
	Status  int
	Code    string
	Message string

	Data  interface{}
	Cause error
}

type ErrBadParam struct {
	Cause error
}

func (e *ErrBadParam) Unwrap() error {
	return e.Cause
}
func (e *ErrBadParam) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "common.bad_param"
}
func (e *ErrBadParam) Respond() *BizErrorDetail {
	message := "common.bad_param"
	if e.Cause != nil {
		message = e.Cause.Error()
	}
	return &BizErrorDetail{Status: http.StatusBadRequest, Code: "common.bad_param", Message: message, Data: nil}
}
