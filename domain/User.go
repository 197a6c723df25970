package domain

import "github.com/fundwit/go-commons/types"

type User struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	Name     string `json:"name"`
	Lastname string `json:"lastname"`
	Email    string `json:"email" gorm:"unique_index"`
	Secret   string `json:"-"`

	Confirmed bool     `json:"confirmed"`
	Active    bool     `json:"active"`
	RoleID    types.ID `json:"roleId"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

type UserRegistration struct {
	Name     string `json:"name" binding:"required,lte=64"`
	Lastname string `json:"lastname" binding:"required,lte=64"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,gte=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UserInfo struct {
	ID       types.ID `json:"id"`
	Name     string   `json:"name"`
	Lastname string   `json:"lastname"`
	Email    string   `json:"email"`
	RoleID   types.ID `json:"roleId"`
	RoleName string   `json:"role"`
	Active   bool     `json:"active"`
}

type UserBrief struct {
	ID       types.ID `json:"id"`
	Name     string   `json:"name"`
	Lastname string   `json:"lastname"`
}

type LoginResult struct {
	Token string        `json:"jwt"`
	User  UserSecurityInfo `json:"user"`
}

type UserSecurityInfo struct {
	ID       types.ID `json:"id"`
	Name     string   `json:"name"`
	Lastname string   `json:"lastname"`
	Email    string   `json:"email"`
	Role     string   `json:"role"`
	Actions  []string `json:"actions"`
}

type UserQuery struct {
	Page   int      `json:"page" form:"page"`
	Limit  int      `json:"limit" form:"limit"`
	RoleID types.ID `json:"roleId" form:"roleId"`
}

type UserPage struct {
	Users      []UserInfo `json:"users"`
	TotalPages int        `json:"totalPages"`
}

type PasswordUpdating struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,gte=8"`
}

type TokenRequest struct {
	Token string `json:"token" binding:"required"`
}

type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}
