package domain

import "github.com/fundwit/go-commons/types"

const (
	RoleAdmin    = "ROLE_ADMIN"
	RoleUser     = "ROLE_USER"
	RoleDelivery = "ROLE_DELIVERY"
)

type Role struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	Name            string `json:"name" gorm:"unique_index"`
	NameDescriptive string `json:"nameDescriptive" gorm:"unique_index"`
	Description     string `json:"description"`
	Active          bool   `json:"active"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

// Action is a named permission unit, the closed vocabulary of permission checks.
// Rows are seeded at bootstrap and read-only afterwards.
type Action struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	Name        string `json:"name" gorm:"unique_index"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

type RoleAction struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	RoleID   types.ID `json:"roleId" gorm:"unique_index:uni_role_action"`
	ActionID types.ID `json:"actionId" gorm:"unique_index:uni_role_action"`
}

type RoleCreation struct {
	Name            string   `json:"name" binding:"required,lte=64"`
	NameDescriptive string   `json:"nameDescriptive" binding:"required,lte=128"`
	Description     string   `json:"description" binding:"required"`
	Actions         []string `json:"actions" binding:"required"`
}

type RoleUpdating struct {
	NewName            string   `json:"newName" binding:"required,lte=64"`
	NewNameDescriptive string   `json:"newNameDescriptive" binding:"required,lte=128"`
	NewDescription     string   `json:"newDescription" binding:"required"`
	NewActions         []string `json:"newActions" binding:"required"`
}

type RoleDetail struct {
	Role    Role     `json:"role"`
	Actions []string `json:"actions"`
}

type ActionQuery struct {
	Page  int    `json:"page" form:"page"`
	Limit int    `json:"limit" form:"limit"`
	Type  string `json:"type" form:"type"`
}

type ActionPage struct {
	Actions    []Action `json:"actions"`
	TotalPages int      `json:"totalPages"`
}
