package domain

import "github.com/fundwit/go-commons/types"

// Token is a one-time emailed code: account confirmation and password reset.
// Destroyed on successful use, rejected after TokenMaxAge.
type Token struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	Token  string   `json:"token" gorm:"index"`
	UserID types.ID `json:"userId"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}
