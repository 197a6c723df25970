package session

import (
	"time"

	"github.com/fundwit/go-commons/types"
)

type Context struct {
	Token    string   `json:"token"`
	Identity Identity `json:"identity"`

	SigningTime time.Time `json:"-"`
}

type Identity struct {
	ID       types.ID `json:"id"`
	Name     string   `json:"name"`
	Lastname string   `json:"lastname"`
	Email    string   `json:"email"`
}
