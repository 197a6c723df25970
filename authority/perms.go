package authority

import (
	"aquaflow/bizerror"
	"aquaflow/domain"
	"aquaflow/persistence"
	"aquaflow/session"
	"errors"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	HasPermissionFunc = HasPermission
)

// HasPermission answers whether the user's current role grants the action.
// The grant set is re-queried on every call: a role edit is visible to the
// very next check.
func HasPermission(uid types.ID, actionName string) (bool, error) {
	db := persistence.ActiveDataSourceManager.GormDB()

	user := domain.User{}
	if err := db.Where(&domain.User{ID: uid}).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, bizerror.ErrNotFound
		}
		return false, err
	}

	role := domain.Role{}
	if err := db.Where(&domain.Role{ID: user.RoleID}).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// dangling foreign key
			return false, bizerror.ErrNotFound
		}
		return false, err
	}

	names, err := LoadRoleActionNames(db, role.ID)
	if err != nil {
		return false, err
	}
	for _, name := range names {
		if name == actionName {
			return true, nil
		}
	}
	return false, nil
}

func LoadRoleActionNames(db *gorm.DB, roleId types.ID) ([]string, error) {
	var names []string
	if err := db.Model(&domain.RoleAction{}).
		Joins("JOIN actions ON actions.id = role_actions.action_id").
		Where("role_actions.role_id = ?", roleId).
		Pluck("actions.name", &names).Error; err != nil {
		return nil, err
	}
	if names == nil {
		names = []string{}
	}
	return names, nil
}

// CheckPermission is the gate in front of every guarded operation.
func CheckPermission(sec *session.Context, actionName string) error {
	if sec == nil {
		return bizerror.ErrUnauthenticated
	}
	granted, err := HasPermissionFunc(sec.Identity.ID, actionName)
	if err != nil {
		return err
	}
	if !granted {
		return bizerror.ErrNoPermission
	}
	return nil
}
