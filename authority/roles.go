package authority

import (
	"aquaflow/bizerror"
	"aquaflow/domain"
	"aquaflow/idgen"
	"aquaflow/persistence"
	"aquaflow/session"
	"errors"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	roleIdWorker       = sonyflake.NewSonyflake(sonyflake.Settings{})
	roleActionIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateRoleFunc        = CreateRole
	EditRoleFunc          = EditRole
	DeleteRoleFunc        = DeleteRole
	ActivateRoleFunc      = ActivateRole
	QueryRolesFunc        = QueryRoles
	DetailRoleActionsFunc = DetailRoleActions
	QueryActionsFunc      = QueryActions
)

func CreateRole(c *domain.RoleCreation, sec *session.Context) (*domain.Role, error) {
	if err := CheckPermission(sec, ActionCreateRole); err != nil {
		return nil, err
	}

	var role domain.Role
	err1 := persistence.ActiveDataSourceManager.GormDB().Transaction(func(tx *gorm.DB) error {
		actions, err := resolveActions(tx, c.Actions)
		if err != nil {
			return err
		}

		existed := domain.Role{}
		err = tx.Where(&domain.Role{Name: c.Name}).First(&existed).Error
		if err == nil {
			return bizerror.ErrRoleExisted
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		role = domain.Role{ID: idgen.NextID(roleIdWorker), Name: c.Name, NameDescriptive: c.NameDescriptive,
			Description: c.Description, Active: true, CreateTime: types.CurrentTimestamp()}
		if err := tx.Create(&role).Error; err != nil {
			return err
		}
		return insertRoleActions(tx, role.ID, actions)
	})
	if err1 != nil {
		return nil, err1
	}
	return &role, nil
}

func EditRole(id types.ID, u *domain.RoleUpdating, sec *session.Context) error {
	if err := CheckPermission(sec, ActionEditRole); err != nil {
		return err
	}

	return persistence.ActiveDataSourceManager.GormDB().Transaction(func(tx *gorm.DB) error {
		role := domain.Role{}
		if err := tx.Where(&domain.Role{ID: id}).First(&role).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return bizerror.ErrNotFound
			}
			return err
		}

		// descriptive fields are overwritten unconditionally
		role.Name = u.NewName
		role.NameDescriptive = u.NewNameDescriptive
		role.Description = u.NewDescription
		if err := tx.Save(&role).Error; err != nil {
			return err
		}

		// the grant set is regenerated wholesale, never patched
		if err := tx.Delete(domain.RoleAction{}, "role_id = ?", id).Error; err != nil {
			return err
		}
		actions, err := resolveActions(tx, u.NewActions)
		if err != nil {
			return err
		}
		return insertRoleActions(tx, id, actions)
	})
}

// DeleteRole deactivates: holders are reassigned to ROLE_USER first, the
// row itself is never removed.
func DeleteRole(id types.ID, sec *session.Context) error {
	if err := CheckPermission(sec, ActionDeleteRole); err != nil {
		return err
	}

	return persistence.ActiveDataSourceManager.GormDB().Transaction(func(tx *gorm.DB) error {
		role := domain.Role{}
		if err := tx.Where(&domain.Role{ID: id}).First(&role).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return bizerror.ErrNotFound
			}
			return err
		}
		if role.Name == domain.RoleAdmin || role.Name == domain.RoleUser {
			return bizerror.ErrRoleProtected
		}

		defaultRole, err := FindRoleByName(tx, domain.RoleUser)
		if err != nil {
			return err
		}
		if err := tx.Model(&domain.User{}).Where("role_id = ?", id).
			Update("role_id", defaultRole.ID).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Role{ID: id}).Update("active", false).Error
	})
}

func ActivateRole(id types.ID, sec *session.Context) error {
	if err := CheckPermission(sec, ActionActiveRole); err != nil {
		return err
	}

	db := persistence.ActiveDataSourceManager.GormDB()
	role := domain.Role{}
	if err := db.Where(&domain.Role{ID: id}).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return bizerror.ErrNotFound
		}
		return err
	}
	if role.Active {
		return bizerror.ErrRoleActive
	}
	return db.Model(&domain.Role{ID: id}).Update("active", true).Error
}

func QueryRoles(sec *session.Context) ([]domain.Role, error) {
	if err := CheckPermission(sec, ActionGetRoles); err != nil {
		return nil, err
	}

	roles := []domain.Role{}
	if err := persistence.ActiveDataSourceManager.GormDB().Order("ID ASC").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

func DetailRoleActions(id types.ID, sec *session.Context) (*domain.RoleDetail, error) {
	if err := CheckPermission(sec, ActionEditRole); err != nil {
		return nil, err
	}

	db := persistence.ActiveDataSourceManager.GormDB()
	role := domain.Role{}
	if err := db.Where(&domain.Role{ID: id}).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}
	names, err := LoadRoleActionNames(db, role.ID)
	if err != nil {
		return nil, err
	}
	return &domain.RoleDetail{Role: role, Actions: names}, nil
}

func QueryActions(q *domain.ActionQuery, sec *session.Context) (*domain.ActionPage, error) {
	if err := CheckPermission(sec, ActionGetActions); err != nil {
		return nil, err
	}

	page, limit := q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 5
	}

	db := persistence.ActiveDataSourceManager.GormDB().Model(&domain.Action{})
	if q.Type != "" {
		db = db.Where("type = ?", q.Type)
	}

	var total int
	if err := db.Count(&total).Error; err != nil {
		return nil, err
	}
	actions := []domain.Action{}
	if err := db.Order("ID ASC").Offset((page - 1) * limit).Limit(limit).Find(&actions).Error; err != nil {
		return nil, err
	}
	return &domain.ActionPage{Actions: actions, TotalPages: (total + limit - 1) / limit}, nil
}

// SeedRole creates a role with its grants inside an existing transaction,
// bypassing the session permission check. Bootstrap only.
func SeedRole(tx *gorm.DB, c domain.RoleCreation) (*domain.RoleDetail, error) {
	actions, err := resolveActions(tx, c.Actions)
	if err != nil {
		return nil, err
	}
	role := domain.Role{ID: idgen.NextID(roleIdWorker), Name: c.Name, NameDescriptive: c.NameDescriptive,
		Description: c.Description, Active: true, CreateTime: types.CurrentTimestamp()}
	if err := tx.Create(&role).Error; err != nil {
		return nil, err
	}
	if err := insertRoleActions(tx, role.ID, actions); err != nil {
		return nil, err
	}
	return &domain.RoleDetail{Role: role, Actions: c.Actions}, nil
}

func FindRoleByName(db *gorm.DB, name string) (*domain.Role, error) {
	role := domain.Role{}
	if err := db.Where(&domain.Role{Name: name}).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}
	return &role, nil
}

// resolveActions applies the strict cardinality rule: every requested name
// must resolve to an existing Action.
func resolveActions(db *gorm.DB, names []string) ([]domain.Action, error) {
	actions := []domain.Action{}
	if len(names) > 0 {
		if err := db.Where("name in (?)", names).Find(&actions).Error; err != nil {
			return nil, err
		}
	}
	if len(actions) != len(names) {
		return nil, bizerror.ErrUnknownAction
	}
	return actions, nil
}

func insertRoleActions(db *gorm.DB, roleId types.ID, actions []domain.Action) error {
	for _, action := range actions {
		r := domain.RoleAction{ID: idgen.NextID(roleActionIdWorker), RoleID: roleId, ActionID: action.ID}
		if err := db.Create(&r).Error; err != nil {
			return err
		}
	}
	return nil
}
