package account

import (
	"aquaflow/authority"
	"aquaflow/domain"
	"aquaflow/idgen"
	"aquaflow/persistence"
	"errors"
	"os"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

// DefaultSecurityConfiguration seeds the action vocabulary, the built-in
// roles and an administrator account. Existing rows are never modified,
// so operator edits to role grants survive restarts.
func DefaultSecurityConfiguration() error {
	return persistence.ActiveDataSourceManager.GormDB().Transaction(func(tx *gorm.DB) error {
		if err := seedActions(tx); err != nil {
			return err
		}

		adminRole, err := seedRole(tx, domain.RoleAdmin, "Administrator",
			"full access to every action", allActionNames())
		if err != nil {
			return err
		}
		if _, err := seedRole(tx, domain.RoleUser, "Customer",
			"place orders and manage own addresses", []string{
				authority.ActionCreateOrder, authority.ActionCancelOrder,
				authority.ActionGetOrdersUser, authority.ActionCreateAddress,
				authority.ActionEditAddress, authority.ActionGetAddress,
			}); err != nil {
			return err
		}
		if _, err := seedRole(tx, domain.RoleDelivery, "Delivery",
			"work assigned deliveries", []string{
				authority.ActionGetOrdersDelivery, authority.ActionChangeStatusOrders,
				authority.ActionCreateRoute, authority.ActionGetAddress,
			}); err != nil {
			return err
		}

		return seedAdminUser(tx, adminRole.ID)
	})
}

func seedActions(tx *gorm.DB) error {
	for _, action := range authority.ActionVocabulary {
		existed := domain.Action{}
		err := tx.Where(&domain.Action{Name: action.Name}).First(&existed).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		record := domain.Action{ID: idgen.NextID(userIdWorker), Name: action.Name,
			Description: action.Description, Type: action.Type}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
	}
	return nil
}

// seedRole grants actions only when the role is absent: grants of an
// existing role belong to the operator, not to bootstrap.
func seedRole(tx *gorm.DB, name, descriptiveName, description string, actionNames []string) (*domain.Role, error) {
	existed := domain.Role{}
	err := tx.Where(&domain.Role{Name: name}).First(&existed).Error
	if err == nil {
		return &existed, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	detail, err := authority.SeedRole(tx, domain.RoleCreation{Name: name,
		NameDescriptive: descriptiveName, Description: description, Actions: actionNames})
	if err != nil {
		return nil, err
	}
	return &detail.Role, nil
}

func seedAdminUser(tx *gorm.DB, adminRoleId types.ID) error {
	email := "admin@aquaflow.local"
	existed := domain.User{}
	err := tx.Where(&domain.User{Email: email}).First(&existed).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	password := os.Getenv("INITIAL_ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}
	secret, err := hashPassword(password)
	if err != nil {
		return err
	}
	admin := domain.User{ID: idgen.NextID(userIdWorker), Name: "Admin", Lastname: "Aquaflow",
		Email: email, Secret: secret, Confirmed: true, Active: true,
		RoleID: adminRoleId, CreateTime: types.CurrentTimestamp()}
	return tx.Create(&admin).Error
}

func allActionNames() []string {
	names := make([]string, 0, len(authority.ActionVocabulary))
	for _, action := range authority.ActionVocabulary {
		names = append(names, action.Name)
	}
	return names
}
