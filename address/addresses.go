package address

import (
	"aquaflow/authority"
	"aquaflow/bizerror"
	"aquaflow/client/geocode"
	"aquaflow/domain"
	"aquaflow/idgen"
	"aquaflow/persistence"
	"aquaflow/session"
	"context"
	"errors"
	"fmt"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	addressIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	// GeocodeFunc is bound to a geocode.Geocoder at startup
	GeocodeFunc func(ctx context.Context, text string) (*geocode.LonLat, error)

	CreateAddressFunc               = CreateAddress
	EditAddressFunc                 = EditAddress
	DeleteAddressFunc               = DeleteAddress
	DetailAddressFunc               = DetailAddress
	QueryUserAddressesFunc          = QueryUserAddresses
	QueryDeliveryOriginAddressesFunc = QueryDeliveryOriginAddresses
)

func CreateAddress(ctx context.Context, c *domain.AddressCreation, sec *session.Context) (*domain.Address, error) {
	if err := authority.CheckPermission(sec, authority.ActionCreateAddress); err != nil {
		return nil, err
	}

	coords, err := locate(ctx, c.Address, c.City, c.Country)
	if err != nil {
		return nil, err
	}

	var record domain.Address
	err1 := persistence.ActiveDataSourceManager.GormDB().Transaction(func(tx *gorm.DB) error {
		user := domain.User{}
		if err := tx.Where(&domain.User{ID: c.UserID}).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return bizerror.ErrNotFound
			}
			return err
		}

		var count int
		if err := tx.Model(&domain.Address{}).Where("user_id = ?", c.UserID).Count(&count).Error; err != nil {
			return err
		}
		if count >= domain.UserAddressLimit {
			return bizerror.ErrAddressLimitExceeded
		}

		record = domain.Address{ID: idgen.NextID(addressIdWorker), Address: c.Address, City: c.City,
			Country: c.Country, Longitude: coords[0], Latitude: coords[1],
			Delivery: c.Delivery, UserID: c.UserID, CreateTime: types.CurrentTimestamp()}
		return tx.Create(&record).Error
	})
	if err1 != nil {
		return nil, err1
	}
	return &record, nil
}

func EditAddress(ctx context.Context, id types.ID, u *domain.AddressUpdating, sec *session.Context) error {
	if err := authority.CheckPermission(sec, authority.ActionEditAddress); err != nil {
		return err
	}

	db := persistence.ActiveDataSourceManager.GormDB()
	record := domain.Address{}
	if err := db.Where(&domain.Address{ID: id}).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return bizerror.ErrNotFound
		}
		return err
	}

	coords, err := locate(ctx, u.Address, u.City, u.Country)
	if err != nil {
		return err
	}

	record.Address = u.Address
	record.City = u.City
	record.Country = u.Country
	record.Longitude = coords[0]
	record.Latitude = coords[1]
	return db.Save(&record).Error
}

func DeleteAddress(id types.ID, sec *session.Context) error {
	if err := authority.CheckPermission(sec, authority.ActionEditAddress); err != nil {
		return err
	}

	db := persistence.ActiveDataSourceManager.GormDB()
	record := domain.Address{}
	if err := db.Where(&domain.Address{ID: id}).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return bizerror.ErrNotFound
		}
		return err
	}
	return db.Delete(&domain.Address{}, "id = ?", id).Error
}

func DetailAddress(id types.ID, sec *session.Context) (*domain.Address, error) {
	if err := authority.CheckPermission(sec, authority.ActionGetAddress); err != nil {
		return nil, err
	}

	record := domain.Address{}
	if err := persistence.ActiveDataSourceManager.GormDB().
		Where(&domain.Address{ID: id}).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

func QueryUserAddresses(userId types.ID, sec *session.Context) ([]domain.AddressInfo, error) {
	if err := authority.CheckPermission(sec, authority.ActionGetAddress); err != nil {
		return nil, err
	}

	records := []domain.Address{}
	if err := persistence.ActiveDataSourceManager.GormDB().
		Where("user_id = ?", userId).Order("ID ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	infos := make([]domain.AddressInfo, 0, len(records))
	for _, r := range records {
		infos = append(infos, domain.AddressInfo{ID: r.ID, Address: r.Address, City: r.City, Country: r.Country})
	}
	return infos, nil
}

// QueryDeliveryOriginAddresses lists depot addresses usable as route origins.
func QueryDeliveryOriginAddresses(sec *session.Context) ([]domain.DeliveryAddressInfo, error) {
	if err := authority.CheckPermission(sec, authority.ActionGetAddress); err != nil {
		return nil, err
	}

	records := []domain.Address{}
	if err := persistence.ActiveDataSourceManager.GormDB().
		Where("delivery = ?", true).Order("ID ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	infos := make([]domain.DeliveryAddressInfo, 0, len(records))
	for _, r := range records {
		infos = append(infos, domain.DeliveryAddressInfo{ID: r.ID, Address: r.Address, City: r.City,
			Country: r.Country, Longitude: r.Longitude, Latitude: r.Latitude})
	}
	return infos, nil
}

func locate(ctx context.Context, addr, city, country string) (*geocode.LonLat, error) {
	coords, err := GeocodeFunc(ctx, fmt.Sprintf("%s, %s, %s", addr, city, country))
	if err != nil {
		return nil, err
	}
	if coords == nil {
		return nil, bizerror.ErrGeocodeNoResult
	}
	return coords, nil
}
