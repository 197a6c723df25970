package address_test

import (
	"context"
	"testing"

	"aquaflow/address"
	"aquaflow/authority"
	"aquaflow/bizerror"
	"aquaflow/client/geocode"
	"aquaflow/domain"
	"aquaflow/persistence"
	"aquaflow/testinfra"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	. "github.com/onsi/gomega"
)

func setupAddressTestDatabase(t *testing.T) *testinfra.TestDatabase {
	testDatabase := testinfra.StartMysqlTestDatabase("aquaflow")
	persistence.ActiveDataSourceManager = testDatabase.DS
	Expect(testDatabase.DS.GormDB().AutoMigrate(&domain.User{}, &domain.Role{}, &domain.Action{},
		&domain.RoleAction{}, &domain.Address{}).Error).To(BeNil())
	return testDatabase
}

func seedAddressUser(db *gorm.DB, id types.ID, actionNames ...string) {
	for i, name := range actionNames {
		Expect(db.Create(&domain.Action{ID: types.ID(int(id)*100 + i), Name: name, Type: "addresses"}).Error).To(BeNil())
	}
	detail, err := authority.SeedRole(db, domain.RoleCreation{Name: "ROLE_" + id.String(),
		NameDescriptive: id.String(), Description: "d", Actions: actionNames})
	Expect(err).To(BeNil())
	Expect(db.Create(&domain.User{ID: id, Name: "u", Email: id.String() + "@test.local", Active: true,
		RoleID: detail.Role.ID, CreateTime: types.CurrentTimestamp()}).Error).To(BeNil())
}

func stubGeocoder(coords *geocode.LonLat, err error) func() {
	original := address.GeocodeFunc
	address.GeocodeFunc = func(ctx context.Context, text string) (*geocode.LonLat, error) {
		return coords, err
	}
	return func() { address.GeocodeFunc = original }
}

func TestCreateAddress(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should geocode and persist addresses", func(t *testing.T) {
		testDatabase := setupAddressTestDatabase(t)
		defer testinfra.StopMysqlTestDatabase(testDatabase)
		db := testDatabase.DS.GormDB()
		seedAddressUser(db, 1, authority.ActionCreateAddress)
		restore := stubGeocoder(&geocode.LonLat{-3.7037902, 40.4167754}, nil)
		defer restore()

		record, err := address.CreateAddress(context.TODO(), &domain.AddressCreation{
			Address: "Gran Via 1", City: "Madrid", Country: "Spain", UserID: 1, Delivery: true},
			testinfra.BuildSecCtx(1))
		Expect(err).To(BeNil())
		Expect(record.ID).ToNot(BeZero())
		Expect(record.Longitude).To(Equal(-3.7037902))
		Expect(record.Latitude).To(Equal(40.4167754))
		Expect(record.Delivery).To(BeTrue())
		Expect(record.Coordinates()).To(Equal([2]float64{-3.7037902, 40.4167754}))
	})

	t.Run("should refuse a fourth address for the same user", func(t *testing.T) {
		testDatabase := setupAddressTestDatabase(t)
		defer testinfra.StopMysqlTestDatabase(testDatabase)
		db := testDatabase.DS.GormDB()
		seedAddressUser(db, 1, authority.ActionCreateAddress)
		restore := stubGeocoder(&geocode.LonLat{1, 2}, nil)
		defer restore()

		for i := 0; i < domain.UserAddressLimit; i++ {
			_, err := address.CreateAddress(context.TODO(), &domain.AddressCreation{
				Address: "Street", City: "City", Country: "Country", UserID: 1}, testinfra.BuildSecCtx(1))
			Expect(err).To(BeNil())
		}
		_, err := address.CreateAddress(context.TODO(), &domain.AddressCreation{
			Address: "Street", City: "City", Country: "Country", UserID: 1}, testinfra.BuildSecCtx(1))
		Expect(err).To(Equal(bizerror.ErrAddressLimitExceeded))

		var count int
		Expect(db.Model(&domain.Address{}).Where("user_id = ?", 1).Count(&count).Error).To(BeNil())
		Expect(count).To(Equal(domain.UserAddressLimit))
	})

	t.Run("should refuse addresses the geocoder can not locate", func(t *testing.T) {
		testDatabase := setupAddressTestDatabase(t)
		defer testinfra.StopMysqlTestDatabase(testDatabase)
		db := testDatabase.DS.GormDB()
		seedAddressUser(db, 1, authority.ActionCreateAddress)
		restore := stubGeocoder(nil, nil)
		defer restore()

		_, err := address.CreateAddress(context.TODO(), &domain.AddressCreation{
			Address: "Nowhere", City: "Nocity", Country: "Nocountry", UserID: 1}, testinfra.BuildSecCtx(1))
		Expect(err).To(Equal(bizerror.ErrGeocodeNoResult))
	})

	t.Run("should fail on unknown owner", func(t *testing.T) {
		testDatabase := setupAddressTestDatabase(t)
		defer testinfra.StopMysqlTestDatabase(testDatabase)
		db := testDatabase.DS.GormDB()
		seedAddressUser(db, 1, authority.ActionCreateAddress)
		restore := stubGeocoder(&geocode.LonLat{1, 2}, nil)
		defer restore()

		_, err := address.CreateAddress(context.TODO(), &domain.AddressCreation{
			Address: "Street", City: "City", Country: "Country", UserID: 404404}, testinfra.BuildSecCtx(1))
		Expect(err).To(Equal(bizerror.ErrNotFound))
	})
}

func TestEditAndDeleteAddress(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should re-geocode on edit", func(t *testing.T) {
		testDatabase := setupAddressTestDatabase(t)
		defer testinfra.StopMysqlTestDatabase(testDatabase)
		db := testDatabase.DS.GormDB()
		seedAddressUser(db, 1, authority.ActionCreateAddress, authority.ActionEditAddress)
		restore := stubGeocoder(&geocode.LonLat{1, 2}, nil)
		defer restore()

		record, err := address.CreateAddress(context.TODO(), &domain.AddressCreation{
			Address: "Street", City: "City", Country: "Country", UserID: 1}, testinfra.BuildSecCtx(1))
		Expect(err).To(BeNil())

		restore2 := stubGeocoder(&geocode.LonLat{3, 4}, nil)
		defer restore2()
		Expect(address.EditAddress(context.TODO(), record.ID, &domain.AddressUpdating{
			Address: "Other street", City: "City", Country: "Country"}, testinfra.BuildSecCtx(1))).To(BeNil())

		updated := domain.Address{}
		Expect(db.Where(&domain.Address{ID: record.ID}).First(&updated).Error).To(BeNil())
		Expect(updated.Address).To(Equal("Other street"))
		Expect(updated.Longitude).To(Equal(3.0))
		Expect(updated.Latitude).To(Equal(4.0))
	})

	t.Run("should hard delete addresses", func(t *testing.T) {
		testDatabase := setupAddressTestDatabase(t)
		defer testinfra.StopMysqlTestDatabase(testDatabase)
		db := testDatabase.DS.GormDB()
		seedAddressUser(db, 1, authority.ActionCreateAddress, authority.ActionEditAddress)
		restore := stubGeocoder(&geocode.LonLat{1, 2}, nil)
		defer restore()

		record, err := address.CreateAddress(context.TODO(), &domain.AddressCreation{
			Address: "Street", City: "City", Country: "Country", UserID: 1}, testinfra.BuildSecCtx(1))
		Expect(err).To(BeNil())

		Expect(address.DeleteAddress(record.ID, testinfra.BuildSecCtx(1))).To(BeNil())
		var count int
		Expect(db.Model(&domain.Address{}).Count(&count).Error).To(BeNil())
		Expect(count).To(Equal(0))

		Expect(address.DeleteAddress(record.ID, testinfra.BuildSecCtx(1))).To(Equal(bizerror.ErrNotFound))
	})
}

func TestQueryAddresses(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should project user addresses without coordinates and depots with them", func(t *testing.T) {
		testDatabase := setupAddressTestDatabase(t)
		defer testinfra.StopMysqlTestDatabase(testDatabase)
		db := testDatabase.DS.GormDB()
		seedAddressUser(db, 1, authority.ActionGetAddress)
		Expect(db.Create(&domain.Address{ID: 10, Address: "Home", City: "C", Country: "X",
			Longitude: 1, Latitude: 2, UserID: 1, CreateTime: types.CurrentTimestamp()}).Error).To(BeNil())
		Expect(db.Create(&domain.Address{ID: 11, Address: "Depot", City: "C", Country: "X",
			Longitude: 3, Latitude: 4, Delivery: true, UserID: 1, CreateTime: types.CurrentTimestamp()}).Error).To(BeNil())

		infos, err := address.QueryUserAddresses(1, testinfra.BuildSecCtx(1))
		Expect(err).To(BeNil())
		Expect(infos).To(Equal([]domain.AddressInfo{
			{ID: 10, Address: "Home", City: "C", Country: "X"},
			{ID: 11, Address: "Depot", City: "C", Country: "X"}}))

		depots, err := address.QueryDeliveryOriginAddresses(testinfra.BuildSecCtx(1))
		Expect(err).To(BeNil())
		Expect(depots).To(Equal([]domain.DeliveryAddressInfo{
			{ID: 11, Address: "Depot", City: "C", Country: "X", Longitude: 3, Latitude: 4}}))
	})
}
