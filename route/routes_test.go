package route_test

import (
	"context"
	"encoding/json"
	"testing"

	"aquaflow/authority"
	"aquaflow/bizerror"
	"aquaflow/client/routing"
	"aquaflow/domain"
	"aquaflow/persistence"
	"aquaflow/route"
	"aquaflow/testinfra"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	. "github.com/onsi/gomega"
)

func setupRouteTestDatabase(t *testing.T) *testinfra.TestDatabase {
	testDatabase := testinfra.StartMysqlTestDatabase("aquaflow")
	persistence.ActiveDataSourceManager = testDatabase.DS
	Expect(testDatabase.DS.GormDB().AutoMigrate(&domain.User{}, &domain.Role{}, &domain.Action{},
		&domain.RoleAction{}, &domain.Address{}).Error).To(BeNil())
	return testDatabase
}

func seedRouteUser(db *gorm.DB, id types.ID, actionNames ...string) {
	for i, name := range actionNames {
		Expect(db.Create(&domain.Action{ID: types.ID(int(id)*100 + i), Name: name, Type: "routes"}).Error).To(BeNil())
	}
	detail, err := authority.SeedRole(db, domain.RoleCreation{Name: "ROLE_" + id.String(),
		NameDescriptive: id.String(), Description: "d", Actions: actionNames})
	Expect(err).To(BeNil())
	Expect(db.Create(&domain.User{ID: id, Name: "u", Email: id.String() + "@test.local", Active: true,
		RoleID: detail.Role.ID, CreateTime: types.CurrentTimestamp()}).Error).To(BeNil())
}

func TestGenerateRoute(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should normalize stops and return the provider route", func(t *testing.T) {
		testDatabase := setupRouteTestDatabase(t)
		defer testinfra.StopMysqlTestDatabase(testDatabase)
		db := testDatabase.DS.GormDB()
		seedRouteUser(db, 1, authority.ActionCreateRoute)

		var receivedCoords [][2]float64
		route.DriveRouteFunc = func(ctx context.Context, coords [][2]float64) (*routing.RouteDescription, error) {
			receivedCoords = coords
			return &routing.RouteDescription{Geometry: json.RawMessage(`{"type":"LineString"}`),
				Duration: 60, Distance: 1200}, nil
		}

		detail, err := route.GenerateRoute(context.TODO(), &route.RouteGeneration{
			Stops: [][2]float64{{-3.70379019999, 40.41677544321}, {-3.7, 40.42}}}, testinfra.BuildSecCtx(1))
		Expect(err).To(BeNil())
		Expect(detail.Start).To(BeNil())
		Expect(detail.Route.Duration).To(Equal(60.0))
		Expect(receivedCoords).To(Equal([][2]float64{{-3.7037902, 40.4167754}, {-3.7, 40.42}}))
	})

	t.Run("should prepend the depot address as origin", func(t *testing.T) {
		testDatabase := setupRouteTestDatabase(t)
		defer testinfra.StopMysqlTestDatabase(testDatabase)
		db := testDatabase.DS.GormDB()
		seedRouteUser(db, 1, authority.ActionCreateRoute)
		Expect(db.Create(&domain.Address{ID: 10, Address: "Depot", City: "C", Country: "X",
			Longitude: 5, Latitude: 6, Delivery: true, UserID: 1,
			CreateTime: types.CurrentTimestamp()}).Error).To(BeNil())

		var receivedCoords [][2]float64
		route.DriveRouteFunc = func(ctx context.Context, coords [][2]float64) (*routing.RouteDescription, error) {
			receivedCoords = coords
			return &routing.RouteDescription{Duration: 60, Distance: 1200}, nil
		}

		detail, err := route.GenerateRoute(context.TODO(), &route.RouteGeneration{
			Stops: [][2]float64{{1, 2}, {3, 4}}, StartAddressID: 10}, testinfra.BuildSecCtx(1))
		Expect(err).To(BeNil())
		Expect(*detail.Start).To(Equal([2]float64{5, 6}))
		Expect(receivedCoords).To(Equal([][2]float64{{5, 6}, {1, 2}, {3, 4}}))
	})

	t.Run("should fail on unknown depot before calling the provider", func(t *testing.T) {
		testDatabase := setupRouteTestDatabase(t)
		defer testinfra.StopMysqlTestDatabase(testDatabase)
		db := testDatabase.DS.GormDB()
		seedRouteUser(db, 1, authority.ActionCreateRoute)

		called := false
		route.DriveRouteFunc = func(ctx context.Context, coords [][2]float64) (*routing.RouteDescription, error) {
			called = true
			return nil, nil
		}

		_, err := route.GenerateRoute(context.TODO(), &route.RouteGeneration{
			Stops: [][2]float64{{1, 2}, {3, 4}}, StartAddressID: 404404}, testinfra.BuildSecCtx(1))
		Expect(err).To(Equal(bizerror.ErrNotFound))
		Expect(called).To(BeFalse())
	})

	t.Run("should deny callers without the grant", func(t *testing.T) {
		testDatabase := setupRouteTestDatabase(t)
		defer testinfra.StopMysqlTestDatabase(testDatabase)
		db := testDatabase.DS.GormDB()
		seedRouteUser(db, 1)

		_, err := route.GenerateRoute(context.TODO(), &route.RouteGeneration{
			Stops: [][2]float64{{1, 2}, {3, 4}}}, testinfra.BuildSecCtx(1))
		Expect(err).To(Equal(bizerror.ErrNoPermission))
	})
}
