package route

import (
	"aquaflow/authority"
	"aquaflow/bizerror"
	"aquaflow/client/routing"
	"aquaflow/domain"
	"aquaflow/persistence"
	"aquaflow/session"
	"context"
	"errors"
	"math"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
)

var (
	// DriveRouteFunc is bound to a routing.Router at startup
	DriveRouteFunc func(ctx context.Context, coords [][2]float64) (*routing.RouteDescription, error)

	GenerateRouteFunc = GenerateRoute
)

type RouteGeneration struct {
	// Stops are coordinate pairs ordered [longitude, latitude]
	Stops [][2]float64 `json:"stops" binding:"required,min=2"`

	// StartAddressID optionally prepends a depot address as the origin
	StartAddressID types.ID `json:"startAddressId"`
}

type RouteDetail struct {
	Route *routing.RouteDescription `json:"route"`

	// Start echoes the resolved origin coordinates when a depot was requested
	Start *[2]float64 `json:"start,omitempty"`
}

func GenerateRoute(ctx context.Context, c *RouteGeneration, sec *session.Context) (*RouteDetail, error) {
	if err := authority.CheckPermission(sec, authority.ActionCreateRoute); err != nil {
		return nil, err
	}

	stops := make([][2]float64, 0, len(c.Stops)+1)
	var start *[2]float64

	if c.StartAddressID != 0 {
		record := domain.Address{}
		err := persistence.ActiveDataSourceManager.GormDB().
			Where(&domain.Address{ID: c.StartAddressID}).First(&record).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, bizerror.ErrNotFound
			}
			return nil, err
		}
		origin := record.Coordinates()
		start = &origin
		stops = append(stops, origin)
	}

	for _, s := range c.Stops {
		stops = append(stops, normalize(s))
	}

	description, err := DriveRouteFunc(ctx, stops)
	if err != nil {
		return nil, err
	}
	return &RouteDetail{Route: description, Start: start}, nil
}

// normalize trims coordinates to 7 decimal places, about 1 cm of precision,
// to keep provider request URLs stable.
func normalize(c [2]float64) [2]float64 {
	return [2]float64{math.Round(c[0]*1e7) / 1e7, math.Round(c[1]*1e7) / 1e7}
}
