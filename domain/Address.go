package domain

import "github.com/fundwit/go-commons/types"

// UserAddressLimit a user holds at most this many addresses at once
const UserAddressLimit = 3

type Address struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	Address string `json:"address"`
	City    string `json:"city"`
	Country string `json:"country"`

	// geocoded coordinate pair, ordered [longitude, latitude]
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`

	// Delivery marks a depot address usable as a route origin
	Delivery bool     `json:"delivery"`
	UserID   types.ID `json:"userId"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

func (a Address) Coordinates() [2]float64 {
	return [2]float64{a.Longitude, a.Latitude}
}

type AddressCreation struct {
	Address  string   `json:"address" binding:"required"`
	City     string   `json:"city" binding:"required"`
	Country  string   `json:"country" binding:"required"`
	UserID   types.ID `json:"userId" binding:"required"`
	Delivery bool     `json:"delivery"`
}

type AddressUpdating struct {
	Address string `json:"address" binding:"required"`
	City    string `json:"city" binding:"required"`
	Country string `json:"country" binding:"required"`
}

// AddressInfo is the read projection exposed by listing operations
type AddressInfo struct {
	ID      types.ID `json:"id"`
	Address string   `json:"address"`
	City    string   `json:"city"`
	Country string   `json:"country"`
}

// DeliveryAddressInfo additionally carries coordinates for route views
type DeliveryAddressInfo struct {
	ID        types.ID `json:"id"`
	Address   string   `json:"address"`
	City      string   `json:"city"`
	Country   string   `json:"country"`
	Longitude float64  `json:"longitude"`
	Latitude  float64  `json:"latitude"`
}
