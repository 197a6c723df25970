package domain

import "github.com/fundwit/go-commons/types"

const (
	OrderStatusPending   = "PENDING"
	OrderStatusConfirmed = "CONFIRMED"
	OrderStatusCancelled = "CANCELLED"
	OrderStatusWaiting   = "WAITING"
	OrderStatusDelivered = "DELIVERED"
)

type Order struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	Amount     int    `json:"amount"`
	TotalPrice int    `json:"totalPrice"`
	Status     string `json:"status"`

	AddressID types.ID `json:"addressId"`
	UserID    types.ID `json:"userId"`
	// DeliveryID stays zero until a delivery user is assigned
	DeliveryID types.ID `json:"deliveryId"`

	CreateTime types.Timestamp `json:"createTime" sql:"type:DATETIME(6) NOT NULL"`
}

type OrderCreation struct {
	Amount     int      `json:"amount" binding:"required,gt=0"`
	TotalPrice int      `json:"totalPrice" binding:"required,gt=0"`
	AddressID  types.ID `json:"addressId" binding:"required"`
	UserID     types.ID `json:"userId" binding:"required"`
}

type DeliveryAssignment struct {
	DeliveryID types.ID `json:"deliveryId" binding:"required"`
}

type StateChange struct {
	ID     types.ID `json:"id" binding:"required"`
	Status string   `json:"status" binding:"required"`
}

type OrderDetail struct {
	Order

	Address AddressInfo `json:"address"`
	User    UserBrief   `json:"user"`
}

type OrderQuery struct {
	Page   int    `json:"page" form:"page"`
	Limit  int    `json:"limit" form:"limit"`
	Status string `json:"status" form:"status"`
}

// DeliveryOrderQuery filters by creation day: either a single date or a
// [startDate, endDate] range, both as "2006-01-02".
type DeliveryOrderQuery struct {
	OrderQuery

	Date      string `json:"date" form:"date"`
	StartDate string `json:"startDate" form:"startDate"`
	EndDate   string `json:"endDate" form:"endDate"`
}

type OrderPage struct {
	Orders     []OrderDetail `json:"orders"`
	TotalPages int           `json:"totalPages"`
}
