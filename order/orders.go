package order

import (
	"aquaflow/authority"
	"aquaflow/bizerror"
	"aquaflow/domain"
	"aquaflow/event"
	"aquaflow/idgen"
	"aquaflow/notification"
	"aquaflow/persistence"
	"aquaflow/session"
	"aquaflow/state"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

var (
	StatePending   = state.State{Name: domain.OrderStatusPending, Category: state.Open}
	StateConfirmed = state.State{Name: domain.OrderStatusConfirmed, Category: state.Open}
	StateCancelled = state.State{Name: domain.OrderStatusCancelled, Category: state.Terminal}
	StateWaiting   = state.State{Name: domain.OrderStatusWaiting, Category: state.InDelivery}
	StateDelivered = state.State{Name: domain.OrderStatusDelivered, Category: state.Terminal}

	// OrderStates drives the single-order lifecycle operations. The bulk
	// status override does not consult it.
	OrderStates = state.NewStateMachine(
		[]state.State{StatePending, StateConfirmed, StateCancelled, StateWaiting, StateDelivered},
		[]state.Transition{
			{Name: "confirm", From: StatePending, To: StateConfirmed},
			{Name: "cancel", From: StatePending, To: StateCancelled},
			{Name: "assign", From: StateConfirmed, To: StateWaiting},
			{Name: "deliver", From: StateWaiting, To: StateDelivered},
		})
)

var (
	orderIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	CreateOrderFunc           = CreateOrder
	CancelOrderFunc           = CancelOrder
	ConfirmOrderFunc          = ConfirmOrder
	AssignDeliveryFunc        = AssignDelivery
	ChangeStatesFunc          = ChangeStates
	QueryOrdersFunc           = QueryOrders
	QueryOrdersByUserFunc     = QueryOrdersByUser
	QueryOrdersByDeliveryFunc = QueryOrdersByDelivery
	DetailOrderFunc           = DetailOrder
	LoadOrdersFunc            = LoadOrders
)

func CreateOrder(c *domain.OrderCreation, sec *session.Context) (*domain.Order, error) {
	if err := authority.CheckPermission(sec, authority.ActionCreateOrder); err != nil {
		return nil, err
	}

	var record domain.Order
	var ev *event.EventRecord
	err1 := persistence.ActiveDataSourceManager.GormDB().Transaction(func(tx *gorm.DB) error {
		user := domain.User{}
		if err := tx.Where(&domain.User{ID: c.UserID}).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return bizerror.ErrNotFound
			}
			return err
		}
		addr := domain.Address{}
		if err := tx.Where(&domain.Address{ID: c.AddressID}).First(&addr).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return bizerror.ErrNotFound
			}
			return err
		}

		record = domain.Order{ID: idgen.NextID(orderIdWorker), Amount: c.Amount, TotalPrice: c.TotalPrice,
			Status: domain.OrderStatusPending, AddressID: c.AddressID, UserID: c.UserID,
			CreateTime: types.CurrentTimestamp()}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		var err error
		ev, err = event.CreateEventFunc(event.NewOrderEvent(record.ID, event.EventCategoryCreated,
			domain.OrderStatusPending, sec), tx)
		return err
	})
	if err1 != nil {
		return nil, err1
	}

	event.InvokeHandlersFunc(ev)
	return &record, nil
}

func CancelOrder(id types.ID, sec *session.Context) error {
	return transitOrder(id, domain.OrderStatusCancelled, authority.ActionCancelOrder, sec)
}

func ConfirmOrder(id types.ID, sec *session.Context) error {
	return transitOrder(id, domain.OrderStatusConfirmed, authority.ActionConfirmOrder, sec)
}

func transitOrder(id types.ID, target string, actionName string, sec *session.Context) error {
	if err := authority.CheckPermission(sec, actionName); err != nil {
		return err
	}

	var ev *event.EventRecord
	err1 := persistence.ActiveDataSourceManager.GormDB().Transaction(func(tx *gorm.DB) error {
		record := domain.Order{}
		if err := tx.Where(&domain.Order{ID: id}).First(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return bizerror.ErrNotFound
			}
			return err
		}
		if len(OrderStates.AvailableTransitions(record.Status, target)) == 0 {
			return bizerror.ErrOrderStateInvalid
		}
		if err := tx.Model(&domain.Order{ID: id}).Update("status", target).Error; err != nil {
			return err
		}

		var err error
		ev, err = event.CreateEventFunc(event.NewOrderEvent(id, event.EventCategoryStatusChanged,
			fmt.Sprintf("%s => %s", record.Status, target), sec), tx)
		return err
	})
	if err1 != nil {
		return err1
	}

	event.InvokeHandlersFunc(ev)
	return nil
}

// AssignDelivery hands a confirmed order to a delivery user and moves it
// to WAITING.
func AssignDelivery(id types.ID, a *domain.DeliveryAssignment, sec *session.Context) error {
	if err := authority.CheckPermission(sec, authority.ActionAssignOrder); err != nil {
		return err
	}

	var ev *event.EventRecord
	err1 := persistence.ActiveDataSourceManager.GormDB().Transaction(func(tx *gorm.DB) error {
		record := domain.Order{}
		if err := tx.Where(&domain.Order{ID: id}).First(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return bizerror.ErrNotFound
			}
			return err
		}
		if len(OrderStates.AvailableTransitions(record.Status, domain.OrderStatusWaiting)) == 0 {
			return bizerror.ErrOrderStateInvalid
		}

		deliveryUser := domain.User{}
		if err := tx.Where(&domain.User{ID: a.DeliveryID}).First(&deliveryUser).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return bizerror.ErrNotFound
			}
			return err
		}
		role := domain.Role{}
		if err := tx.Where(&domain.Role{ID: deliveryUser.RoleID}).First(&role).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return bizerror.ErrNotDeliveryUser
			}
			return err
		}
		if role.Name != domain.RoleDelivery {
			return bizerror.ErrNotDeliveryUser
		}

		if err := tx.Model(&domain.Order{ID: id}).
			Updates(map[string]interface{}{"status": domain.OrderStatusWaiting, "delivery_id": a.DeliveryID}).
			Error; err != nil {
			return err
		}

		var err error
		ev, err = event.CreateEventFunc(event.NewOrderEvent(id, event.EventCategoryAssigned,
			fmt.Sprintf("delivery %d", a.DeliveryID), sec), tx)
		return err
	})
	if err1 != nil {
		return err1
	}

	event.InvokeHandlersFunc(ev)
	return nil
}

type BatchActionError struct {
	Errors map[types.ID]error
}

func (e *BatchActionError) Error() string {
	return fmt.Sprintf("failed to change state of %d orders", len(e.Errors))
}

func (e *BatchActionError) Respond() *bizerror.BizErrorDetail {
	detail := map[string]string{}
	for id, err := range e.Errors {
		detail[id.String()] = err.Error()
	}
	return &bizerror.BizErrorDetail{Status: http.StatusInternalServerError,
		Code: "order.batch_state_change_failed", Message: e.Error(), Data: detail}
}

// ChangeStates applies a bulk status override. Each entry is handled
// concurrently and independently: the target status is written without
// consulting the transition table, entries that fail do not undo entries
// that succeeded, and an order moved to DELIVERED triggers a notification
// every time it appears, even when it is already delivered.
func ChangeStates(changes []domain.StateChange, sec *session.Context) error {
	if err := authority.CheckPermission(sec, authority.ActionChangeStatusOrders); err != nil {
		return err
	}

	var wg sync.WaitGroup
	var mutex sync.Mutex
	failures := map[types.ID]error{}

	for _, change := range changes {
		wg.Add(1)
		go func(change domain.StateChange) {
			defer wg.Done()
			if err := changeState(change, sec); err != nil {
				mutex.Lock()
				failures[change.ID] = err
				mutex.Unlock()
			}
		}(change)
	}
	wg.Wait()

	if len(failures) > 0 {
		return &BatchActionError{Errors: failures}
	}
	return nil
}

func changeState(change domain.StateChange, sec *session.Context) error {
	var ev *event.EventRecord
	var record domain.Order
	var user domain.User
	var addr domain.Address

	err1 := persistence.ActiveDataSourceManager.GormDB().Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&domain.Order{ID: change.ID}).First(&record).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return bizerror.ErrNotFound
			}
			return err
		}
		if err := tx.Where(&domain.User{ID: record.UserID}).First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return bizerror.ErrNotFound
			}
			return err
		}
		if err := tx.Where(&domain.Address{ID: record.AddressID}).First(&addr).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return bizerror.ErrNotFound
			}
			return err
		}

		if err := tx.Model(&domain.Order{ID: change.ID}).Update("status", change.Status).Error; err != nil {
			return err
		}

		var err error
		ev, err = event.CreateEventFunc(event.NewOrderEvent(change.ID, event.EventCategoryStatusChanged,
			fmt.Sprintf("%s => %s", record.Status, change.Status), sec), tx)
		return err
	})
	if err1 != nil {
		return err1
	}

	if change.Status == domain.OrderStatusDelivered {
		notification.EnqueueFunc(notification.Notification{Kind: notification.KindOrderDelivered,
			To: user.Email, Name: user.Name, Amount: record.Amount,
			Address: fmt.Sprintf("%s, %s, %s", addr.Address, addr.City, addr.Country)})
	}

	event.InvokeHandlersFunc(ev)
	return nil
}

func QueryOrders(q *domain.OrderQuery, sec *session.Context) (*domain.OrderPage, error) {
	if err := authority.CheckPermission(sec, authority.ActionGetOrders); err != nil {
		return nil, err
	}
	db := persistence.ActiveDataSourceManager.GormDB().Model(&domain.Order{})
	return queryOrderPage(db, q)
}

func QueryOrdersByUser(userId types.ID, q *domain.OrderQuery, sec *session.Context) (*domain.OrderPage, error) {
	if err := authority.CheckPermission(sec, authority.ActionGetOrdersUser); err != nil {
		return nil, err
	}
	db := persistence.ActiveDataSourceManager.GormDB().Model(&domain.Order{}).
		Where("user_id = ?", userId)
	return queryOrderPage(db, q)
}

func QueryOrdersByDelivery(deliveryId types.ID, q *domain.DeliveryOrderQuery, sec *session.Context) (*domain.OrderPage, error) {
	if err := authority.CheckPermission(sec, authority.ActionGetOrdersDelivery); err != nil {
		return nil, err
	}

	db := persistence.ActiveDataSourceManager.GormDB().Model(&domain.Order{}).
		Where("delivery_id = ?", deliveryId)

	if q.Date != "" {
		day, err := time.Parse("2006-01-02", q.Date)
		if err != nil {
			return nil, &bizerror.ErrBadParam{Cause: err}
		}
		db = db.Where("create_time >= ? AND create_time < ?", day, day.AddDate(0, 0, 1))
	} else if q.StartDate != "" && q.EndDate != "" {
		start, err := time.Parse("2006-01-02", q.StartDate)
		if err != nil {
			return nil, &bizerror.ErrBadParam{Cause: err}
		}
		end, err := time.Parse("2006-01-02", q.EndDate)
		if err != nil {
			return nil, &bizerror.ErrBadParam{Cause: err}
		}
		db = db.Where("create_time >= ? AND create_time < ?", start, end.AddDate(0, 0, 1))
	}

	return queryOrderPage(db, &q.OrderQuery)
}

func queryOrderPage(db *gorm.DB, q *domain.OrderQuery) (*domain.OrderPage, error) {
	page, limit := q.Page, q.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if q.Status != "" {
		db = db.Where("status = ?", q.Status)
	}

	var total int
	if err := db.Count(&total).Error; err != nil {
		return nil, err
	}
	records := []domain.Order{}
	if err := db.Order("create_time DESC").Offset((page - 1) * limit).Limit(limit).
		Find(&records).Error; err != nil {
		return nil, err
	}

	details, err := ExtendOrders(records)
	if err != nil {
		return nil, err
	}
	return &domain.OrderPage{Orders: details, TotalPages: (total + limit - 1) / limit}, nil
}

func DetailOrder(id types.ID) (*domain.OrderDetail, error) {
	record := domain.Order{}
	if err := persistence.ActiveDataSourceManager.GormDB().
		Where(&domain.Order{ID: id}).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, bizerror.ErrNotFound
		}
		return nil, err
	}
	details, err := ExtendOrders([]domain.Order{record})
	if err != nil {
		return nil, err
	}
	return &details[0], nil
}

// LoadOrders pages through all orders in id order. Used by index rebuilds.
func LoadOrders(page, size int) ([]domain.OrderDetail, error) {
	records := []domain.Order{}
	if err := persistence.ActiveDataSourceManager.GormDB().
		Order("ID ASC").Offset((page - 1) * size).Limit(size).Find(&records).Error; err != nil {
		return nil, err
	}
	return ExtendOrders(records)
}

// ExtendOrders batch loads the address and user projections of each order.
func ExtendOrders(records []domain.Order) ([]domain.OrderDetail, error) {
	details := make([]domain.OrderDetail, 0, len(records))
	if len(records) == 0 {
		return details, nil
	}

	addressIds := make([]types.ID, 0, len(records))
	userIds := make([]types.ID, 0, len(records))
	for _, r := range records {
		addressIds = append(addressIds, r.AddressID)
		userIds = append(userIds, r.UserID)
	}

	db := persistence.ActiveDataSourceManager.GormDB()
	addresses := []domain.Address{}
	if err := db.Where("id in (?)", addressIds).Find(&addresses).Error; err != nil {
		return nil, err
	}
	users := []domain.User{}
	if err := db.Where("id in (?)", userIds).Find(&users).Error; err != nil {
		return nil, err
	}

	addressById := map[types.ID]domain.Address{}
	for _, a := range addresses {
		addressById[a.ID] = a
	}
	userById := map[types.ID]domain.User{}
	for _, u := range users {
		userById[u.ID] = u
	}

	for _, r := range records {
		a := addressById[r.AddressID]
		u := userById[r.UserID]
		details = append(details, domain.OrderDetail{Order: r,
			Address: domain.AddressInfo{ID: a.ID, Address: a.Address, City: a.City, Country: a.Country},
			User:    domain.UserBrief{ID: u.ID, Name: u.Name, Lastname: u.Lastname}})
	}
	return details, nil
}
