package event

import (
	"fmt"

	"aquaflow/common"
	"aquaflow/idgen"
	"aquaflow/session"

	"github.com/fundwit/go-commons/types"
	"github.com/jinzhu/gorm"
	"github.com/sony/sonyflake"
)

type EventCategory string

const (
	EventCategoryCreated       EventCategory = "CREATED"
	EventCategoryStatusChanged EventCategory = "STATUS_CHANGED"
	EventCategoryAssigned      EventCategory = "ASSIGNED"
)

const SourceTypeOrder = "ORDER"

// EventRecord is an append-only audit trail of state affecting operations.
type EventRecord struct {
	ID types.ID `json:"id" gorm:"primary_key"`

	SourceType string   `json:"sourceType"`
	SourceID   types.ID `json:"sourceId"`

	EventCategory EventCategory `json:"eventCategory"`
	Detail        string        `json:"detail"`

	CreatorID   types.ID `json:"creatorId"`
	CreatorName string   `json:"creatorName"`

	Timestamp types.Timestamp `json:"timestamp" sql:"type:DATETIME(6) NOT NULL"`
}

type EventHandler func(record *EventRecord)

var (
	eventIdWorker = sonyflake.NewSonyflake(sonyflake.Settings{})

	EventHandlers []EventHandler

	CreateEventFunc    = CreateEvent
	InvokeHandlersFunc = InvokeHandlers
)

// CreateEvent persists the record within the caller's transaction. Handlers
// are not invoked here: the caller fires them after the transaction commits.
func CreateEvent(record *EventRecord, db *gorm.DB) (*EventRecord, error) {
	record.ID = idgen.NextID(eventIdWorker)
	record.Timestamp = types.CurrentTimestamp()
	if err := db.Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// InvokeHandlers runs every registered handler. Handler failures are
// swallowed with a log entry: the triggering operation already succeeded.
func InvokeHandlers(record *EventRecord) {
	for _, handler := range EventHandlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					common.Log.Warnf("event handler paniced on %s %d: %v",
						record.SourceType, record.SourceID, r)
				}
			}()
			handler(record)
		}()
	}
}

func NewOrderEvent(sourceId types.ID, category EventCategory, detail string, sec *session.Context) *EventRecord {
	record := EventRecord{SourceType: SourceTypeOrder, SourceID: sourceId,
		EventCategory: category, Detail: detail}
	if sec != nil {
		record.CreatorID = sec.Identity.ID
		record.CreatorName = fmt.Sprintf("%s %s", sec.Identity.Name, sec.Identity.Lastname)
	}
	return &record
}
