package indices

import (
	"fmt"
	"sync"

	"aquaflow/authority"
	"aquaflow/domain"
	"aquaflow/event"
	"aquaflow/order"
	"aquaflow/session"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

var (
	lock    sync.Mutex
	running bool

	IndicesFullSyncFunc    = IndicesFullSync
	ScheduleNewSyncRunFunc = ScheduleNewSyncRun
)

// ScheduleNewSyncRun starts a full index rebuild in the background. At most
// one run is in flight at a time: a second request is a no-op.
func ScheduleNewSyncRun(sec *session.Context) (bool, error) {
	if err := authority.CheckPermission(sec, authority.ActionSearchOrders); err != nil {
		return false, err
	}

	lock.Lock()
	if running {
		lock.Unlock()
		return false, nil
	}
	running = true
	lock.Unlock()

	waitRunning := sync.WaitGroup{}
	waitRunning.Add(1)
	go func() {
		waitRunning.Done()
		defer func() {
			lock.Lock()
			running = false
			lock.Unlock()
		}()
		IndicesFullSyncFunc()
	}()
	waitRunning.Wait()
	return true, nil
}

var SyncBatchSize = 500

func IndicesFullSync() (err error) {
	defer func() {
		if ret := recover(); ret != nil {
			e, ok := ret.(error)
			if ok {
				err = e
			} else {
				err = fmt.Errorf("error on indices full sync: %v", ret)
			}
		}
	}()

	page := 1
	for {
		orders, err := order.LoadOrdersFunc(page, SyncBatchSize)
		if err != nil {
			logrus.Warnf("indices fully sync: error on retrieve orders(page = %d, pageSize = %d): %v", page, SyncBatchSize, err)
			page++
			continue
		}

		if len(orders) == 0 {
			logrus.Infof("indices fully sync: there are no more orders to index")
			return nil // loop exit
		}

		if err := IndexOrders(orders); err != nil {
			logrus.Warnf("indices fully sync: error on index orders(page = %d, pageSize = %d): %v", page, SyncBatchSize, err)
		}
		page++
	}
}

// IndexOrderEventHandle keeps the search index in step with order events.
func IndexOrderEventHandle(e *event.EventRecord) {
	if e.SourceType != event.SourceTypeOrder {
		return
	}

	detail, err := order.DetailOrderFunc(e.SourceID)
	if err != nil {
		logrus.Warnf("detail order when index order %d, %v", e.SourceID, err)
		return
	}
	if err := IndexOrders([]domain.OrderDetail{*detail}); err != nil {
		logrus.Warnf("index order %d, %v", e.SourceID, err)
	}
}

// StartCron schedules a nightly full rebuild at 23:00.
func StartCron() *cron.Cron {
	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc("0 0 23 * * ?", func() {
		if err := IndicesFullSyncFunc(); err != nil {
			logrus.Warnf("nightly indices full sync: %v", err)
		}
	}); err != nil {
		panic(err)
	}
	c.Start()
	return c
}
