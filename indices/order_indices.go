package indices

import (
	"context"
	"fmt"

	"aquaflow/domain"
	"aquaflow/es"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
)

var OrderIndexName = "orders"

type OrderDocument struct {
	domain.OrderDetail
}

type BatchActionError map[types.ID]error

func (e BatchActionError) Error() string {
	return fmt.Sprintf("%v", map[types.ID]error(e))
}

func IndexOrders(orders []domain.OrderDetail) error {
	docs := make([]OrderDocument, 0, len(orders))
	for _, order := range orders {
		docs = append(docs, OrderDocument{OrderDetail: order})
	}

	if err := saveOrderDocuments(docs); err != nil {
		return err
	}
	return nil
}

func saveOrderDocuments(orderDocs []OrderDocument) BatchActionError {
	errs := BatchActionError{}

	for _, doc := range orderDocs {
		if err := es.IndexFunc(context.Background(), OrderIndexName, doc.ID, doc); err != nil {
			errs[doc.ID] = err
			logrus.Warnf("index order %d %s\n", doc.ID, err)
		} else {
			logrus.Infof("index order %d successfully\n", doc.ID)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
