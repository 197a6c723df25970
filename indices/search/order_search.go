package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"aquaflow/authority"
	"aquaflow/domain"
	"aquaflow/es"
	"aquaflow/indices"
	"aquaflow/session"
)

var SearchOrdersFunc = SearchOrders

type OrderSearchQuery struct {
	// Keyword matches against the denormalized address projection
	Keyword string `json:"keyword" form:"keyword"`
	Status  string `json:"status" form:"status"`
	UserID  string `json:"userId" form:"userId"`
}

func SearchOrders(ctx context.Context, q OrderSearchQuery, sec *session.Context) ([]domain.OrderDetail, error) {
	if err := authority.CheckPermission(sec, authority.ActionSearchOrders); err != nil {
		return nil, err
	}

	filters := make([]es.H, 0, 3)
	if q.Keyword != "" {
		filters = append(filters, es.H{"match": es.H{"address.address": es.H{"query": q.Keyword, "operator": "AND"}}})
	}
	if q.Status != "" {
		filters = append(filters, es.H{"term": es.H{"status": q.Status}})
	}
	if q.UserID != "" {
		filters = append(filters, es.H{"term": es.H{"userId": q.UserID}})
	}

	sorts := make([]es.H, 0, 1)
	sorts = append(sorts, es.H{"createTime": es.H{"order": "desc"}})

	root := es.H{"bool": es.H{"filter": filters}}
	r, err := es.SearchFunc(ctx, indices.OrderIndexName, es.H{"size": 10000, "query": root, "sort": sorts})
	if err != nil {
		return nil, err
	}

	details := make([]domain.OrderDetail, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		d := domain.OrderDetail{}
		if err := json.NewDecoder(strings.NewReader(string(hit.Source))).Decode(&d); err != nil {
			return nil, fmt.Errorf(string(hit.Source))
		}
		details = append(details, d)
	}
	return details, nil
}
