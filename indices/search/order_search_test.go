package search_test

import (
	"context"
	"encoding/json"
	"testing"

	"aquaflow/authority"
	"aquaflow/bizerror"
	"aquaflow/es"
	"aquaflow/indices"
	"aquaflow/indices/search"
	"aquaflow/testinfra"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
)

func TestSearchOrders(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should deny unauthenticated requests", func(t *testing.T) {
		_, err := search.SearchOrders(context.Background(), search.OrderSearchQuery{}, nil)
		Expect(err).To(Equal(bizerror.ErrUnauthenticated))
	})

	t.Run("should build filters from the query and decode hits", func(t *testing.T) {
		originalHasPermission := authority.HasPermissionFunc
		originalSearch := es.SearchFunc
		defer func() {
			authority.HasPermissionFunc = originalHasPermission
			es.SearchFunc = originalSearch
		}()
		authority.HasPermissionFunc = func(uid types.ID, actionName string) (bool, error) {
			Expect(actionName).To(Equal(authority.ActionSearchOrders))
			return true, nil
		}

		var capturedIndex string
		var capturedQuery interface{}
		es.SearchFunc = func(ctx context.Context, index string, query interface{}) (*es.ESSearchResult, error) {
			capturedIndex = index
			capturedQuery = query
			return &es.ESSearchResult{Hits: es.ESSearchHits{Hits: []es.ESSearchHit{
				{Id: "10", Source: es.Source(`{"id": "10", "status": "PENDING", "address": {"address": "Calle Mayor 1"}}`)},
			}}}, nil
		}

		q := search.OrderSearchQuery{Keyword: "mayor", Status: "PENDING", UserID: "20"}
		details, err := search.SearchOrders(context.Background(), q, testinfra.BuildSecCtx(20))
		Expect(err).To(BeNil())

		Expect(capturedIndex).To(Equal(indices.OrderIndexName))
		queryJson, err := json.Marshal(capturedQuery)
		Expect(err).To(BeNil())
		Expect(queryJson).To(MatchJSON(`{
			"size": 10000,
			"query": {"bool": {"filter": [
				{"match": {"address.address": {"query": "mayor", "operator": "AND"}}},
				{"term": {"status": "PENDING"}},
				{"term": {"userId": "20"}}
			]}},
			"sort": [{"createTime": {"order": "desc"}}]
		}`))

		Expect(len(details)).To(Equal(1))
		Expect(details[0].ID).To(Equal(types.ID(10)))
		Expect(details[0].Status).To(Equal("PENDING"))
		Expect(details[0].Address.Address).To(Equal("Calle Mayor 1"))
	})

	t.Run("should send an unfiltered query when no criteria are given", func(t *testing.T) {
		originalHasPermission := authority.HasPermissionFunc
		originalSearch := es.SearchFunc
		defer func() {
			authority.HasPermissionFunc = originalHasPermission
			es.SearchFunc = originalSearch
		}()
		authority.HasPermissionFunc = func(uid types.ID, actionName string) (bool, error) {
			return true, nil
		}

		var capturedQuery interface{}
		es.SearchFunc = func(ctx context.Context, index string, query interface{}) (*es.ESSearchResult, error) {
			capturedQuery = query
			return &es.ESSearchResult{}, nil
		}

		details, err := search.SearchOrders(context.Background(), search.OrderSearchQuery{}, testinfra.BuildSecCtx(20))
		Expect(err).To(BeNil())
		Expect(details).To(BeEmpty())

		queryJson, err := json.Marshal(capturedQuery)
		Expect(err).To(BeNil())
		Expect(queryJson).To(MatchJSON(`{
			"size": 10000,
			"query": {"bool": {"filter": []}},
			"sort": [{"createTime": {"order": "desc"}}]
		}`))
	})
}
