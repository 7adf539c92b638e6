package purchasing

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aniketwaliyan/dwh-etl/internal/extract"
	"github.com/aniketwaliyan/dwh-etl/internal/pipeline"
)

const (
	RequestCollection = "purchase-requests"
	OrderCollection   = "purchase-orders"
)

// orderProjection is the order field set the transform reads.
var orderProjection = []string{
	"_createdDate",
	"_createdBy",
	"no",
	"_deleted",
	"purchaseRequestId",
	"purchaseRequest._id",
	"purchaseRequest.no",
	"purchaseRequest.budget",
	"purchaseOrderExternal._createdDate",
	"purchaseOrderExternal.no",
	"purchaseOrderExternal.supplier.code",
	"purchaseOrderExternal.supplier.name",
	"purchaseOrderExternal.currency.code",
	"purchaseOrderExternal.currency.description",
	"purchaseOrderExternal.paymentMethod",
	"purchaseOrderExternal.currencyRate",
	"purchaseOrderExternal.expectedDeliveryDate",
	"items.product.code",
	"items.product.name",
	"items.dealQuantity",
	"items.dealUom.unit",
	"items.pricePerDealUnit",
	"items.fulfillments.deliveryOrderNo",
	"items.fulfillments.deliveryOrderDate",
	"items.fulfillments.unitReceiptNoteNo",
	"items.fulfillments.unitReceiptNoteDate",
	"items.fulfillments.interNoteNo",
	"items.fulfillments.interNoteDate",
}

// Extractor finds the requests touched since the watermark and joins each
// to its orders.
type Extractor struct {
	finder      extract.Finder
	excluded    []string
	concurrency int
	log         *zap.Logger
}

// NewExtractor returns an Extractor reading through finder. Records created
// by an author in excluded are ignored. concurrency bounds the queries in
// flight during joins.
func NewExtractor(finder extract.Finder, excluded []string, concurrency int, log *zap.Logger) *Extractor {
	if concurrency <= 0 {
		concurrency = extract.DefaultConcurrency
	}
	return &Extractor{finder: finder, excluded: excluded, concurrency: concurrency, log: log}
}

func (e *Extractor) changedSince(since time.Time) []extract.Predicate {
	return []extract.Predicate{
		extract.NotIn{Field: "_createdBy", Values: e.excluded},
		extract.After{Field: "_updatedDate", Time: since},
	}
}

// ListChangedRequests returns the requests updated after since.
func (e *Extractor) ListChangedRequests(ctx context.Context, since time.Time) ([]PurchaseRequest, error) {
	var out []PurchaseRequest
	q := extract.Query{Collection: RequestCollection, Filter: e.changedSince(since)}
	if err := e.finder.Find(ctx, q, &out); err != nil {
		return nil, fmt.Errorf("list changed requests: %w", err)
	}
	return out, nil
}

// ListChangedOrders returns the orders updated after since.
func (e *Extractor) ListChangedOrders(ctx context.Context, since time.Time) ([]PurchaseOrder, error) {
	var out []PurchaseOrder
	q := extract.Query{Collection: OrderCollection, Filter: e.changedSince(since)}
	if err := e.finder.Find(ctx, q, &out); err != nil {
		return nil, fmt.Errorf("list changed orders: %w", err)
	}
	return out, nil
}

// ResolveRequestsReferencedByOrders fetches the request behind each order.
// Orders without a request reference are skipped and the result may repeat
// a request referenced by several orders.
func (e *Extractor) ResolveRequestsReferencedByOrders(ctx context.Context, orders []PurchaseOrder) ([]PurchaseRequest, error) {
	found := make([][]PurchaseRequest, len(orders))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, o := range orders {
		id, ok := o.requestID()
		if !ok {
			continue
		}
		g.Go(func() error {
			q := extract.Query{
				Collection: RequestCollection,
				Filter:     []extract.Predicate{extract.Eq{Field: "_id", Value: id}},
			}
			if err := e.finder.Find(ctx, q, &found[i]); err != nil {
				return fmt.Errorf("resolve request %s of order %s: %w", id.Hex(), o.ID.Hex(), err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var out []PurchaseRequest
	for _, prs := range found {
		out = append(out, prs...)
	}
	return out, nil
}

// JoinOrdersForRequest returns one group per live order raised against pr,
// or a single group without an order when there is none.
func (e *Extractor) JoinOrdersForRequest(ctx context.Context, pr PurchaseRequest) ([]Group, error) {
	var orders []PurchaseOrder
	q := extract.Query{
		Collection: OrderCollection,
		Filter: []extract.Predicate{
			extract.Eq{Field: "_deleted", Value: false},
			extract.NotIn{Field: "_createdBy", Values: e.excluded},
			extract.Eq{Field: "purchaseRequestId", Value: pr.ID},
		},
		Projection: orderProjection,
	}
	if err := e.finder.Find(ctx, q, &orders); err != nil {
		return nil, fmt.Errorf("join orders for request %s: %w", pr.ID.Hex(), err)
	}
	if len(orders) == 0 {
		return []Group{{Request: pr}}, nil
	}
	groups := make([]Group, len(orders))
	for i := range orders {
		groups[i] = Group{Request: pr, Order: &orders[i]}
	}
	return groups, nil
}

// Extract returns the groups of every request that changed after since or
// has an order that did.
func (e *Extractor) Extract(ctx context.Context, since time.Time) ([]Group, error) {
	var (
		changed  []PurchaseRequest
		viaOrder []PurchaseRequest
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		changed, err = e.ListChangedRequests(gctx, since)
		return err
	})
	g.Go(func() error {
		orders, err := e.ListChangedOrders(gctx, since)
		if err != nil {
			return err
		}
		viaOrder, err = e.ResolveRequestsReferencedByOrders(gctx, orders)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	requests := pipeline.Dedupe(append(changed, viaOrder...), requestKey)
	e.log.Info("requests to join",
		zap.Int("changed", len(changed)),
		zap.Int("via_orders", len(viaOrder)),
		zap.Int("unique", len(requests)))

	joined := make([][]Group, len(requests))
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, pr := range requests {
		g.Go(func() error {
			groups, err := e.JoinOrdersForRequest(gctx, pr)
			joined[i] = groups
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []Group
	for _, groups := range joined {
		out = append(out, groups...)
	}
	return out, nil
}

// requestKey is the business identity of a request, falling back to its
// storage id when it has no number.
func requestKey(pr PurchaseRequest) string {
	if pr.No != nil {
		return *pr.No
	}
	return pr.ID.Hex()
}
