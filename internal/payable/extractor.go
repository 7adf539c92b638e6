package payable

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aniketwaliyan/dwh-etl/internal/extract"
)

const (
	ReceiptCollection = "unit-receipt-notes"
	PaymentCollection = "unit-payment-orders"
)

var receiptProjection = []string{
	"no",
	"unit.name",
	"items.pricePerDealUnit",
	"items.deliveredQuantity",
	"items.currencyRate",
	"items.product.name",
	"items.product.code",
	"_deleted",
}

var paymentProjection = []string{
	"no",
	"_createdDate",
	"date",
	"dueDate",
	"supplier.name",
	"category.name",
	"division.name",
	"_deleted",
}

// Extractor finds the receipt notes touched since the watermark and pairs
// each with the payment orders listing it.
type Extractor struct {
	finder      extract.Finder
	excluded    []string
	concurrency int
	log         *zap.Logger
}

func NewExtractor(finder extract.Finder, excluded []string, concurrency int, log *zap.Logger) *Extractor {
	if concurrency <= 0 {
		concurrency = extract.DefaultConcurrency
	}
	return &Extractor{finder: finder, excluded: excluded, concurrency: concurrency, log: log}
}

// ListChangedReceipts returns the live receipt notes updated after since.
func (e *Extractor) ListChangedReceipts(ctx context.Context, since time.Time) ([]UnitReceiptNote, error) {
	var out []UnitReceiptNote
	q := extract.Query{
		Collection: ReceiptCollection,
		Filter: []extract.Predicate{
			extract.Eq{Field: "_deleted", Value: false},
			extract.NotIn{Field: "_createdBy", Values: e.excluded},
			extract.After{Field: "_updatedDate", Time: since},
		},
		Projection: receiptProjection,
	}
	if err := e.finder.Find(ctx, q, &out); err != nil {
		return nil, fmt.Errorf("list changed receipts: %w", err)
	}
	return out, nil
}

// JoinPaymentsForReceipt returns one group per payment order that lists
// urn among its items. A receipt not yet settled yields no group.
func (e *Extractor) JoinPaymentsForReceipt(ctx context.Context, urn UnitReceiptNote) ([]Group, error) {
	var payments []UnitPaymentOrder
	q := extract.Query{
		Collection: PaymentCollection,
		Filter: []extract.Predicate{
			extract.ElemMatch{Field: "items", Match: []extract.Predicate{
				extract.Eq{Field: "unitReceiptNoteId", Value: urn.ID},
			}},
		},
		Projection: paymentProjection,
	}
	if err := e.finder.Find(ctx, q, &payments); err != nil {
		return nil, fmt.Errorf("join payments for receipt %s: %w", urn.ID.Hex(), err)
	}
	groups := make([]Group, len(payments))
	for i, p := range payments {
		groups[i] = Group{Receipt: urn, Payment: p}
	}
	return groups, nil
}

func (e *Extractor) Extract(ctx context.Context, since time.Time) ([]Group, error) {
	receipts, err := e.ListChangedReceipts(ctx, since)
	if err != nil {
		return nil, err
	}
	e.log.Info("receipts to join", zap.Int("receipts", len(receipts)))

	joined := make([][]Group, len(receipts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, urn := range receipts {
		g.Go(func() error {
			groups, err := e.JoinPaymentsForReceipt(gctx, urn)
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
