package purchasing

import (
	"strconv"
	"time"

	"github.com/aniketwaliyan/dwh-etl/internal/fact"
)

// Pipeline defaults.
const (
	Description = "Fact Pembelian from MongoDB to Azure DWH"
	Table       = "ag_fact_pembelian_temp"
	ChunkSize   = 10000
)

// Procedures run after the staging insert, in order.
var Procedures = []string{"AG_UPSERT_FACT_PEMBELIAN", "AG_INSERT_DIMTIME"}

// layout is the staging table's column order.
var layout = fact.NewLayout(
	"purchaseRequestNo",
	"purchaseRequestDate",
	"expectedPRDeliveryDate",
	"budgetCode",
	"budgetName",
	"unitCode",
	"unitName",
	"divisionCode",
	"divisionName",
	"categoryCode",
	"categoryName",
	"categoryType",
	"productCode",
	"productName",
	"purchaseRequestDays",
	"purchaseRequestDaysRange",
	"prPurchaseOrderExternalDays",
	"prPurchaseOrderExternalDaysRange",
	"purchaseOrderNo",
	"purchaseOrderDate",
	"purchaseOrderExternalDays",
	"purchaseOrderExternalDaysRange",
	"purchasingStaffName",
	"prNoAtPo",
	"purchaseOrderExternalNo",
	"purchaseOrderExternalDate",
	"deliveryOrderDays",
	"deliveryOrderDaysRange",
	"supplierCode",
	"supplierName",
	"currencyCode",
	"currencyName",
	"paymentMethod",
	"currencyRate",
	"purchaseQuantity",
	"uom",
	"pricePerUnit",
	"totalPrice",
	"expectedDeliveryDate",
	"prNoAtPoExt",
	"deliveryOrderNo",
	"deliveryOrderDate",
	"unitReceiptNoteDays",
	"unitReceiptNoteDaysRange",
	"status",
	"prNoAtDo",
	"unitReceiptNoteNo",
	"unitReceiptNoteDate",
	"unitPaymentOrderDays",
	"unitPaymentOrderDaysRange",
	"unitPaymentOrderNo",
	"unitPaymentOrderDate",
	"purchaseOrderDays",
	"purchaseOrderDaysRange",
	"invoicePrice",
	"deletedPR",
	"deletedPO",
)

// Columns returns the staging table's column order.
func Columns() []string { return layout.Columns() }

// Transform maps groups to fact rows. Rejected dates are emitted as null and
// reported together in the returned error, which wraps fact.ErrDataQuality;
// the rows are complete either way.
func Transform(groups []Group) ([]fact.Row, error) {
	var (
		is   fact.Issues
		rows []fact.Row
	)
	for _, g := range groups {
		if g.Order == nil {
			rows = append(rows, requestRows(g.Request, &is)...)
			continue
		}
		rows = append(rows, orderRows(g.Request, g.Order, &is)...)
	}
	return rows, is.Err()
}

func requestRows(pr PurchaseRequest, is *fact.Issues) []fact.Row {
	rows := make([]fact.Row, 0, len(pr.Items))
	for _, item := range pr.Items {
		r := layout.NewRow(is)
		setRequest(r, pr)
		setProduct(r, item.Product)
		r.Set("purchaseQuantity", fact.Num(item.Quantity))
		r.Set("uom", fact.Str(requestUOM(item)))
		rows = append(rows, r.Row())
	}
	return rows
}

func requestUOM(item RequestItem) *string {
	if item.Product != nil && item.Product.UOM != nil && item.Product.UOM.Unit != nil {
		return item.Product.UOM.Unit
	}
	if item.UOM != nil {
		return item.UOM.Unit
	}
	return nil
}

func orderRows(pr PurchaseRequest, po *PurchaseOrder, is *fact.Issues) []fact.Row {
	var rows []fact.Row
	for _, item := range po.Items {
		if len(item.Fulfillments) == 0 {
			r := layout.NewRow(is)
			setRequest(r, pr)
			setOrder(r, pr, po, item)
			rows = append(rows, r.Row())
			continue
		}
		for _, f := range item.Fulfillments {
			r := layout.NewRow(is)
			setRequest(r, pr)
			setOrder(r, pr, po, item)
			setFulfillment(r, pr, po, item, f)
			rows = append(rows, r.Row())
		}
	}
	return rows
}

func setRequest(r fact.RowWriter, pr PurchaseRequest) {
	r.Set("purchaseRequestNo", fact.Str(pr.No))
	r.Date("purchaseRequestDate", pr.CreatedDate)
	r.Date("expectedPRDeliveryDate", pr.ExpectedDeliveryDate)
	if b := pr.Budget; b != nil {
		r.Set("budgetCode", fact.Str(b.Code))
		r.Set("budgetName", fact.Str(b.Name))
	}
	if u := pr.Unit; u != nil {
		r.Set("unitCode", fact.Str(u.Code))
		r.Set("unitName", fact.Str(u.Name))
		if d := u.Division; d != nil {
			r.Set("divisionCode", fact.Str(d.Code))
			r.Set("divisionName", fact.Str(d.Name))
		}
	}
	if c := pr.Category; c != nil {
		r.Set("categoryCode", fact.Str(c.Code))
		r.Set("categoryName", fact.Str(c.Name))
		if c.Name != nil && *c.Name != "" {
			r.Set("categoryType", fact.String(fact.CategoryType(c.Name)))
		}
	}
	r.Set("deletedPR", fact.Flag(pr.Deleted))
}

func setProduct(r fact.RowWriter, p *Product) {
	if p == nil {
		return
	}
	r.Set("productCode", fact.Str(p.Code))
	r.Set("productName", fact.Str(p.Name))
}

// setOrder fills the order and external order columns shared by every row
// of an order item.
func setOrder(r fact.RowWriter, pr PurchaseRequest, po *PurchaseOrder, item OrderItem) {
	setProduct(r, item.Product)

	ext := po.External
	if ext == nil {
		ext = &ExternalOrder{}
	}

	r.Days("purchaseRequestDays", "purchaseRequestDaysRange",
		fact.DaysBetweenPtr(pr.CreatedDate, po.CreatedDate), fact.WeekRange)
	r.Days("prPurchaseOrderExternalDays", "prPurchaseOrderExternalDaysRange",
		fact.DaysBetweenPtr(pr.CreatedDate, ext.CreatedDate), fact.WeekRange)

	r.Set("purchaseOrderNo", fact.Str(po.No))
	r.Date("purchaseOrderDate", po.CreatedDate)
	r.Days("purchaseOrderExternalDays", "purchaseOrderExternalDaysRange",
		fact.DaysBetweenPtr(po.CreatedDate, ext.CreatedDate), fact.WeekRange)
	r.Set("purchasingStaffName", fact.Str(po.CreatedBy))
	r.Set("prNoAtPo", fact.Str(pr.No))

	r.Set("purchaseOrderExternalNo", fact.Str(ext.No))
	r.Date("purchaseOrderExternalDate", ext.CreatedDate)
	if s := ext.Supplier; s != nil {
		r.Set("supplierCode", fact.Str(s.Code))
		r.Set("supplierName", fact.Str(s.Name))
	}
	if c := ext.Currency; c != nil {
		r.Set("currencyCode", fact.Str(c.Code))
		r.Set("currencyName", fact.Str(c.Description))
	}
	r.Set("paymentMethod", fact.Str(ext.PaymentMethod))
	r.Set("currencyRate", fact.Num(ext.CurrencyRate))

	r.Set("purchaseQuantity", fact.Num(item.DealQuantity))
	if item.DealUOM != nil {
		r.Set("uom", fact.Str(item.DealUOM.Unit))
	}
	r.Set("pricePerUnit", fact.Num(item.PricePerDealUnit))
	if item.DealQuantity != nil && item.PricePerDealUnit != nil && ext.CurrencyRate != nil {
		total := *item.DealQuantity * *item.PricePerDealUnit * *ext.CurrencyRate
		r.Set("totalPrice", fact.Float(total))
	}
	r.Date("expectedDeliveryDate", ext.ExpectedDeliveryDate)
	if ext.No != nil && *ext.No != "" {
		r.Set("prNoAtPoExt", fact.Str(pr.No))
	}
	r.Set("deletedPO", fact.Flag(po.Deleted))
}

// setFulfillment fills the columns of one delivery, receipt and settlement.
func setFulfillment(r fact.RowWriter, pr PurchaseRequest, po *PurchaseOrder, item OrderItem, f Fulfillment) {
	var extCreated, expected *time.Time
	if po.External != nil {
		extCreated = po.External.CreatedDate
		expected = po.External.ExpectedDeliveryDate
	}

	r.Days("deliveryOrderDays", "deliveryOrderDaysRange",
		fact.DaysBetweenPtr(extCreated, f.DeliveryOrderDate), fact.MonthRange)
	r.Set("deliveryOrderNo", fact.Str(f.DeliveryOrderNo))
	r.Date("deliveryOrderDate", f.DeliveryOrderDate)
	r.Days("unitReceiptNoteDays", "unitReceiptNoteDaysRange",
		fact.DaysBetweenPtr(f.DeliveryOrderDate, f.UnitReceiptNoteDate), fact.WeekRange)

	// Status is judged on the item's latest delivery.
	if f.DeliveryOrderDate != nil {
		last := item.Fulfillments[len(item.Fulfillments)-1].DeliveryOrderDate
		if fact.ValidDate(last) && fact.ValidDate(expected) {
			r.Set("status", fact.String(fact.DeliveryStatus(*expected, *last)))
		}
	}
	if f.DeliveryOrderNo != nil && *f.DeliveryOrderNo != "" {
		r.Set("prNoAtDo", fact.Str(pr.No))
	}

	r.Set("unitReceiptNoteNo", fact.Str(f.UnitReceiptNoteNo))
	r.Date("unitReceiptNoteDate", f.UnitReceiptNoteDate)
	r.Days("unitPaymentOrderDays", "unitPaymentOrderDaysRange",
		fact.DaysBetweenPtr(f.UnitReceiptNoteDate, f.InterNoteDate), fact.WeekRange)

	r.Set("unitPaymentOrderNo", fact.Str(f.InterNoteNo))
	r.Date("unitPaymentOrderDate", f.InterNoteDate)
	r.Days("purchaseOrderDays", "purchaseOrderDaysRange",
		fact.DaysBetweenPtr(po.CreatedDate, f.InterNoteDate), fact.MonthRange)
	if f.InterNoteDate != nil && item.PricePerDealUnit != nil {
		r.Set("invoicePrice", fact.String(strconv.FormatFloat(*item.PricePerDealUnit, 'f', -1, 64)))
	}
}
