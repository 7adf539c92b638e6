package payable

import (
	"strings"

	"github.com/aniketwaliyan/dwh-etl/internal/fact"
)

// Pipeline defaults.
const (
	Description = "AG Fact Total Hutang from MongoDB to Azure DWH"
	Table       = "AG_fact_total_hutang_temp"
	ChunkSize   = 2000
	// CounterColumn receives the row's position in the load.
	CounterColumn = "ID Fact Total Hutang"
)

// Procedures run after the staging insert.
var Procedures = []string{"AG_UPSERT_FACT_TOTAL_HUTANG"}

var layout = fact.NewLayout(
	"Nomor Nota Intern",
	"Tanggal Nota Intern",
	"Nama Supplier",
	"Jenis Kategori",
	"Harga Sesuai Invoice",
	"Jumlah Sesuai Bon Unit",
	"Rate Yang Disepakati",
	"Total Harga Nota Intern",
	"Nama Kategori",
	"Nama Divisi",
	"Nama Unit",
	"nomor bon unit",
	"nama produk",
	"kode produk",
	"deleted Unit Receipt Note",
	"deleted Unit Payment Order",
)

// Columns returns the staging table's columns, counter first.
func Columns() []string {
	return append([]string{CounterColumn}, layout.Columns()...)
}

// CategoryType classifies a payment order category. Unlike the purchasing
// fact the comparison ignores case.
func CategoryType(name string) string {
	if strings.EqualFold(name, fact.CategoryRawMaterial) {
		return fact.CategoryRawMaterial
	}
	return fact.CategoryNonRawMaterial
}

// Transform emits one row per receipt item of every group. The counter
// column is left to the loader.
func Transform(groups []Group) ([]fact.Row, error) {
	var (
		is   fact.Issues
		rows []fact.Row
	)
	for _, g := range groups {
		for _, item := range g.Receipt.Items {
			r := layout.NewRow(&is)
			setPayment(r, g.Payment)
			setReceipt(r, g.Receipt, item)
			rows = append(rows, r.Row())
		}
	}
	return rows, is.Err()
}

func setPayment(r fact.RowWriter, p UnitPaymentOrder) {
	r.Set("Nomor Nota Intern", fact.Str(p.No))
	r.Date("Tanggal Nota Intern", p.Date)
	if p.Supplier != nil {
		r.Set("Nama Supplier", fact.Str(p.Supplier.Name))
	}
	if p.Category != nil && p.Category.Name != nil {
		r.Set("Jenis Kategori", fact.String(CategoryType(*p.Category.Name)))
		r.Set("Nama Kategori", fact.Str(p.Category.Name))
	}
	if p.Division != nil {
		r.Set("Nama Divisi", fact.Str(p.Division.Name))
	}
	r.Set("deleted Unit Payment Order", fact.Flag(p.Deleted))
}

func setReceipt(r fact.RowWriter, urn UnitReceiptNote, item ReceiptItem) {
	r.Set("Harga Sesuai Invoice", fact.Num(item.PricePerDealUnit))
	r.Set("Jumlah Sesuai Bon Unit", fact.Num(item.DeliveredQuantity))
	r.Set("Rate Yang Disepakati", fact.Num(item.CurrencyRate))
	if item.PricePerDealUnit != nil && item.DeliveredQuantity != nil && item.CurrencyRate != nil {
		total := *item.PricePerDealUnit * *item.DeliveredQuantity * *item.CurrencyRate
		r.Set("Total Harga Nota Intern", fact.Float(total))
	}
	if urn.Unit != nil {
		r.Set("Nama Unit", fact.Str(urn.Unit.Name))
	}
	r.Set("nomor bon unit", fact.Str(urn.No))
	if item.Product != nil {
		r.Set("nama produk", fact.Str(item.Product.Name))
		r.Set("kode produk", fact.Str(item.Product.Code))
	}
	r.Set("deleted Unit Receipt Note", fact.Flag(urn.Deleted))
}
