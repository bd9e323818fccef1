// Package export writes sync results and stock tables to xlsx workbooks, the
// format the downstream catalog sheets are maintained in.
package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/freakstore-tools/freaksync/pkg/extract"
	"github.com/freakstore-tools/freaksync/pkg/sku"
	"github.com/freakstore-tools/freaksync/pkg/syncer"
)

// resultHeader mirrors the sync result record; column names are part of the
// operator workflow, don't rename casually.
var resultHeader = []interface{}{
	"Status", "URL", "Matched SKU", "Target SKU", "Fallback Match",
	"Discount %", "Original Price", "Final Price", "Product ID", "Variant ID",
	"Updated Variants", "Total Variants", "Attempted SKUs", "Error",
}

// WriteResults writes one row per synced URL.
func WriteResults(path string, results []syncer.Result) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	if err := setRow(f, sheet, 1, resultHeader); err != nil {
		return err
	}
	for i, r := range results {
		status := "OK"
		if !r.Success {
			status = "FAILED"
		}
		row := []interface{}{
			status, r.URL, r.MatchedSKU, r.TargetSKU, r.FallbackMatch,
			r.DiscountPct, r.OriginalPrice, r.FinalPrice, r.ProductID,
			r.VariantID, r.UpdatedVariants, r.TotalVariants,
			strings.Join(r.AttemptedSKUs, ", "), r.Error,
		}
		if err := setRow(f, sheet, i+2, row); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

// StockRow is one line of the stock table export.
type StockRow struct {
	SKU string
	// Quantity is nil when the page's stock label is unknown; the cell is
	// left empty so "unknown" never reads as zero.
	Quantity *int
}

// BuildStockRows derives stock export rows from a snapshot, one per variant,
// keyed by the variant identifier.
func BuildStockRows(snap *extract.ProductSnapshot) []StockRow {
	rows := make([]StockRow, 0, len(snap.Variants))
	for _, v := range snap.Variants {
		row := StockRow{SKU: sku.Generate(snap.Name, v.SourceColor, v.Size)}
		if qty, ok := v.Quantity(); ok {
			q := qty
			row.Quantity = &q
		}
		rows = append(rows, row)
	}
	return rows
}

// WriteStockTable writes stock rows with the header the catalog sheets use.
func WriteStockTable(path string, rows []StockRow) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	if err := setRow(f, sheet, 1, []interface{}{"Freak SKU", "庫存數量"}); err != nil {
		return err
	}
	for i, r := range rows {
		var qty interface{}
		if r.Quantity != nil {
			qty = *r.Quantity
		}
		if err := setRow(f, sheet, i+2, []interface{}{r.SKU, qty}); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	addr, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("row %d: %w", row, err)
	}
	return f.SetSheetRow(sheet, addr, &values)
}
