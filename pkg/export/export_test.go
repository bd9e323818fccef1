package export

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/freakstore-tools/freaksync/pkg/extract"
	"github.com/freakstore-tools/freaksync/pkg/sku"
	"github.com/freakstore-tools/freaksync/pkg/syncer"
)

func readSheet(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatal(err)
	}
	return rows
}

func TestWriteResults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.xlsx")
	results := []syncer.Result{
		{
			URL: "https://example.test/item/1", Success: true,
			MatchedSKU: "FS-AAAA1111-BLK-S", TargetSKU: "SKU123",
			DiscountPct: 20, OriginalPrice: 5000, FinalPrice: 4000,
			ProductID: 42, VariantID: 420, UpdatedVariants: 3, TotalVariants: 3,
		},
		{
			URL: "https://example.test/item/2", Success: false,
			AttemptedSKUs: []string{"FS-X", "FS-Y"}, Error: "no mapping",
		},
	}

	if err := WriteResults(path, results); err != nil {
		t.Fatalf("WriteResults: %v", err)
	}

	rows := readSheet(t, path)
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + 2", len(rows))
	}
	if rows[0][0] != "Status" || rows[0][1] != "URL" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][0] != "OK" || rows[1][2] != "FS-AAAA1111-BLK-S" {
		t.Errorf("success row = %v", rows[1])
	}
	if rows[2][0] != "FAILED" || rows[2][12] != "FS-X, FS-Y" {
		t.Errorf("failure row = %v", rows[2])
	}
}

func TestBuildStockRows(t *testing.T) {
	snap := &extract.ProductSnapshot{
		Name: "ABC Jacket",
		Variants: []extract.VariantStock{
			{Size: "S", SourceColor: "ブラック", StockLabel: "在庫あり"},
			{Size: "M", SourceColor: "ブラック", StockLabel: "入荷未定"},
		},
	}

	rows := BuildStockRows(snap)
	if len(rows) != 2 {
		t.Fatalf("got %d rows", len(rows))
	}
	if rows[0].SKU != sku.Generate("ABC Jacket", "ブラック", "S") {
		t.Errorf("row 0 SKU = %s", rows[0].SKU)
	}
	if rows[0].Quantity == nil || *rows[0].Quantity != 10 {
		t.Errorf("row 0 quantity = %v", rows[0].Quantity)
	}
	// Unknown stock label exports an empty cell, not zero.
	if rows[1].Quantity != nil {
		t.Errorf("row 1 quantity = %v, want nil", rows[1].Quantity)
	}
}

func TestWriteStockTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stock.xlsx")
	qty := 10
	rows := []StockRow{
		{SKU: "FS-AAAA1111-BLK-S", Quantity: &qty},
		{SKU: "FS-AAAA1111-BLK-M"},
	}

	if err := WriteStockTable(path, rows); err != nil {
		t.Fatalf("WriteStockTable: %v", err)
	}

	got := readSheet(t, path)
	if got[0][0] != "Freak SKU" || got[0][1] != "庫存數量" {
		t.Errorf("header = %v", got[0])
	}
	if got[1][1] != "10" {
		t.Errorf("known quantity cell = %q", got[1][1])
	}
	// Trailing empty cells are trimmed by GetRows; an unknown quantity must
	// not appear as "0".
	if len(got[2]) > 1 && got[2][1] != "" {
		t.Errorf("unknown quantity cell = %q, want empty", got[2][1])
	}
}
