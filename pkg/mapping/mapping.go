// Package mapping loads and serves the precomputed lookup from source
// variant identifiers to target-platform SKUs. The table is built once at
// startup from two reference workbooks and is read-only afterwards, so it
// needs no synchronization during a sync run.
package mapping

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Column headers are fixed contract strings shared with the spreadsheets the
// catalog-build tooling maintains.
const (
	refColFreakSKU = "Freak SKU（請填入）"
	refColEasySKU  = "EasyStore SKU"

	varColSKU       = "SKU"
	varColProductID = "product_id"
	varColVariantID = "Variant ID"
	varColPrice     = "price"
	varColCompareAt = "compare_at_price"
)

// ReferenceRow is one row of the canonical source→target SKU sheet.
type ReferenceRow struct {
	FreakSKU string
	EasySKU  string
}

// VariantRow is one row of the variant sheet: a target SKU plus the platform
// ids needed to address it. Price columns are optional in the sheet.
type VariantRow struct {
	SKU            string
	ProductID      int64
	VariantID      int64
	Price          int
	CompareAtPrice int
}

// VariantRef locates a variant on the target platform.
type VariantRef struct {
	ProductID      int64
	VariantID      int64
	Price          int
	CompareAtPrice int
}

// Table resolves source identifiers to target SKUs and target SKUs to
// platform ids. Immutable after construction.
type Table struct {
	skus     map[string]string
	variants map[string]VariantRef
}

// Build merges the two sheets into a table. Reference rows go in first; every
// variant-sheet SKU is then layered over as an identity mapping, so variant
// identities win for keys present in both.
func Build(refs []ReferenceRow, variants []VariantRow) *Table {
	t := &Table{
		skus:     make(map[string]string, len(refs)+len(variants)),
		variants: make(map[string]VariantRef, len(variants)),
	}
	for _, r := range refs {
		freak := strings.TrimSpace(r.FreakSKU)
		easy := strings.TrimSpace(r.EasySKU)
		if freak == "" {
			continue
		}
		t.skus[freak] = easy
	}
	for _, v := range variants {
		s := strings.TrimSpace(v.SKU)
		if s == "" {
			continue
		}
		t.skus[s] = s
		t.variants[s] = VariantRef{
			ProductID:      v.ProductID,
			VariantID:      v.VariantID,
			Price:          v.Price,
			CompareAtPrice: v.CompareAtPrice,
		}
	}
	return t
}

// Load reads the reference and variant workbooks (first sheet of each) and
// builds the table. A missing expected column is fatal.
func Load(referencePath, variantPath string) (*Table, error) {
	refs, err := loadReferenceSheet(referencePath)
	if err != nil {
		return nil, fmt.Errorf("reference sheet %s: %w", referencePath, err)
	}
	variants, err := loadVariantSheet(variantPath)
	if err != nil {
		return nil, fmt.Errorf("variant sheet %s: %w", variantPath, err)
	}
	return Build(refs, variants), nil
}

// Resolve looks up the target SKU for a source identifier. A miss is a
// normal outcome the caller handles via fallback tiers.
func (t *Table) Resolve(id string) (string, bool) {
	easy, ok := t.skus[strings.TrimSpace(id)]
	return easy, ok
}

// VariantRef returns the platform ids recorded for a variant-sheet SKU.
func (t *Table) VariantRef(sku string) (VariantRef, bool) {
	ref, ok := t.variants[strings.TrimSpace(sku)]
	return ref, ok
}

// Len reports the number of resolvable identifiers.
func (t *Table) Len() int {
	return len(t.skus)
}

func loadReferenceSheet(path string) ([]ReferenceRow, error) {
	rows, header, err := sheetRows(path)
	if err != nil {
		return nil, err
	}
	freakCol, ok := header[refColFreakSKU]
	if !ok {
		return nil, fmt.Errorf("missing column %q", refColFreakSKU)
	}
	easyCol, ok := header[refColEasySKU]
	if !ok {
		return nil, fmt.Errorf("missing column %q", refColEasySKU)
	}

	var refs []ReferenceRow
	for _, row := range rows {
		refs = append(refs, ReferenceRow{
			FreakSKU: cell(row, freakCol),
			EasySKU:  cell(row, easyCol),
		})
	}
	return refs, nil
}

func loadVariantSheet(path string) ([]VariantRow, error) {
	rows, header, err := sheetRows(path)
	if err != nil {
		return nil, err
	}
	skuCol, ok := header[varColSKU]
	if !ok {
		return nil, fmt.Errorf("missing column %q", varColSKU)
	}
	pidCol, ok := header[varColProductID]
	if !ok {
		return nil, fmt.Errorf("missing column %q", varColProductID)
	}
	vidCol, ok := header[varColVariantID]
	if !ok {
		return nil, fmt.Errorf("missing column %q", varColVariantID)
	}
	priceCol, hasPrice := header[varColPrice]
	compareCol, hasCompare := header[varColCompareAt]

	var variants []VariantRow
	for i, row := range rows {
		v := VariantRow{SKU: cell(row, skuCol)}
		if v.SKU == "" {
			continue
		}
		if v.ProductID, err = cellInt64(row, pidCol); err != nil {
			return nil, fmt.Errorf("row %d: %s: %w", i+2, varColProductID, err)
		}
		if v.VariantID, err = cellInt64(row, vidCol); err != nil {
			return nil, fmt.Errorf("row %d: %s: %w", i+2, varColVariantID, err)
		}
		if hasPrice {
			v.Price = cellInt(row, priceCol)
		}
		if hasCompare {
			v.CompareAtPrice = cellInt(row, compareCol)
		}
		variants = append(variants, v)
	}
	return variants, nil
}

// sheetRows opens a workbook and returns the data rows of its first sheet
// plus a header-name → column-index map.
func sheetRows(path string) ([][]string, map[string]int, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("sheet is empty")
	}

	header := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		header[strings.TrimSpace(name)] = i
	}
	return rows[1:], header, nil
}

func cell(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}

func cellInt64(row []string, col int) (int64, error) {
	s := cell(row, col)
	if s == "" {
		return 0, fmt.Errorf("empty cell")
	}
	// Excel often renders ids as floats ("12345.0").
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f), nil
	}
	return strconv.ParseInt(s, 10, 64)
}

func cellInt(row []string, col int) int {
	s := cell(row, col)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int(f)
}
