// Package extract parses raw product-page markup into a normalized snapshot
// of name, pricing and the per-variant stock table. It consumes a markup
// string only; how the page was fetched is the caller's business.
package extract

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/freakstore-tools/freaksync/internal/utils"
	"github.com/freakstore-tools/freaksync/pkg/sku"
)

// Page selectors. Fixed contract with the source site's goods template.
const (
	selName         = ".block-goods-name h1"
	selBrand        = ".block-goods-brand-name a"
	selPrice        = ".block-goods-price--price"
	selDefaultPrice = ".block-goods-price--default-price"
	selDiscount     = ".block-goods-price--sale-dratio"
	selColorBlock   = ".block-goods-color-variation-box"
	selColorName    = ".block-goods-color-variation-name-text"
	selSizeBox      = ".block-goods-color-variation-size-stock-box"
	selSizeValue    = ".block-goods-color-variation-size-value"
	selStockStatus  = `[class^="block-goods-stockstatus"]`
)

var discountRe = regexp.MustCompile(`(\d+)%\s*OFF`)

// stockQuantities maps the site's stock-status labels to nominal available
// quantities. Labels not in this table mean "unknown", which stays distinct
// from zero.
var stockQuantities = map[string]int{
	"残りわずか": 2,
	"在庫あり":  10,
	"取り寄せ":  5,
	"在庫なし":  0,
	"予約":    7,
	"残り1点":  0,
}

// VariantStock is one size/color cell of the stock table. SourceColor is the
// label as printed on the page; DisplayColor is its localized form. Identifier
// generation must use SourceColor.
type VariantStock struct {
	Size         string
	DisplayColor string
	SourceColor  string
	StockLabel   string
}

// Quantity returns the nominal available quantity for the variant's stock
// label. ok is false for labels outside the fixed table.
func (v VariantStock) Quantity() (qty int, ok bool) {
	qty, ok = stockQuantities[v.StockLabel]
	return qty, ok
}

// ProductSnapshot is the normalized view of one product page. Immutable after
// Extract returns; each reconciliation pass owns its own snapshot.
type ProductSnapshot struct {
	Name         string
	Brand        string
	CurrentPrice int
	ListPrice    int
	DiscountPct  float64
	Variants     []VariantStock
}

// PrimarySourceColor is the source color of the first variant, or "" for a
// snapshot without variants. Used by the common-size fallback search.
func (s *ProductSnapshot) PrimarySourceColor() string {
	if len(s.Variants) == 0 {
		return ""
	}
	return s.Variants[0].SourceColor
}

// Extract parses product-page markup into a snapshot. Missing optional nodes
// yield zero values (an absent title means an empty name, not an error); only
// markup the parser cannot process at all is a hard error.
func Extract(markup string) (*ProductSnapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}

	snap := &ProductSnapshot{}

	name := doc.Find(selName).First()
	if name.Length() == 0 {
		// Some layouts drop the goods-name wrapper but keep a bare h1.
		name = doc.Find("h1").First()
	}
	snap.Name = strings.TrimSpace(name.Text())
	snap.Brand = strings.TrimSpace(doc.Find(selBrand).First().Text())

	snap.CurrentPrice = utils.DigitsToInt(doc.Find(selPrice).First().Text())
	snap.ListPrice = utils.DigitsToInt(doc.Find(selDefaultPrice).First().Text())
	if snap.ListPrice == 0 && snap.CurrentPrice > 0 {
		snap.ListPrice = snap.CurrentPrice
	}

	snap.DiscountPct = parseDiscount(doc, snap.ListPrice, snap.CurrentPrice)

	doc.Find(selColorBlock).Each(func(_ int, block *goquery.Selection) {
		sourceColor := strings.TrimSpace(block.Find(selColorName).First().Text())
		displayColor := sku.DisplayColor(sourceColor)
		block.Find(selSizeBox).Each(func(_ int, box *goquery.Selection) {
			size := strings.TrimSpace(box.Find(selSizeValue).First().Text())
			label := strings.TrimSpace(box.Find(selStockStatus).First().Text())
			snap.Variants = append(snap.Variants, VariantStock{
				Size:         size,
				DisplayColor: displayColor,
				SourceColor:  sourceColor,
				StockLabel:   label,
			})
		})
	})

	return snap, nil
}

// parseDiscount reads the printed discount ratio, falling back to deriving it
// from the price pair when the tag is absent.
func parseDiscount(doc *goquery.Document, listPrice, currentPrice int) float64 {
	if m := discountRe.FindStringSubmatch(doc.Find(selDiscount).First().Text()); m != nil {
		return float64(utils.DigitsToInt(m[1]))
	}
	if currentPrice > 0 && listPrice > currentPrice {
		return math.Round(float64(listPrice-currentPrice) / float64(listPrice) * 100)
	}
	return 0
}
