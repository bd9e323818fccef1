// Package reconcile resolves a scraped product snapshot to a target-platform
// product. Candidate identifiers are produced by an ordered list of
// strategies, tried strictly in sequence with an early exit on the first
// mapping hit, so the matching policy stays auditable tier by tier.
package reconcile

import (
	"context"
	"fmt"
	"strings"

	"github.com/freakstore-tools/freaksync/internal/utils"
	"github.com/freakstore-tools/freaksync/pkg/easystore"
	"github.com/freakstore-tools/freaksync/pkg/extract"
	"github.com/freakstore-tools/freaksync/pkg/mapping"
	"github.com/freakstore-tools/freaksync/pkg/sku"
)

// commonSizes are tried against the snapshot's primary color when no exact
// variant identifier resolves. Order matters: the first resolvable size wins
// even if a later one would also resolve.
var commonSizes = []string{"S", "M", "L", "XL", "ONE SIZE"}

// NotFoundError reports that no candidate identifier resolved. Attempted
// carries every identifier tried, in order, for diagnostics.
type NotFoundError struct {
	Attempted []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no mapping after %d candidates: %s", len(e.Attempted), strings.Join(e.Attempted, ", "))
}

// Match is a successful identifier resolution. Fallback marks matches from
// the common-size tier, which may address a different physical variant than
// the one shown on the page; callers should surface that for audit.
type Match struct {
	Identifier string
	TargetSKU  string
	Fallback   bool
	Attempted  []string
}

// strategy produces candidate identifiers for one tier.
type strategy struct {
	name       string
	fallback   bool
	candidates func(snap *extract.ProductSnapshot) []string
}

var strategies = []strategy{
	{
		name: "exact",
		candidates: func(snap *extract.ProductSnapshot) []string {
			ids := make([]string, 0, len(snap.Variants))
			for _, v := range snap.Variants {
				// Always the original source color; the display label
				// would hash to a different identifier.
				ids = append(ids, sku.Generate(snap.Name, v.SourceColor, v.Size))
			}
			return ids
		},
	},
	{
		name:     "common-size",
		fallback: true,
		candidates: func(snap *extract.ProductSnapshot) []string {
			color := snap.PrimarySourceColor()
			if color == "" {
				return nil
			}
			ids := make([]string, 0, len(commonSizes))
			for _, size := range commonSizes {
				ids = append(ids, sku.Generate(snap.Name, color, size))
			}
			return ids
		},
	},
}

// ResolveSKU walks the strategy tiers in order and returns the first
// candidate the mapping table resolves. Candidates already tried by an
// earlier tier are not retried.
func ResolveSKU(snap *extract.ProductSnapshot, table *mapping.Table) (*Match, error) {
	var attempted []string
	tried := make(map[string]bool)

	for _, st := range strategies {
		for _, id := range st.candidates(snap) {
			if tried[id] {
				continue
			}
			tried[id] = true
			attempted = append(attempted, id)

			easySKU, ok := table.Resolve(id)
			if !ok {
				continue
			}
			if st.fallback {
				utils.Log.Warnf("identifier %s matched via %s tier; the physical variant may differ from the page's", id, st.name)
			}
			return &Match{
				Identifier: id,
				TargetSKU:  easySKU,
				Fallback:   st.fallback,
				Attempted:  attempted,
			}, nil
		}
	}

	return nil, &NotFoundError{Attempted: attempted}
}

// VariantLister fetches a product's live variant list.
type VariantLister interface {
	ProductVariants(ctx context.Context, productID int64) ([]easystore.Variant, error)
}

// Resolution is a fully reconciled product: the identifier match, the
// platform location it resolved to, and the product's live variant list.
type Resolution struct {
	Match    *Match
	Ref      mapping.VariantRef
	Variants []easystore.Variant
}

// Reconciler resolves snapshots against the mapping table and the live
// platform state.
type Reconciler struct {
	Table  *mapping.Table
	Client VariantLister
}

// Reconcile resolves the snapshot to a target SKU, locates its product, and
// fetches the product's current variants. The variant list is always fetched
// live so later price computation starts from the platform's current
// compare-at prices.
func (r *Reconciler) Reconcile(ctx context.Context, snap *extract.ProductSnapshot) (*Resolution, error) {
	match, err := ResolveSKU(snap, r.Table)
	if err != nil {
		return nil, err
	}

	ref, ok := r.Table.VariantRef(match.TargetSKU)
	if !ok {
		return nil, fmt.Errorf("matched SKU %s has no variant record in the mapping sheets", match.TargetSKU)
	}

	variants, err := r.Client.ProductVariants(ctx, ref.ProductID)
	if err != nil {
		return nil, fmt.Errorf("fetch product %d variants: %w", ref.ProductID, err)
	}
	if len(variants) == 0 {
		return nil, fmt.Errorf("product %d has no variants on the platform", ref.ProductID)
	}

	return &Resolution{Match: match, Ref: ref, Variants: variants}, nil
}
