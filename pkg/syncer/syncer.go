// Package syncer drives the per-URL pipeline: fetch markup, extract a
// snapshot, reconcile it to a target product, then recompute and push a price
// to every variant of that product. URLs are processed strictly one at a
// time and every failure is converted into a structured result at the URL
// boundary, so one bad page never aborts a batch.
package syncer

import (
	"context"
	"errors"
	"fmt"

	"github.com/freakstore-tools/freaksync/internal/utils"
	"github.com/freakstore-tools/freaksync/pkg/discount"
	"github.com/freakstore-tools/freaksync/pkg/easystore"
	"github.com/freakstore-tools/freaksync/pkg/extract"
	"github.com/freakstore-tools/freaksync/pkg/mapping"
	"github.com/freakstore-tools/freaksync/pkg/reconcile"
)

// State names the pipeline stage a URL is in; the failing stage is recorded
// on the result.
type State string

const (
	StateFetching    State = "FETCHING"
	StateExtracting  State = "EXTRACTING"
	StateReconciling State = "RECONCILING"
	StatePushing     State = "PUSHING"
	StateDone        State = "DONE"
	StateFailed      State = "FAILED"
)

// Fetcher produces raw page markup for a URL. Implementations live outside
// the core; the pipeline only ever sees the markup string.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Platform is the slice of the target platform client the pipeline needs.
type Platform interface {
	ProductVariants(ctx context.Context, productID int64) ([]easystore.Variant, error)
	UpdateVariantPrice(ctx context.Context, productID, variantID int64, price int) error
}

// Result is the outcome of syncing one URL. Created per URL, never mutated
// after SyncURL returns.
type Result struct {
	URL     string
	Success bool

	// Match details.
	MatchedSKU    string
	TargetSKU     string
	FallbackMatch bool
	AttemptedSKUs []string

	// Pricing applied to the matched product.
	DiscountPct   float64
	OriginalPrice int
	FinalPrice    int

	// Platform location and per-variant accounting. UpdatedVariants can be
	// lower than TotalVariants when individual price pushes fail.
	ProductID       int64
	VariantID       int64
	UpdatedVariants int
	TotalVariants   int

	FailedAt State
	Error    string
}

// Syncer wires the pipeline's collaborators together.
type Syncer struct {
	Fetcher  Fetcher
	Table    *mapping.Table
	Platform Platform

	// ExtraMarkdown opts every matched product into the additional
	// high-price markdown.
	ExtraMarkdown bool
}

// SyncURL runs the full pipeline for one source URL.
func (s *Syncer) SyncURL(ctx context.Context, url string) Result {
	res := Result{URL: url}

	fail := func(state State, err error) Result {
		res.Success = false
		res.FailedAt = state
		res.Error = err.Error()
		var nf *reconcile.NotFoundError
		if errors.As(err, &nf) {
			res.AttemptedSKUs = nf.Attempted
		}
		return res
	}

	utils.Log.Debugf("%s: fetching", url)
	markup, err := s.Fetcher.Fetch(ctx, url)
	if err != nil {
		return fail(StateFetching, err)
	}

	utils.Log.Debugf("%s: extracting", url)
	snap, err := extract.Extract(markup)
	if err != nil {
		return fail(StateExtracting, err)
	}
	if snap.Name == "" {
		return fail(StateExtracting, fmt.Errorf("page has no product title"))
	}
	res.DiscountPct = snap.DiscountPct

	utils.Log.Debugf("%s: reconciling %q (%d variants, %.0f%% off)", url, snap.Name, len(snap.Variants), snap.DiscountPct)
	rec := &reconcile.Reconciler{Table: s.Table, Client: s.Platform}
	resolution, err := rec.Reconcile(ctx, snap)
	if err != nil {
		return fail(StateReconciling, err)
	}

	match := resolution.Match
	res.MatchedSKU = match.Identifier
	res.TargetSKU = match.TargetSKU
	res.FallbackMatch = match.Fallback
	res.AttemptedSKUs = match.Attempted
	res.ProductID = resolution.Ref.ProductID
	res.VariantID = resolution.Ref.VariantID
	res.TotalVariants = len(resolution.Variants)

	// The source page's discount applies to the whole product: every live
	// variant gets repriced from its own compare-at base, sequentially so
	// the partial-failure count stays race-free.
	for _, v := range resolution.Variants {
		base := v.DiscountBase()
		final := discount.Compute(base, snap.DiscountPct, s.ExtraMarkdown)

		if err := s.Platform.UpdateVariantPrice(ctx, resolution.Ref.ProductID, v.ID, final); err != nil {
			utils.Log.Errorf("%s: update variant %d failed: %v", url, v.ID, err)
			continue
		}
		utils.Log.Infof("%s: variant %d price %d -> %d", url, v.ID, base, final)
		res.UpdatedVariants++

		if res.OriginalPrice == 0 {
			res.OriginalPrice = base
			res.FinalPrice = final
		}
	}

	if res.UpdatedVariants == 0 {
		return fail(StatePushing, fmt.Errorf("all %d price updates failed", res.TotalVariants))
	}

	res.Success = true
	res.FailedAt = StateDone
	return res
}

// SyncBatch processes URLs one at a time, in order, with no overlap. The
// result list is append-only; a failed URL never aborts the rest.
func (s *Syncer) SyncBatch(ctx context.Context, urls []string) []Result {
	results := make([]Result, 0, len(urls))
	succeeded := 0

	for _, url := range urls {
		res := s.SyncURL(ctx, url)
		results = append(results, res)

		if res.Success {
			succeeded++
			utils.Log.Infof("OK %s: %s -> %s, %d/%d variants updated", url, res.MatchedSKU, res.TargetSKU, res.UpdatedVariants, res.TotalVariants)
		} else {
			utils.Log.Errorf("FAIL %s at %s: %s", url, res.FailedAt, res.Error)
		}
	}

	utils.Log.Infof("batch finished: %d succeeded, %d failed", succeeded, len(urls)-succeeded)
	return results
}
