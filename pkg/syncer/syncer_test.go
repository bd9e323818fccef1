package syncer

import (
	"context"
	"fmt"
	"testing"

	"github.com/freakstore-tools/freaksync/pkg/easystore"
	"github.com/freakstore-tools/freaksync/pkg/mapping"
	"github.com/freakstore-tools/freaksync/pkg/sku"
)

const jacketPage = `
<html><body>
<div class="block-goods-name"><h1>ABC Jacket</h1></div>
<div class="block-goods-price">
  <span class="block-goods-price--default-price">&yen;5,000</span>
  <span class="block-goods-price--price">&yen;4,000</span>
  <span class="block-goods-price--sale-dratio">20% OFF</span>
</div>
<div class="block-goods-color-variation-box">
  <p class="block-goods-color-variation-name-text">ブラック</p>
  <div class="block-goods-color-variation-size-stock-box">
    <span class="block-goods-color-variation-size-value">S</span>
    <span class="block-goods-stockstatus-instock">在庫あり</span>
  </div>
  <div class="block-goods-color-variation-size-stock-box">
    <span class="block-goods-color-variation-size-value">M</span>
    <span class="block-goods-stockstatus-instock">在庫あり</span>
  </div>
  <div class="block-goods-color-variation-size-stock-box">
    <span class="block-goods-color-variation-size-value">L</span>
    <span class="block-goods-stockstatus-instock">在庫あり</span>
  </div>
</div>
</body></html>`

type stubFetcher struct {
	pages map[string]string
	err   error
}

func (f *stubFetcher) Fetch(_ context.Context, url string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	page, ok := f.pages[url]
	if !ok {
		return "", fmt.Errorf("no page for %s", url)
	}
	return page, nil
}

type stubPlatform struct {
	variants map[int64][]easystore.Variant

	updates     []int // prices pushed, in order
	failVariant map[int64]bool
	fetchErr    error
}

func (p *stubPlatform) ProductVariants(_ context.Context, productID int64) ([]easystore.Variant, error) {
	if p.fetchErr != nil {
		return nil, p.fetchErr
	}
	return p.variants[productID], nil
}

func (p *stubPlatform) UpdateVariantPrice(_ context.Context, _, variantID int64, price int) error {
	if p.failVariant[variantID] {
		return fmt.Errorf("HTTP 500")
	}
	p.updates = append(p.updates, price)
	return nil
}

func jacketTable(t *testing.T) *mapping.Table {
	t.Helper()
	id := sku.Generate("ABC Jacket", "ブラック", "S")
	return mapping.Build(
		[]mapping.ReferenceRow{{FreakSKU: id, EasySKU: "SKU123"}},
		[]mapping.VariantRow{{SKU: "SKU123", ProductID: 42, VariantID: 420}},
	)
}

func jacketVariants(n int) []easystore.Variant {
	out := make([]easystore.Variant, n)
	for i := range out {
		out[i] = easystore.Variant{
			ID:             int64(420 + i),
			SKU:            fmt.Sprintf("SKU12%d", 3+i),
			Price:          4000,
			CompareAtPrice: 5000,
		}
	}
	return out
}

func TestSyncURLEndToEnd(t *testing.T) {
	platform := &stubPlatform{variants: map[int64][]easystore.Variant{42: jacketVariants(3)}}
	s := &Syncer{
		Fetcher:  &stubFetcher{pages: map[string]string{"https://example.test/item/1": jacketPage}},
		Table:    jacketTable(t),
		Platform: platform,
	}

	res := s.SyncURL(context.Background(), "https://example.test/item/1")
	if !res.Success {
		t.Fatalf("sync failed: %s (at %s)", res.Error, res.FailedAt)
	}
	if res.MatchedSKU != sku.Generate("ABC Jacket", "ブラック", "S") {
		t.Errorf("MatchedSKU = %s", res.MatchedSKU)
	}
	if res.FallbackMatch {
		t.Error("exact match flagged as fallback")
	}
	if res.DiscountPct != 20 {
		t.Errorf("DiscountPct = %v", res.DiscountPct)
	}
	if res.ProductID != 42 || res.VariantID != 420 {
		t.Errorf("platform ids = %d/%d", res.ProductID, res.VariantID)
	}
	if res.UpdatedVariants != 3 || res.TotalVariants != 3 {
		t.Errorf("updated %d/%d", res.UpdatedVariants, res.TotalVariants)
	}
	// Every variant repriced from its compare-at base: round(5000*0.8).
	for i, price := range platform.updates {
		if price != 4000 {
			t.Errorf("push %d price = %d, want 4000", i, price)
		}
	}
	if res.OriginalPrice != 5000 || res.FinalPrice != 4000 {
		t.Errorf("prices = %d -> %d", res.OriginalPrice, res.FinalPrice)
	}
}

func TestSyncURLPartialFailure(t *testing.T) {
	platform := &stubPlatform{
		variants:    map[int64][]easystore.Variant{42: jacketVariants(5)},
		failVariant: map[int64]bool{421: true, 423: true},
	}
	s := &Syncer{
		Fetcher:  &stubFetcher{pages: map[string]string{"u": jacketPage}},
		Table:    jacketTable(t),
		Platform: platform,
	}

	res := s.SyncURL(context.Background(), "u")
	if !res.Success {
		t.Fatalf("partial failure should still be a success: %s", res.Error)
	}
	if res.UpdatedVariants != 3 || res.TotalVariants != 5 {
		t.Errorf("updated %d/%d, want 3/5", res.UpdatedVariants, res.TotalVariants)
	}
}

func TestSyncURLAllPushesFail(t *testing.T) {
	platform := &stubPlatform{
		variants:    map[int64][]easystore.Variant{42: jacketVariants(2)},
		failVariant: map[int64]bool{420: true, 421: true},
	}
	s := &Syncer{
		Fetcher:  &stubFetcher{pages: map[string]string{"u": jacketPage}},
		Table:    jacketTable(t),
		Platform: platform,
	}

	res := s.SyncURL(context.Background(), "u")
	if res.Success {
		t.Fatal("expected failure when no variant was updated")
	}
	if res.FailedAt != StatePushing {
		t.Errorf("FailedAt = %s", res.FailedAt)
	}
}

func TestSyncURLNoMapping(t *testing.T) {
	platform := &stubPlatform{}
	s := &Syncer{
		Fetcher:  &stubFetcher{pages: map[string]string{"u": jacketPage}},
		Table:    mapping.Build(nil, nil),
		Platform: platform,
	}

	res := s.SyncURL(context.Background(), "u")
	if res.Success {
		t.Fatal("expected reconciliation failure")
	}
	if res.FailedAt != StateReconciling {
		t.Errorf("FailedAt = %s", res.FailedAt)
	}
	// Exact tier S/M/L plus XL and ONE SIZE from the fallback tier.
	if len(res.AttemptedSKUs) != 5 {
		t.Errorf("attempted = %v", res.AttemptedSKUs)
	}
	// No partial updates on a reconciliation miss.
	if len(platform.updates) != 0 {
		t.Errorf("pushes issued despite miss: %v", platform.updates)
	}
}

func TestSyncURLFetchFailure(t *testing.T) {
	s := &Syncer{
		Fetcher:  &stubFetcher{err: fmt.Errorf("connection refused")},
		Table:    jacketTable(t),
		Platform: &stubPlatform{},
	}

	res := s.SyncURL(context.Background(), "u")
	if res.Success || res.FailedAt != StateFetching {
		t.Fatalf("res = %+v", res)
	}
}

func TestSyncURLExtraMarkdown(t *testing.T) {
	// Compare-at 8000, no printed discount beyond 20%: 8000*0.8 = 6400,
	// above the threshold, then *0.85 = 5440.
	variants := []easystore.Variant{{ID: 420, SKU: "SKU123", Price: 8000, CompareAtPrice: 8000}}
	platform := &stubPlatform{variants: map[int64][]easystore.Variant{42: variants}}
	s := &Syncer{
		Fetcher:       &stubFetcher{pages: map[string]string{"u": jacketPage}},
		Table:         jacketTable(t),
		Platform:      platform,
		ExtraMarkdown: true,
	}

	res := s.SyncURL(context.Background(), "u")
	if !res.Success {
		t.Fatalf("sync failed: %s", res.Error)
	}
	if len(platform.updates) != 1 || platform.updates[0] != 5440 {
		t.Errorf("pushes = %v, want [5440]", platform.updates)
	}
}

func TestSyncBatchIndependence(t *testing.T) {
	platform := &stubPlatform{variants: map[int64][]easystore.Variant{42: jacketVariants(1)}}
	s := &Syncer{
		Fetcher: &stubFetcher{pages: map[string]string{
			"good": jacketPage,
			"bad":  `<html><body><p>404</p></body></html>`,
		}},
		Table:    jacketTable(t),
		Platform: platform,
	}

	results := s.SyncBatch(context.Background(), []string{"bad", "good"})
	if len(results) != 2 {
		t.Fatalf("got %d results", len(results))
	}
	if results[0].Success {
		t.Error("bad URL reported success")
	}
	if !results[1].Success {
		t.Errorf("good URL failed after bad one: %s", results[1].Error)
	}
}
