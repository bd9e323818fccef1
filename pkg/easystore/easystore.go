// Package easystore is a minimal client for the target platform's product
// API: list a product's variants, update a variant's price. Every call is a
// live request; nothing is cached, so price computation always starts from
// the platform's current state.
package easystore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"
)

const authHeader = "EasyStore-Access-Token"

// Variant is one purchasable variant as reported by the platform.
// CompareAtPrice is 0 when the platform stores none; callers fall back to
// Price as the discount base.
type Variant struct {
	ID             int64
	SKU            string
	Price          int
	CompareAtPrice int
}

// DiscountBase is the price the discount is computed from.
func (v Variant) DiscountBase() int {
	if v.CompareAtPrice > 0 {
		return v.CompareAtPrice
	}
	return v.Price
}

type Client struct {
	apiBase string
	token   string
	http    *retryablehttp.Client
}

// New builds a client for an API base like
// https://<store>.easy.co/api/3.0 with a static access token. The timeout
// applies per call, retries included.
func New(apiBase, token string, timeout time.Duration) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.Logger = nil
	rc.HTTPClient.Timeout = timeout
	return &Client{
		apiBase: strings.TrimRight(apiBase, "/"),
		token:   token,
		http:    rc,
	}
}

// ProductVariants fetches the full live variant list of a product via
// GET /products/{product_id}.json.
func (c *Client) ProductVariants(ctx context.Context, productID int64) ([]Variant, error) {
	body, err := c.do(ctx, "GET", fmt.Sprintf("%s/products/%d.json", c.apiBase, productID), nil)
	if err != nil {
		return nil, err
	}

	var variants []Variant
	for _, v := range gjson.GetBytes(body, "product.variants").Array() {
		variants = append(variants, Variant{
			ID:  v.Get("id").Int(),
			SKU: v.Get("sku").String(),
			// The platform sometimes serializes prices as strings;
			// gjson coerces either representation.
			Price:          int(v.Get("price").Float()),
			CompareAtPrice: int(v.Get("compare_at_price").Float()),
		})
	}
	return variants, nil
}

// UpdateVariantPrice pushes a new price via
// PUT /products/{product_id}/variants/{variant_id}.json.
func (c *Client) UpdateVariantPrice(ctx context.Context, productID, variantID int64, price int) error {
	payload, err := json.Marshal(map[string]map[string]int{
		"variant": {"price": price},
	})
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/products/%d/variants/%d.json", c.apiBase, productID, variantID)
	_, err = c.do(ctx, "PUT", url, payload)
	return err
}

// do sends one authenticated request and returns the body. Any non-2xx
// status is that call's failure.
func (c *Client) do(ctx context.Context, method, url string, body []byte) ([]byte, error) {
	var payload interface{}
	if body != nil {
		payload = body
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, url, payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set(authHeader, c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s %s: HTTP %d", method, url, resp.StatusCode)
	}
	return respBody, nil
}
