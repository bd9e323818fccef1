package easystore

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestProductVariants(t *testing.T) {
	var gotToken string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "GET" || r.URL.Path != "/products/42.json" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotToken = r.Header.Get("EasyStore-Access-Token")
		// Prices as strings, compare_at_price null on one variant, the way
		// the platform actually responds.
		io.WriteString(w, `{"product":{"id":42,"variants":[
			{"id":1,"sku":"FS-AAAA1111-BLK-S","price":"4000","compare_at_price":"5000"},
			{"id":2,"sku":"FS-AAAA1111-BLK-M","price":3000,"compare_at_price":null}
		]}}`)
	}))
	defer ts.Close()

	c := New(ts.URL, "secret-token", 5*time.Second)
	variants, err := c.ProductVariants(context.Background(), 42)
	if err != nil {
		t.Fatalf("ProductVariants: %v", err)
	}
	if gotToken != "secret-token" {
		t.Errorf("auth header = %q", gotToken)
	}
	if len(variants) != 2 {
		t.Fatalf("got %d variants, want 2", len(variants))
	}
	if variants[0].Price != 4000 || variants[0].CompareAtPrice != 5000 {
		t.Errorf("variant 0 = %+v", variants[0])
	}
	if variants[0].DiscountBase() != 5000 {
		t.Errorf("DiscountBase = %d, want compare_at_price", variants[0].DiscountBase())
	}
	// Missing compare-at falls back to price as the discount base.
	if variants[1].CompareAtPrice != 0 || variants[1].DiscountBase() != 3000 {
		t.Errorf("variant 1 = %+v base=%d", variants[1], variants[1].DiscountBase())
	}
}

func TestUpdateVariantPrice(t *testing.T) {
	var gotBody map[string]map[string]int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "PUT" || r.URL.Path != "/products/42/variants/7.json" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		io.WriteString(w, `{"variant":{"id":7,"price":"3400"}}`)
	}))
	defer ts.Close()

	c := New(ts.URL, "secret-token", 5*time.Second)
	if err := c.UpdateVariantPrice(context.Background(), 42, 7, 3400); err != nil {
		t.Fatalf("UpdateVariantPrice: %v", err)
	}
	if gotBody["variant"]["price"] != 3400 {
		t.Errorf("body = %v", gotBody)
	}
}

func TestNon2xxIsFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	}))
	defer ts.Close()

	c := New(ts.URL, "secret-token", 5*time.Second)
	if _, err := c.ProductVariants(context.Background(), 999); err == nil {
		t.Fatal("expected error for 404 response")
	}
	if err := c.UpdateVariantPrice(context.Background(), 999, 1, 100); err == nil {
		t.Fatal("expected error for 404 response")
	}
}
