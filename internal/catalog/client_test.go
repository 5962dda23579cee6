package catalog

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/nithinv16/dukaaon-admin-console-sub005/internal/config"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func TestGetProductsAllWithRetry(t *testing.T) {
	attempt := 0

	cfg, _ := config.Load()
	cfg.DukaaonAPIToken = "test"
	cfg.DukaaonAPIBaseURL = "https://example.test/api/v1"
	cfg.DukaaonRateLimit = 1000

	client := NewClient(cfg)
	client.httpClient = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if r.URL.Path != "/api/v1/admin/products/scroll" {
				t.Fatalf("unexpected path %s", r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer test" {
				t.Fatalf("unexpected auth header %q", got)
			}
			attempt++
			if attempt == 1 {
				return &http.Response{
					StatusCode: http.StatusTooManyRequests,
					Body:       io.NopCloser(strings.NewReader(`{"error":"slow down"}`)),
					Header:     make(http.Header),
				}, nil
			}

			payload := map[string]any{"success": true, "data": map[string]any{"products": []map[string]any{}, "scrollId": nil}}
			if attempt == 2 {
				payload = map[string]any{"success": true, "data": map[string]any{"products": []map[string]any{{"id": 1, "name": "Parle-G Biscuit 100g", "barcode": "8901030865278", "mrp": 12.0}}, "scrollId": "abc"}}
			}
			if attempt == 3 {
				payload = map[string]any{"success": true, "data": map[string]any{"products": []map[string]any{{"id": 2, "name": "Tata Salt 1kg"}}, "scrollId": nil}}
			}
			blob, _ := json.Marshal(payload)
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader(string(blob))),
				Header:     make(http.Header),
			}, nil
		}),
	}

	products, err := client.GetProductsAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(products) != 2 {
		t.Fatalf("len=%d", len(products))
	}
	if products[0].ID != 1 || products[0].Barcode == nil || *products[0].Barcode != "8901030865278" {
		t.Fatalf("unexpected first product: %+v", products[0])
	}
	if products[0].MRP == nil || *products[0].MRP != 12 {
		t.Fatalf("unexpected mrp: %+v", products[0].MRP)
	}
}

func TestGetProductsUpdatedSinceParam(t *testing.T) {
	cfg, _ := config.Load()
	cfg.DukaaonAPIToken = "test"
	cfg.DukaaonAPIBaseURL = "https://example.test/api/v1"
	cfg.DukaaonRateLimit = 1000

	client := NewClient(cfg)
	client.httpClient = &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			if got := r.URL.Query().Get("updatedHours"); got != "24" {
				t.Fatalf("unexpected updatedHours %q", got)
			}
			blob, _ := json.Marshal(map[string]any{"success": true, "data": map[string]any{"products": []map[string]any{}, "scrollId": nil}})
			return &http.Response{
				StatusCode: http.StatusOK,
				Body:       io.NopCloser(strings.NewReader(string(blob))),
				Header:     make(http.Header),
			}, nil
		}),
	}

	if _, err := client.GetProductsUpdatedSince(context.Background(), 24); err != nil {
		t.Fatal(err)
	}

	if _, err := client.GetProductsUpdatedSince(context.Background(), 0); err == nil {
		t.Fatal("zero lookback must be rejected")
	}
}
