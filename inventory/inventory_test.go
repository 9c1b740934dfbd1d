// ABOUTME: Tests for the inventory endpoint wrappers
// ABOUTME: Includes an end-to-end expired-token recovery scenario

package inventory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stockpilot/stockpilot-go/cache"
	"github.com/stockpilot/stockpilot-go/client"
	"github.com/stockpilot/stockpilot-go/cookies"
	"github.com/stockpilot/stockpilot-go/session"
)

func TestListProducts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Path; got != "/api/products/" {
			t.Errorf("Expected path /api/products/, got %q", got)
		}
		if got := r.URL.Query().Get("page"); got != "2" {
			t.Errorf("Expected page=2, got %q", got)
		}
		if got := r.URL.Query().Get("limit"); got != "25" {
			t.Errorf("Expected limit=25, got %q", got)
		}
		w.Write([]byte(`{
			"data":[{"id":1,"name":"Arabica Beans","sku":"COF-001","stock":42}],
			"pagination":{"page":2,"limit":25,"total":51,"total_pages":3}
		}`))
	}))
	defer server.Close()

	svc := New(client.New(server.URL, nil, 0))

	list, err := svc.ListProducts(context.Background(), 2, 25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list.Data) != 1 {
		t.Fatalf("Expected 1 product, got %d", len(list.Data))
	}
	if list.Data[0].Name != "Arabica Beans" {
		t.Errorf("Expected Arabica Beans, got %q", list.Data[0].Name)
	}
	if list.Pagination.TotalPages != 3 {
		t.Errorf("Expected 3 total pages, got %d", list.Pagination.TotalPages)
	}
}

func TestListProducts_NormalizesPageAndLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("page"); got != "1" {
			t.Errorf("Expected page normalized to 1, got %q", got)
		}
		if got := r.URL.Query().Get("limit"); got != "10" {
			t.Errorf("Expected limit normalized to 10, got %q", got)
		}
		w.Write([]byte(`{"data":[],"pagination":{"page":1,"limit":10,"total":0,"total_pages":0}}`))
	}))
	defer server.Close()

	svc := New(client.New(server.URL, nil, 0))

	if _, err := svc.ListProducts(context.Background(), 0, -5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGetProduct(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Path; got != "/api/products/7" {
			t.Errorf("Expected path /api/products/7, got %q", got)
		}
		w.Write([]byte(`{"id":7,"name":"Robusta Beans","sku":"COF-002","stock":12,
			"variants":[{"id":70,"sku":"COF-002-1KG","price":18.5,"stock":12}]}`))
	}))
	defer server.Close()

	svc := New(client.New(server.URL, nil, 0))

	p, err := svc.GetProduct(context.Background(), 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.SKU != "COF-002" {
		t.Errorf("Expected SKU COF-002, got %q", p.SKU)
	}
	if len(p.Variants) != 1 || p.Variants[0].Price != 18.5 {
		t.Errorf("Expected variant with price 18.5, got %+v", p.Variants)
	}
}

func TestListProducts_RecoversFromExpiredToken(t *testing.T) {
	var refreshCalls atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"access_token":"stale"}`))
	})
	mux.HandleFunc("GET /api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"user":{"id":7,"email":"owner@shop.test"},"role":"OWNER","current_workspace":{"id":3},"memberships":[]}`))
	})
	mux.HandleFunc("POST /api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)
		w.Write([]byte(`{"access_token":"fresh"}`))
	})
	mux.HandleFunc("GET /api/products/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"token expired"}`))
			return
		}
		w.Write([]byte(`{"data":[{"id":1,"name":"Arabica Beans","sku":"COF-001","stock":42}],
			"pagination":{"page":1,"limit":10,"total":1,"total_pages":1}}`))
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	jar, err := cookies.NewJar(server.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c := client.New(server.URL, jar.HTTPJar(), 0)
	mgr := session.NewManager(c, jar, cache.New(time.Minute), 0)

	if err := mgr.Login(context.Background(), "owner@shop.test", "secret123"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	list, err := New(c).ListProducts(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("Expected transparent recovery, got %v", err)
	}
	if len(list.Data) != 1 {
		t.Errorf("Expected 1 product after retry, got %d", len(list.Data))
	}
	if got := refreshCalls.Load(); got != 1 {
		t.Errorf("Expected 1 refresh, got %d", got)
	}
}
