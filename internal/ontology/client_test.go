package ontology

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestLoadAllPagesPagination(t *testing.T) {
	const pageSize = 2
	var requests []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-token" {
			t.Errorf("Unexpected Authorization header: %s", auth)
		}
		if r.URL.Query().Get("include_type_info") != "true" {
			t.Error("Expected include_type_info=true")
		}
		requests = append(requests, r.URL.Query().Get("search_after"))

		var resp queryResponse
		switch len(requests) {
		case 1:
			resp.Entries = []Entry{{"number": "M001"}, {"number": "M002"}}
			resp.SearchAfter = []interface{}{"M002"}
		case 2:
			// 末页：条数不足 pageSize
			resp.Entries = []Entry{{"number": "M003"}}
		default:
			t.Error("Unexpected extra page request")
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(server.URL, "supplychain_hd0202", pageSize, 5*time.Second, zap.NewNop())
	entries, err := client.LoadAllPages(context.Background(), "test-token", "supplychain_hd0202_material")
	if err != nil {
		t.Fatalf("LoadAllPages failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	if entries[2].GetString("number") != "M003" {
		t.Errorf("Expected M003 last, got %s", entries[2].GetString("number"))
	}

	if len(requests) != 2 {
		t.Fatalf("Expected 2 page requests, got %d", len(requests))
	}
	if requests[0] != "" {
		t.Errorf("First page should have no cursor, got %s", requests[0])
	}
	if requests[1] != `["M002"]` {
		t.Errorf("Expected cursor [\"M002\"], got %s", requests[1])
	}
}

func TestLoadAllPagesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "supplychain_hd0202", 10, 5*time.Second, zap.NewNop())
	if _, err := client.LoadAllPages(context.Background(), "t", "supplychain_hd0202_material"); err == nil {
		t.Fatal("Expected error on server failure")
	}
}

func TestEntryGetters(t *testing.T) {
	e := Entry{
		"number":     "M001",
		"stock":      float64(42),
		"stock_str":  "12.5",
		"empty":      "",
		"null_field": nil,
		"priority":   json.Number("3"),
	}

	if got := e.GetString("missing", "number"); got != "M001" {
		t.Errorf("Expected M001, got %s", got)
	}
	if got := e.GetString("empty", "number"); got != "M001" {
		t.Errorf("Expected fallback past empty string, got %s", got)
	}
	if got := e.GetFloat("stock"); got != 42 {
		t.Errorf("Expected 42, got %v", got)
	}
	if got := e.GetFloat("stock_str"); got != 12.5 {
		t.Errorf("Expected 12.5, got %v", got)
	}
	if got := e.GetFloat("null_field", "stock"); got != 42 {
		t.Errorf("Expected fallback past nil, got %v", got)
	}
	if got := e.GetInt("priority"); got != 3 {
		t.Errorf("Expected 3, got %d", got)
	}
	if got := e.GetFloat("missing"); got != 0 {
		t.Errorf("Expected 0 for missing, got %v", got)
	}
}
