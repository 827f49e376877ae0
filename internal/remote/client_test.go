package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sandevgo/drambot/internal/core"
)

func TestClient_ListReviews(t *testing.T) {
	var gotPath, gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.RequestURI()
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]map[string]any{
			{
				"id":        "rev-17",
				"name":      "Bunnahabhain 12",
				"region":    "Islay",
				"rating":    89,
				"body":      "<p>Unpeated Islay with a <strong>nutty</strong> sherry core.</p>",
				"updatedAt": "2025-11-02T09:30:00Z",
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok-123")
	got, err := c.ListReviews(context.Background(), 5)
	if err != nil {
		t.Fatalf("ListReviews failed: %v", err)
	}

	if gotPath != "/api/reviews?limit=5" {
		t.Errorf("path = %s", gotPath)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("Authorization = %q", gotAuth)
	}

	if len(got) != 1 {
		t.Fatalf("got %d highlights", len(got))
	}
	h := got[0]
	if h.ID != "rev-17" || h.Name != "Bunnahabhain 12" {
		t.Errorf("highlight = %+v", h)
	}
	if h.Summary != "Unpeated Islay with a nutty sherry core." {
		t.Errorf("Summary = %q, want flattened rich text", h.Summary)
	}
	if h.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not parsed")
	}
}

func TestClient_NoTokenMeansNoAuthHeader(t *testing.T) {
	var sawAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawAuth = r.Header["Authorization"]
		json.NewEncoder(w).Encode([]map[string]any{})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	if _, err := c.ListReviews(context.Background(), 3); err != nil {
		t.Fatalf("ListReviews failed: %v", err)
	}
	if sawAuth {
		t.Error("Authorization header sent without a token")
	}
}

func TestClient_CreateReview(t *testing.T) {
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"id": "rev-42", "name": gotBody["name"], "rating": gotBody["rating"],
		})
	}))
	defer srv.Close()

	rec := core.Record{
		Name:       "Ledaig 10",
		Distillery: "Tobermory",
		Region:     "Islands",
		Rating:     88,
		Notes:      []string{"farmyard peat"},
		Story:      "Holiday find.",
	}

	c := NewClient(srv.URL, "tok")
	h, err := c.CreateReview(context.Background(), rec)
	if err != nil {
		t.Fatalf("CreateReview failed: %v", err)
	}
	if h.ID != "rev-42" {
		t.Errorf("ID = %q, want server-assigned id", h.ID)
	}
	if gotBody["name"] != "Ledaig 10" || gotBody["body"] != "Holiday find." {
		t.Errorf("posted body = %v", gotBody)
	}
}

func TestClient_DeleteReview(t *testing.T) {
	var gotPath, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotMethod = r.Method
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok")
	if err := c.DeleteReview(context.Background(), "rev 7"); err != nil {
		t.Fatalf("DeleteReview failed: %v", err)
	}
	if gotMethod != http.MethodDelete {
		t.Errorf("method = %s", gotMethod)
	}
	if gotPath != "/api/reviews/rev%207" {
		t.Errorf("path = %s, want escaped id", gotPath)
	}
}

func TestClient_ErrorBodySurfacesAsRequestError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]any{"error": "token expired"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "old")
	_, err := c.ListReviews(context.Background(), 1)

	var rerr *core.RequestError
	if !errors.As(err, &rerr) {
		t.Fatalf("error = %v, want RequestError", err)
	}
	if rerr.StatusCode != http.StatusForbidden || rerr.Message != "token expired" {
		t.Errorf("RequestError = %+v", rerr)
	}
}
