package ranker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"dealscout/internal/model"
)

// stubService returns a canned response or error without a network hop.
type stubService struct {
	result []model.Deal
	err    error
}

func (s *stubService) Rank(ctx context.Context, deals []model.Deal, userQuery string) ([]model.Deal, error) {
	return s.result, s.err
}

func candidates() []model.Deal {
	return []model.Deal{
		{ID: "1", Title: "iPad Air", Price: "GBP 399.99", Condition: "New", SellerRating: "99.5% (2,500)"},
		{ID: "2", Title: "Galaxy Tab", Price: "GBP 299.99", Condition: "Used", WatchCount: 12},
		{ID: "3", Title: "Surface Go", Price: "GBP 349.99", Category: "Tablets"},
	}
}

func ids(deals []model.Deal) []string {
	out := make([]string, len(deals))
	for i := range deals {
		out[i] = deals[i].ID
	}
	return out
}

func TestApplyNilServiceReturnsInput(t *testing.T) {
	deals := candidates()
	got := Apply(context.Background(), nil, deals, "")
	if len(got) != 3 || got[0].ID != "1" {
		t.Errorf("nil service changed the result: %v", ids(got))
	}
}

func TestApplyServiceErrorKeepsOriginalOrder(t *testing.T) {
	deals := candidates()
	svc := &stubService{err: fmt.Errorf("upstream timeout")}
	got := Apply(context.Background(), svc, deals, "tablet")
	if len(got) != 3 {
		t.Fatalf("got %d deals, want 3", len(got))
	}
	for i, want := range []string{"1", "2", "3"} {
		if got[i].ID != want {
			t.Fatalf("order after failure = %v, want input order", ids(got))
		}
	}
}

func TestApplyDropsUnknownIDs(t *testing.T) {
	svc := &stubService{result: []model.Deal{
		{ID: "3", Title: "Surface Go"},
		{ID: "999", Title: "injected"},
		{ID: "1", Title: "iPad Air"},
	}}
	got := Apply(context.Background(), svc, candidates(), "")
	if len(got) != 2 || got[0].ID != "3" || got[1].ID != "1" {
		t.Errorf("result = %v, want [3 1]", ids(got))
	}
}

func TestApplyRestoresStrippedFields(t *testing.T) {
	// The service reorders but returns bare id/title records.
	svc := &stubService{result: []model.Deal{
		{ID: "2", Title: "Galaxy Tab"},
		{ID: "1", Title: "iPad Air"},
	}}
	got := Apply(context.Background(), svc, candidates(), "")
	if len(got) != 2 {
		t.Fatalf("got %d deals, want 2", len(got))
	}
	if got[0].Price != "GBP 299.99" || got[0].WatchCount != 12 {
		t.Errorf("stripped fields not restored: %+v", got[0])
	}
	if got[1].SellerRating != "99.5% (2,500)" || got[1].Condition != "New" {
		t.Errorf("stripped fields not restored: %+v", got[1])
	}
}

func TestApplyAllowsServiceFiltering(t *testing.T) {
	// Returning a subset is within contract.
	svc := &stubService{result: []model.Deal{{ID: "1"}}}
	got := Apply(context.Background(), svc, candidates(), "")
	if len(got) != 1 || got[0].ID != "1" || got[0].Title != "iPad Air" {
		t.Errorf("subset result mishandled: %v", ids(got))
	}
}

func TestApplyEmptyInput(t *testing.T) {
	svc := &stubService{result: candidates()}
	if got := Apply(context.Background(), svc, nil, ""); len(got) != 0 {
		t.Errorf("empty input produced %d deals", len(got))
	}
}

func TestClientPostsAndDecodes(t *testing.T) {
	var gotQuery string
	var gotCount int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rankRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		gotQuery = req.UserQuery
		gotCount = len(req.Deals)
		fmt.Fprint(w, `{"rankedDeals":[{"id":"2"},{"id":"1"}]}`)
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL)
	ranked, err := client.Rank(context.Background(), candidates(), "tablet")
	if err != nil {
		t.Fatalf("Rank: %v", err)
	}
	if gotQuery != "tablet" || gotCount != 3 {
		t.Errorf("request carried query %q with %d deals", gotQuery, gotCount)
	}
	if len(ranked) != 2 || ranked[0].ID != "2" {
		t.Errorf("ranked = %v", ids(ranked))
	}
}

func TestClientErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	client := NewClient(server.URL)
	if _, err := client.Rank(context.Background(), candidates(), ""); err == nil {
		t.Fatalf("expected error on 503 response")
	}
}

func TestNewClientEmptyEndpoint(t *testing.T) {
	client := NewClient("")
	if client != nil {
		t.Fatalf("empty endpoint should yield nil client")
	}
	if _, err := client.Rank(context.Background(), candidates(), ""); err == nil {
		t.Errorf("nil client Rank should error")
	}
}
