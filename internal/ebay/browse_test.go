package ebay

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"

	"dealscout/internal/testutil"
)

// testToken is the bearer value the fake token endpoint hands out.
var testToken = testutil.NewTestDataFactory(11).GenerateTestToken()

const searchBody = `{
	"itemSummaries": [
		{"itemId": "v1|111|0", "title": "Apple iPad Air", "price": {"value": "399.99", "currency": "GBP"}},
		{"itemId": "v1|222|0", "title": "Samsung Tab S9", "price": {"value": "500.00", "currency": "GBP"}}
	],
	"total": 240
}`

// newTestClient wires a Client and its TokenSource to one test server. The
// handler sees both token and API requests; token requests hit /token.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(func() http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/token" {
				fmt.Fprintf(w, `{"access_token":%q,"expires_in":7200}`, testToken)
				return
			}
			handler(w, r)
		}
	}())
	t.Cleanup(server.Close)

	tokens := NewTokenSource(testutil.GetTestClientID(), testutil.GetTestClientSecret(), false)
	tokens.authURL = server.URL + "/token"

	client := NewClient(tokens, false)
	client.baseURL = server.URL
	return client
}

func TestSearchRequestShape(t *testing.T) {
	var gotPath, gotQuery, gotFilter, gotAuth, gotMarketplace string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("q")
		gotFilter = r.URL.Query().Get("filter")
		gotAuth = r.Header.Get("Authorization")
		gotMarketplace = r.Header.Get("X-EBAY-C-MARKETPLACE-ID")
		fmt.Fprint(w, searchBody)
	})

	envelope, err := client.Search(context.Background(), "ipad air", 50, 0, ModeDeals)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if gotPath != "/buy/browse/v1/item_summary/search" {
		t.Errorf("path = %q", gotPath)
	}
	if gotQuery != "ipad air" {
		t.Errorf("q = %q", gotQuery)
	}
	if gotFilter != "" {
		t.Errorf("deals mode set a buying-option filter: %q", gotFilter)
	}
	if gotAuth != "Bearer "+testToken {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotMarketplace != marketplaceID {
		t.Errorf("marketplace header = %q", gotMarketplace)
	}
	if len(envelope.ItemSummaries) != 2 || envelope.Total != 240 {
		t.Errorf("decoded %d items, total %d", len(envelope.ItemSummaries), envelope.Total)
	}
}

func TestSearchAuctionsAddsBuyingOptionFilter(t *testing.T) {
	var gotFilter string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotFilter = r.URL.Query().Get("filter")
		fmt.Fprint(w, `{"itemSummaries": [], "total": 0}`)
	})

	if _, err := client.Search(context.Background(), "watch", 20, 0, ModeAuctions); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if gotFilter != "buyingOptions:{AUCTION}" {
		t.Errorf("filter = %q", gotFilter)
	}
}

func TestSearchDecodesGzipBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		gz := gzip.NewWriter(&buf)
		gz.Write([]byte(searchBody))
		gz.Close()
		w.Header().Set("Content-Encoding", "gzip")
		w.Write(buf.Bytes())
	})

	envelope, err := client.Search(context.Background(), "ipad", 50, 0, ModeDeals)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(envelope.ItemSummaries) != 2 {
		t.Errorf("decoded %d items from gzip body, want 2", len(envelope.ItemSummaries))
	}
}

func TestSearchDecodesBrotliBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		br := brotli.NewWriter(&buf)
		br.Write([]byte(searchBody))
		br.Close()
		w.Header().Set("Content-Encoding", "br")
		w.Write(buf.Bytes())
	})

	envelope, err := client.Search(context.Background(), "ipad", 50, 0, ModeDeals)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(envelope.ItemSummaries) != 2 {
		t.Errorf("decoded %d items from brotli body, want 2", len(envelope.ItemSummaries))
	}
}

func TestSearchErrorStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":[{"message":"internal"}]}`, http.StatusInternalServerError)
	})

	_, err := client.Search(context.Background(), "ipad", 50, 0, ModeDeals)
	if err == nil {
		t.Fatalf("expected error on 500 response")
	}
	if !strings.Contains(err.Error(), "500") {
		t.Errorf("error %q does not name the status", err)
	}
	if errors.Is(err, ErrAuth) {
		t.Errorf("API error misreported as authentication failure")
	}
}

func TestSearchTokenFailureIsErrAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/token" {
			http.Error(w, `{"error":"invalid_client"}`, http.StatusUnauthorized)
			return
		}
		t.Errorf("API endpoint reached despite failed authentication")
	}))
	t.Cleanup(server.Close)

	tokens := NewTokenSource(testutil.GetTestClientID(), "bad-secret", false)
	tokens.authURL = server.URL + "/token"
	client := NewClient(tokens, false)
	client.baseURL = server.URL

	_, err := client.Search(context.Background(), "ipad", 50, 0, ModeDeals)
	if !errors.Is(err, ErrAuth) {
		t.Errorf("err = %v, want ErrAuth", err)
	}
}

func TestDealItemsRequestShape(t *testing.T) {
	var gotPath, gotCategories string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotCategories = r.URL.Query().Get("category_ids")
		fmt.Fprint(w, `{"dealItems": [{"itemId": "v1|333|0", "title": "Deal of the day"}], "total": 1}`)
	})

	envelope, err := client.DealItems(context.Background(), "9355", 50, 0)
	if err != nil {
		t.Fatalf("DealItems: %v", err)
	}
	if gotPath != "/buy/deal/v1/deal_item" {
		t.Errorf("path = %q", gotPath)
	}
	if gotCategories != "9355" {
		t.Errorf("category_ids = %q", gotCategories)
	}
	if len(envelope.DealItems) != 1 {
		t.Errorf("decoded %d deal items, want 1", len(envelope.DealItems))
	}
}

func TestItemFetch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/buy/browse/v1/item/") {
			t.Errorf("path = %q", r.URL.Path)
		}
		fmt.Fprint(w, `{"itemId": "v1|444|0", "title": "Single listing"}`)
	})

	raw, err := client.Item(context.Background(), "v1|444|0")
	if err != nil {
		t.Fatalf("Item: %v", err)
	}
	if raw.ItemID != "v1|444|0" || raw.Title != "Single listing" {
		t.Errorf("raw = %+v", raw)
	}

	if _, err := client.Item(context.Background(), ""); err == nil {
		t.Errorf("expected error for empty item id")
	}
}

func TestSearchContextCancellation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		fmt.Fprint(w, searchBody)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := client.Search(ctx, "ipad", 50, 0, ModeDeals); err == nil {
		t.Fatalf("expected error from cancelled context")
	}
}

func TestAvailable(t *testing.T) {
	if (&Client{}).Available() {
		t.Errorf("client without token source reported available")
	}
	var nilClient *Client
	if nilClient.Available() {
		t.Errorf("nil client reported available")
	}
	client := NewClient(NewTokenSource("id", "secret", false), false)
	if !client.Available() {
		t.Errorf("configured client reported unavailable")
	}
}
