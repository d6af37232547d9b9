package ranker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"dealscout/internal/model"
)

// Service reorders or filters a deal list. Implementations are treated as
// untrusted: the caller enforces the subset-of-input-ids contract and falls
// back to the input on any failure.
type Service interface {
	Rank(ctx context.Context, deals []model.Deal, userQuery string) ([]model.Deal, error)
}

// Client posts candidates to an external ranking endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a ranking client. An empty endpoint yields a nil client,
// which Rank treats as "service absent".
func NewClient(endpoint string) *Client {
	if endpoint == "" {
		return nil
	}
	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 45 * time.Second},
	}
}

type rankRequest struct {
	Deals     []model.Deal `json:"deals"`
	UserQuery string       `json:"userQuery,omitempty"`
}

type rankResponse struct {
	RankedDeals []model.Deal `json:"rankedDeals"`
}

// Rank submits the candidate list and decodes the ranked result. Errors are
// returned to the caller; contract enforcement lives in Apply.
func (c *Client) Rank(ctx context.Context, deals []model.Deal, userQuery string) ([]model.Deal, error) {
	if c == nil {
		return nil, fmt.Errorf("ranking service not configured")
	}

	payload, err := json.Marshal(rankRequest{Deals: deals, UserQuery: userQuery})
	if err != nil {
		return nil, fmt.Errorf("encoding rank request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating rank request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing rank request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ranking service returned status %d", resp.StatusCode)
	}

	var decoded rankResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding rank response: %w", err)
	}
	return decoded.RankedDeals, nil
}

// Apply runs the service and enforces its contract: ids not present in the
// input are discarded, and fields the service dropped are restored from the
// original record. On any failure the input comes back unchanged, in its
// original order, with the error logged for diagnostics only.
func Apply(ctx context.Context, svc Service, deals []model.Deal, userQuery string) []model.Deal {
	if svc == nil || len(deals) == 0 {
		return deals
	}

	ranked, err := svc.Rank(ctx, deals, userQuery)
	if err != nil {
		log.Printf("[ranker] ranking service failed, keeping original order: %v", err)
		return deals
	}

	byID := make(map[string]*model.Deal, len(deals))
	for i := range deals {
		byID[deals[i].ID] = &deals[i]
	}

	validated := make([]model.Deal, 0, len(ranked))
	for _, r := range ranked {
		original, ok := byID[r.ID]
		if !ok {
			log.Printf("[ranker] dropped unknown id %q from ranking response", r.ID)
			continue
		}
		validated = append(validated, restoreFields(r, original))
	}
	return validated
}

// restoreFields fills any field the service omitted back in from the original
// record, guarding against a ranker that strips data.
func restoreFields(ranked model.Deal, original *model.Deal) model.Deal {
	merged := ranked
	if merged.Title == "" {
		merged.Title = original.Title
	}
	if merged.Price == "" {
		merged.Price = original.Price
	}
	if merged.OriginalPrice == "" {
		merged.OriginalPrice = original.OriginalPrice
	}
	if merged.DiscountPercentage == "" {
		merged.DiscountPercentage = original.DiscountPercentage
	}
	if merged.ImageURL == "" {
		merged.ImageURL = original.ImageURL
	}
	if merged.ListingURL == "" {
		merged.ListingURL = original.ListingURL
	}
	if merged.PostedDate == "" {
		merged.PostedDate = original.PostedDate
	}
	if merged.DeliveryWindow == "" {
		merged.DeliveryWindow = original.DeliveryWindow
	}
	if merged.Category == "" {
		merged.Category = original.Category
	}
	if merged.Condition == "" {
		merged.Condition = original.Condition
	}
	if merged.SellerRating == "" {
		merged.SellerRating = original.SellerRating
	}
	if merged.ShortDescription == "" {
		merged.ShortDescription = original.ShortDescription
	}
	if merged.WatchCount == 0 {
		merged.WatchCount = original.WatchCount
	}
	if merged.BuyingOption == "" {
		merged.BuyingOption = original.BuyingOption
	}
	return merged
}
