package normalize

import (
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"dealscout/internal/model"
)

// Rejection rules. Each failed listing is attributable to exactly one of
// these, so callers can count rejections per rule.
var (
	ErrMissingID      = errors.New("missing item id")
	ErrMissingTitle   = errors.New("missing title")
	ErrMissingPrice   = errors.New("missing price")
	ErrMissingImage   = errors.New("missing image url")
	ErrNoValidLink    = errors.New("no valid listing link")
	ErrMissingEndTime = errors.New("missing auction end time")
)

var imageSizeToken = regexp.MustCompile(`/s-l\d+(\.\w+)`)

// Normalizer converts raw item summaries into Deals and Auctions. Verbose
// controls per-item rejection logging.
type Normalizer struct {
	Verbose bool
}

// ToDeal maps a raw listing to a Deal. A nil Deal with a rule error means the
// listing failed a normalization invariant; the batch is never aborted.
func (n *Normalizer) ToDeal(raw *model.RawListing) (*model.Deal, error) {
	if strings.TrimSpace(raw.ItemID) == "" {
		return nil, n.reject(raw, ErrMissingID)
	}
	if strings.TrimSpace(raw.Title) == "" {
		return nil, n.reject(raw, ErrMissingTitle)
	}
	if raw.Price == nil || strings.TrimSpace(raw.Price.Value) == "" || strings.TrimSpace(raw.Price.Currency) == "" {
		return nil, n.reject(raw, ErrMissingPrice)
	}
	if raw.Image == nil || strings.TrimSpace(raw.Image.ImageURL) == "" {
		return nil, n.reject(raw, ErrMissingImage)
	}

	link := pickLink(
		raw.DealAffiliateWebURL,
		raw.ItemAffiliateWebURL,
		raw.ItemWebURL,
		raw.DealWebURL,
		raw.ItemHref,
	)
	if link == "" {
		return nil, n.reject(raw, ErrNoValidLink)
	}

	discount, originalPrice := ResolveDiscount(
		raw.Price.Value,
		raw.Price.Currency,
		raw.MarketingPrice,
	)

	deal := &model.Deal{
		ID:               raw.ItemID,
		Title:            raw.Title,
		Price:            fmt.Sprintf("%s %s", raw.Price.Currency, raw.Price.Value),
		OriginalPrice:    originalPrice,
		ImageURL:         HighResImageURL(raw.Image.ImageURL),
		ListingURL:       link,
		PostedDate:       postedDate(raw),
		DeliveryWindow:   deliveryWindow(raw.ShippingOptions),
		Category:         firstCategory(raw.Categories),
		Condition:        raw.Condition,
		SellerRating:     FormatSellerRating(raw.Seller),
		ShortDescription: raw.ShortDescription,
		WatchCount:       raw.WatchCount,
		BuyingOption:     "Buy It Now",
	}
	if discount > 0 {
		deal.DiscountPercentage = fmt.Sprintf("%d", discount)
	}
	return deal, nil
}

// ToAuction maps a raw listing to an Auction. The current-bid price plays the
// price role; an end time is additionally required.
func (n *Normalizer) ToAuction(raw *model.RawListing) (*model.Auction, error) {
	if strings.TrimSpace(raw.ItemID) == "" {
		return nil, n.reject(raw, ErrMissingID)
	}
	if strings.TrimSpace(raw.Title) == "" {
		return nil, n.reject(raw, ErrMissingTitle)
	}
	if raw.Price == nil || strings.TrimSpace(raw.Price.Value) == "" || strings.TrimSpace(raw.Price.Currency) == "" {
		return nil, n.reject(raw, ErrMissingPrice)
	}
	if raw.Image == nil || strings.TrimSpace(raw.Image.ImageURL) == "" {
		return nil, n.reject(raw, ErrMissingImage)
	}

	endTime := raw.ItemEndDate
	if strings.TrimSpace(endTime) == "" {
		endTime = raw.DealEndDate
	}
	if strings.TrimSpace(endTime) == "" {
		return nil, n.reject(raw, ErrMissingEndTime)
	}

	link := pickLink(raw.ItemAffiliateWebURL, raw.ItemWebURL, raw.ItemHref)
	if link == "" {
		return nil, n.reject(raw, ErrNoValidLink)
	}

	return &model.Auction{
		ID:               raw.ItemID,
		Title:            raw.Title,
		CurrentBid:       fmt.Sprintf("%s %s", raw.Price.Currency, raw.Price.Value),
		EndTime:          endTime,
		ImageURL:         HighResImageURL(raw.Image.ImageURL),
		ListingURL:       link,
		DeliveryWindow:   deliveryWindow(raw.ShippingOptions),
		Condition:        raw.Condition,
		SellerRating:     FormatSellerRating(raw.Seller),
		ShortDescription: raw.ShortDescription,
		WatchCount:       raw.WatchCount,
	}, nil
}

// Deals maps a batch, dropping rejected listings while preserving survivor
// order. Listings carrying item-level API errors are skipped.
func (n *Normalizer) Deals(raws []model.RawListing) []model.Deal {
	deals := make([]model.Deal, 0, len(raws))
	for i := range raws {
		if len(raws[i].Errors) > 0 {
			continue
		}
		deal, err := n.ToDeal(&raws[i])
		if err != nil {
			continue
		}
		deals = append(deals, *deal)
	}
	return deals
}

// Auctions maps a batch to auctions with the same per-item independence.
func (n *Normalizer) Auctions(raws []model.RawListing) []model.Auction {
	auctions := make([]model.Auction, 0, len(raws))
	for i := range raws {
		if len(raws[i].Errors) > 0 {
			continue
		}
		auction, err := n.ToAuction(&raws[i])
		if err != nil {
			continue
		}
		auctions = append(auctions, *auction)
	}
	return auctions
}

func (n *Normalizer) reject(raw *model.RawListing, rule error) error {
	if n.Verbose {
		log.Printf("[normalize] item %q rejected: %v", raw.ItemID, rule)
	}
	return rule
}

// pickLink returns the first candidate that is a non-empty http(s) URL and is
// not a known dead-link sentinel. Candidates are passed in precedence order,
// affiliate-tagged links first.
func pickLink(candidates ...string) string {
	for _, link := range candidates {
		link = strings.TrimSpace(link)
		if link == "" {
			continue
		}
		if !strings.HasPrefix(link, "http://") && !strings.HasPrefix(link, "https://") {
			continue
		}
		if link == model.ErrorPageURL || link == model.PlaceholderURL {
			continue
		}
		return link
	}
	return ""
}

// HighResImageURL rewrites marketplace CDN image links to the large-size
// variant. Non-CDN URLs pass through unchanged.
func HighResImageURL(url string) string {
	if strings.Contains(url, "i.ebayimg.com") {
		return imageSizeToken.ReplaceAllString(url, "/s-l1600$1")
	}
	return url
}

// FormatSellerRating renders "<pct>% (<score>)" with a thousands separator in
// the score, "<pct>%" when only the percentage is known, and "" otherwise.
func FormatSellerRating(seller *model.Seller) string {
	if seller == nil || seller.FeedbackPercentage == "" {
		return ""
	}
	if seller.FeedbackScore > 0 {
		return fmt.Sprintf("%s%% (%s)", seller.FeedbackPercentage, groupThousands(seller.FeedbackScore))
	}
	return seller.FeedbackPercentage + "%"
}

func groupThousands(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

func firstCategory(categories []model.Category) string {
	if len(categories) > 0 && categories[0].CategoryName != "" {
		return categories[0].CategoryName
	}
	return "General"
}

func postedDate(raw *model.RawListing) string {
	for _, candidate := range []string{raw.ItemCreationDate, raw.DealStartDate} {
		if candidate == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339, candidate); err == nil {
			return t.Format("01/02/2006")
		}
	}
	return ""
}

func deliveryWindow(options []model.Shipping) string {
	if len(options) == 0 || options[0].EstimatedDeliveryDateRange == nil {
		return ""
	}
	r := options[0].EstimatedDeliveryDateRange
	if r.EarliestDate == "" || r.LatestDate == "" {
		return ""
	}
	earliest, err1 := time.Parse(time.RFC3339, r.EarliestDate)
	latest, err2 := time.Parse(time.RFC3339, r.LatestDate)
	if err1 != nil || err2 != nil {
		return ""
	}
	return fmt.Sprintf("%s - %s", earliest.Format("Jan 2"), latest.Format("Jan 2"))
}
