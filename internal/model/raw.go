package model

// RawListing mirrors the item-summary record shape shared by the Browse API
// search response and the Deal API. Fields the core never reads are omitted.
type RawListing struct {
	ItemID               string      `json:"itemId"`
	Title                string      `json:"title"`
	ItemHref             string      `json:"itemHref,omitempty"`
	ItemWebURL           string      `json:"itemWebUrl,omitempty"`
	DealAffiliateWebURL  string      `json:"dealAffiliateWebUrl,omitempty"`
	ItemAffiliateWebURL  string      `json:"itemAffiliateWebUrl,omitempty"`
	DealWebURL           string      `json:"dealWebUrl,omitempty"`
	Image                *Image      `json:"image,omitempty"`
	Price                *Money      `json:"price,omitempty"`
	ItemEndDate          string      `json:"itemEndDate,omitempty"`
	Condition            string      `json:"condition,omitempty"`
	Seller               *Seller     `json:"seller,omitempty"`
	BuyingOptions        []string    `json:"buyingOptions,omitempty"`
	Categories           []Category  `json:"categories,omitempty"`
	MarketingPrice       *Marketing  `json:"marketingPrice,omitempty"`
	ShippingOptions      []Shipping  `json:"shippingOptions,omitempty"`
	ItemCreationDate     string      `json:"itemCreationDate,omitempty"`
	DealStartDate        string      `json:"dealStartDate,omitempty"`
	DealEndDate          string      `json:"dealEndDate,omitempty"`
	ShortDescription     string      `json:"shortDescription,omitempty"`
	WatchCount           int         `json:"watchCount,omitempty"`
	Errors               []APIError  `json:"errors,omitempty"`
}

// Money is a currency-tagged amount. The upstream API sends amounts as strings.
type Money struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

// Image holds the listing's primary image reference.
type Image struct {
	ImageURL string `json:"imageUrl"`
}

// Seller carries the feedback fields used for the trust score.
type Seller struct {
	Username           string `json:"username,omitempty"`
	FeedbackPercentage string `json:"feedbackPercentage,omitempty"`
	FeedbackScore      int    `json:"feedbackScore,omitempty"`
}

// Category is one entry of the listing's category list.
type Category struct {
	CategoryID   string `json:"categoryId"`
	CategoryName string `json:"categoryName,omitempty"`
}

// Marketing is the marketing-price block: the declared original price and
// discount for promoted listings.
type Marketing struct {
	OriginalPrice      *Money `json:"originalPrice,omitempty"`
	DiscountPercentage string `json:"discountPercentage,omitempty"`
	DiscountAmount     *Money `json:"discountAmount,omitempty"`
}

// Shipping is one shipping option with its delivery estimate.
type Shipping struct {
	ShippingCostType            string         `json:"shippingCostType,omitempty"`
	ShippingCost                *Money         `json:"shippingCost,omitempty"`
	EstimatedDeliveryDateRange  *DeliveryRange `json:"estimatedDeliveryDateRange,omitempty"`
}

// DeliveryRange bounds the estimated delivery window.
type DeliveryRange struct {
	EarliestDate string `json:"earliestDate,omitempty"`
	LatestDate   string `json:"latestDate,omitempty"`
}

// APIError is an upstream error entry, attached either to the envelope or to a
// single item.
type APIError struct {
	ErrorID     int    `json:"errorId,omitempty"`
	Category    string `json:"category,omitempty"`
	Message     string `json:"message,omitempty"`
	LongMessage string `json:"longMessage,omitempty"`
}

// SearchEnvelope is the paginated Browse API search response.
type SearchEnvelope struct {
	ItemSummaries []RawListing `json:"itemSummaries,omitempty"`
	Total         int          `json:"total,omitempty"`
	Errors        []APIError   `json:"errors,omitempty"`
	Warnings      []APIError   `json:"warnings,omitempty"`
}

// DealEnvelope is the Deal API response used by the homepage fallback.
type DealEnvelope struct {
	DealItems []RawListing `json:"dealItems,omitempty"`
	Total     int          `json:"total,omitempty"`
	Next      string       `json:"next,omitempty"`
	Errors    []APIError   `json:"errors,omitempty"`
}

// IsAuction reports whether the listing carries the auction buying option.
func (r *RawListing) IsAuction() bool {
	for _, opt := range r.BuyingOptions {
		if opt == BuyingOptionAuction {
			return true
		}
	}
	return false
}
