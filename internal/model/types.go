package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Known sentinel links the marketplace hands back for dead listings. A listing
// whose only link candidates resolve to one of these is unusable.
const (
	ErrorPageURL   = "https://www.ebay.com/n/error"
	PlaceholderURL = "#"
)

// BuyingOption values as reported by the Browse API.
const (
	BuyingOptionAuction    = "AUCTION"
	BuyingOptionFixedPrice = "FIXED_PRICE"
)

// Deal is a fixed-price listing that survived normalization. Price strings keep
// the "<CURRENCY> <amount>" shape the upstream API uses so they can be rendered
// without further formatting.
type Deal struct {
	ID                 string `json:"id"`
	Title              string `json:"title"`
	Price              string `json:"price"`
	OriginalPrice      string `json:"originalPrice,omitempty"`
	DiscountPercentage string `json:"discountPercentage,omitempty"` // integer 0-100 as decimal string
	ImageURL           string `json:"imageUrl"`
	ListingURL         string `json:"listingUrl"`
	PostedDate         string `json:"postedDate,omitempty"`
	DeliveryWindow     string `json:"deliveryWindow,omitempty"`
	Category           string `json:"category,omitempty"`
	Condition          string `json:"condition,omitempty"`
	SellerRating       string `json:"sellerRating,omitempty"`
	ShortDescription   string `json:"shortDescription,omitempty"`
	WatchCount         int    `json:"watchCount,omitempty"`
	BuyingOption       string `json:"buyingOption,omitempty"` // always "Buy It Now" for deals
}

// Auction is a timed listing. EndTime is required; items without one cannot be
// represented as an Auction.
type Auction struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	CurrentBid       string `json:"currentBid"`
	EndTime          string `json:"endTime"`
	ImageURL         string `json:"imageUrl"`
	ListingURL       string `json:"listingUrl"`
	DeliveryWindow   string `json:"deliveryWindow,omitempty"`
	Condition        string `json:"condition,omitempty"`
	SellerRating     string `json:"sellerRating,omitempty"`
	ShortDescription string `json:"shortDescription,omitempty"`
	WatchCount       int    `json:"watchCount,omitempty"`
}

// EndsAt parses the auction end time.
func (a *Auction) EndsAt() (time.Time, error) {
	return time.Parse(time.RFC3339, a.EndTime)
}

// DiscountValue returns the resolved discount as an integer, 0 when absent or
// unparseable.
func (d *Deal) DiscountValue() int {
	if d.DiscountPercentage == "" {
		return 0
	}
	n, err := strconv.Atoi(d.DiscountPercentage)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// PriceAmount returns the numeric component of the Deal's price string.
func (d *Deal) PriceAmount() float64 {
	return amountOf(d.Price)
}

// OriginalPriceAmount returns the numeric component of the original price, 0
// when none is known.
func (d *Deal) OriginalPriceAmount() float64 {
	return amountOf(d.OriginalPrice)
}

// Saving is the absolute monetary saving versus the original price, 0 when no
// valid original price exists.
func (d *Deal) Saving() float64 {
	orig := d.OriginalPriceAmount()
	cur := d.PriceAmount()
	if orig > cur && cur > 0 {
		return orig - cur
	}
	return 0
}

// amountOf extracts the amount from a "<CURRENCY> <amount>" price string.
func amountOf(price string) float64 {
	fields := strings.Fields(price)
	if len(fields) == 0 {
		return 0
	}
	v, err := strconv.ParseFloat(fields[len(fields)-1], 64)
	if err != nil {
		return 0
	}
	return v
}

// FormatPrice renders an amount in the upstream "<CURRENCY> <amount>" shape
// with two decimal places.
func FormatPrice(currency string, amount float64) string {
	return fmt.Sprintf("%s %.2f", currency, amount)
}
