package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"dealscout/internal/model"
)

// EscapeCSVCell protects against CSV formula injection by escaping cells that
// start with characters spreadsheets treat as formula indicators. Listing
// titles are attacker-controlled text.
func EscapeCSVCell(value string) string {
	if value == "" {
		return value
	}

	switch value[0] {
	case '=', '+', '-', '@':
		return "'" + value
	}
	if strings.HasPrefix(value, "|") || strings.HasPrefix(value, "%") ||
		strings.HasPrefix(value, "\t") || strings.HasPrefix(value, "\r") ||
		strings.HasPrefix(value, "\n") {
		return "'" + value
	}
	return value
}

// EscapeCSVRow escapes every cell in a row.
func EscapeCSVRow(row []string) []string {
	escaped := make([]string, len(row))
	for i, cell := range row {
		escaped[i] = EscapeCSVCell(cell)
	}
	return escaped
}

var dealHeader = []string{
	"id", "title", "price", "original_price", "discount_pct",
	"condition", "seller_rating", "watch_count", "category", "listing_url",
}

// WriteDealsCSV exports ranked deals as CSV, one row per deal in ranking
// order.
func WriteDealsCSV(w io.Writer, deals []model.Deal) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(dealHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range deals {
		d := &deals[i]
		row := []string{
			d.ID,
			d.Title,
			d.Price,
			d.OriginalPrice,
			d.DiscountPercentage,
			d.Condition,
			d.SellerRating,
			strconv.Itoa(d.WatchCount),
			d.Category,
			d.ListingURL,
		}
		if err := cw.Write(EscapeCSVRow(row)); err != nil {
			return fmt.Errorf("write deal %s: %w", d.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

var auctionHeader = []string{
	"id", "title", "current_bid", "end_time", "condition",
	"seller_rating", "watch_count", "listing_url",
}

// WriteAuctionsCSV exports auctions as CSV in their display order.
func WriteAuctionsCSV(w io.Writer, auctions []model.Auction) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(auctionHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range auctions {
		a := &auctions[i]
		row := []string{
			a.ID,
			a.Title,
			a.CurrentBid,
			a.EndTime,
			a.Condition,
			a.SellerRating,
			strconv.Itoa(a.WatchCount),
			a.ListingURL,
		}
		if err := cw.Write(EscapeCSVRow(row)); err != nil {
			return fmt.Errorf("write auction %s: %w", a.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
