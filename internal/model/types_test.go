package model

import (
	"testing"
	"time"
)

func TestDiscountValue(t *testing.T) {
	tests := []struct {
		pct  string
		want int
	}{
		{"", 0},
		{"38", 38},
		{"0", 0},
		{"-5", 0},
		{"half off", 0},
	}
	for _, tt := range tests {
		d := Deal{DiscountPercentage: tt.pct}
		if got := d.DiscountValue(); got != tt.want {
			t.Errorf("DiscountValue(%q) = %d, want %d", tt.pct, got, tt.want)
		}
	}
}

func TestPriceAmounts(t *testing.T) {
	d := Deal{Price: "GBP 249.99", OriginalPrice: "GBP 399.99"}
	if got := d.PriceAmount(); got != 249.99 {
		t.Errorf("PriceAmount = %v", got)
	}
	if got := d.OriginalPriceAmount(); got != 399.99 {
		t.Errorf("OriginalPriceAmount = %v", got)
	}
	if got := d.Saving(); got != 150 {
		t.Errorf("Saving = %v", got)
	}

	noOriginal := Deal{Price: "GBP 25.00"}
	if got := noOriginal.Saving(); got != 0 {
		t.Errorf("Saving without original = %v", got)
	}

	inverted := Deal{Price: "GBP 50.00", OriginalPrice: "GBP 30.00"}
	if got := inverted.Saving(); got != 0 {
		t.Errorf("Saving with original below current = %v", got)
	}
}

func TestAmountOfMalformedPrices(t *testing.T) {
	for _, price := range []string{"", "free", "GBP", "GBP abc"} {
		d := Deal{Price: price}
		if got := d.PriceAmount(); got != 0 {
			t.Errorf("PriceAmount(%q) = %v, want 0", price, got)
		}
	}
}

func TestFormatPrice(t *testing.T) {
	if got := FormatPrice("GBP", 399.9); got != "GBP 399.90" {
		t.Errorf("FormatPrice = %q", got)
	}
	if got := FormatPrice("USD", 100); got != "USD 100.00" {
		t.Errorf("FormatPrice = %q", got)
	}
}

func TestAuctionEndsAt(t *testing.T) {
	a := Auction{EndTime: "2026-09-05T10:00:00Z"}
	end, err := a.EndsAt()
	if err != nil {
		t.Fatalf("EndsAt: %v", err)
	}
	want := time.Date(2026, 9, 5, 10, 0, 0, 0, time.UTC)
	if !end.Equal(want) {
		t.Errorf("EndsAt = %v, want %v", end, want)
	}

	bad := Auction{EndTime: "tomorrow"}
	if _, err := bad.EndsAt(); err == nil {
		t.Errorf("EndsAt accepted unparseable time")
	}
}

func TestIsAuction(t *testing.T) {
	auction := RawListing{BuyingOptions: []string{BuyingOptionFixedPrice, BuyingOptionAuction}}
	if !auction.IsAuction() {
		t.Errorf("listing with AUCTION option not detected")
	}
	fixed := RawListing{BuyingOptions: []string{BuyingOptionFixedPrice}}
	if fixed.IsAuction() {
		t.Errorf("fixed-price listing detected as auction")
	}
	none := RawListing{}
	if none.IsAuction() {
		t.Errorf("empty buying options detected as auction")
	}
}
