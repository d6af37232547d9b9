package testutil

import (
	"fmt"
	"math/rand"
	"time"

	"dealscout/internal/model"
)

// TestDataFactory provides methods for generating dynamic test data
type TestDataFactory struct {
	rand *rand.Rand
}

// NewTestDataFactory creates a new test data factory with a seeded random generator
func NewTestDataFactory(seed int64) *TestDataFactory {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &TestDataFactory{
		rand: rand.New(rand.NewSource(seed)),
	}
}

// GenerateTestToken generates a random test bearer token
func (f *TestDataFactory) GenerateTestToken() string {
	return fmt.Sprintf("test-token-%d", f.rand.Int63())
}

// GenerateItemID generates a random marketplace item id
func (f *TestDataFactory) GenerateItemID() string {
	return fmt.Sprintf("v1|%012d|0", f.rand.Int63n(1e12))
}

// GenerateListingURL generates a plausible listing URL
func (f *TestDataFactory) GenerateListingURL() string {
	return fmt.Sprintf("https://www.ebay.test/itm/%d", f.rand.Int63n(1e12))
}

// GenerateRawListing builds a complete, valid raw listing that would survive
// normalization. Tests break individual fields to exercise rejection rules.
func (f *TestDataFactory) GenerateRawListing() model.RawListing {
	titles := []string{
		"Apple iPad Air 5th Gen 64GB WiFi",
		"Sony WH-1000XM5 Wireless Headphones",
		"Dyson V11 Cordless Vacuum",
		"Samsung Galaxy S23 128GB Unlocked",
		"Nintendo Switch OLED Console",
	}
	price := float64(f.rand.Intn(90000)+1000) / 100

	return model.RawListing{
		ItemID:     f.GenerateItemID(),
		Title:      titles[f.rand.Intn(len(titles))],
		ItemWebURL: f.GenerateListingURL(),
		Image:      &model.Image{ImageURL: "https://i.ebayimg.com/images/g/test/s-l225.jpg"},
		Price:      &model.Money{Value: fmt.Sprintf("%.2f", price), Currency: "GBP"},
		Condition:  "New",
		Seller: &model.Seller{
			Username:           fmt.Sprintf("seller%d", f.rand.Intn(10000)),
			FeedbackPercentage: "99.5",
			FeedbackScore:      f.rand.Intn(50000) + 10,
		},
		BuyingOptions: []string{model.BuyingOptionFixedPrice},
	}
}

// GenerateDeal builds a valid Deal with the given discount percentage.
func (f *TestDataFactory) GenerateDeal(discountPct int) model.Deal {
	raw := f.GenerateRawListing()
	current := 80.0
	deal := model.Deal{
		ID:           raw.ItemID,
		Title:        raw.Title,
		Price:        model.FormatPrice("GBP", current),
		ImageURL:     raw.Image.ImageURL,
		ListingURL:   raw.ItemWebURL,
		Condition:    "New",
		BuyingOption: "Buy It Now",
	}
	if discountPct > 0 && discountPct < 100 {
		original := current / (1 - float64(discountPct)/100)
		deal.DiscountPercentage = fmt.Sprintf("%d", discountPct)
		deal.OriginalPrice = model.FormatPrice("GBP", original)
	}
	return deal
}

// GenerateEndTime generates an auction end time within the next few days
func (f *TestDataFactory) GenerateEndTime() string {
	hours := f.rand.Intn(96) + 1
	return time.Now().Add(time.Duration(hours) * time.Hour).UTC().Format(time.RFC3339)
}
