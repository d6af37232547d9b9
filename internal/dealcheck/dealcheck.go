package dealcheck

import (
	"regexp"
	"strings"

	"dealscout/internal/model"
)

// Rule names a filter predicate so rejections are attributable.
type Rule string

const (
	RuleAccessory     Rule = "accessory"
	RuleNotGenuine    Rule = "not_genuine"
	RuleBulkPricing   Rule = "bulk_pricing"
	RuleInflatedPrice Rule = "inflated_original_price"
	RuleNotADeal      Rule = "not_a_deal"
)

// Config tunes the filter. The implausible-price policy has no universally
// correct cutoff, so both the global multiple and the per-category caps are
// exposed as settings.
type Config struct {
	// MaxOriginalMultiple rejects a deal whose original price exceeds the
	// current price by more than this factor. Zero disables the check.
	MaxOriginalMultiple float64
	// CategoryPriceCaps caps the plausible original price per category name
	// (lower-cased). Applied in addition to the multiple.
	CategoryPriceCaps map[string]float64
	// GenericQueries are search terms too broad to activate the accessory
	// relevance check.
	GenericQueries []string
}

// DefaultConfig returns the default filter settings.
func DefaultConfig() *Config {
	return &Config{
		MaxOriginalMultiple: 20,
		CategoryPriceCaps:   nil,
		GenericQueries: []string{
			"deals", "sale", "clearance", "bargains", "offers", "discounts",
		},
	}
}

// Filter decides whether a normalized Deal represents a genuine, relevant,
// single-item discount.
type Filter struct {
	config *Config
}

// New creates a Filter, falling back to defaults when config is nil.
func New(config *Config) *Filter {
	if config == nil {
		config = DefaultConfig()
	}
	return &Filter{config: config}
}

// Check runs every predicate against the deal. It returns the first failing
// rule; predicate order does not change the outcome, only which rule gets
// reported, so cheap metadata checks run before text scans.
func (f *Filter) Check(deal *model.Deal, userQuery string) (bool, Rule) {
	if !isTrueDeal(deal) {
		return false, RuleNotADeal
	}
	if f.hasImplausibleOriginalPrice(deal) {
		return false, RuleInflatedPrice
	}

	text := strings.ToLower(deal.Title + " " + deal.ShortDescription)
	query := strings.ToLower(strings.TrimSpace(userQuery))

	if isCounterfeit(text, query) {
		return false, RuleNotGenuine
	}
	if isBulkPriced(text) {
		return false, RuleBulkPricing
	}
	if f.isSpecificQuery(query) && isAccessory(text, query) {
		return false, RuleAccessory
	}
	return true, ""
}

// Apply filters a slice of deals, preserving survivor order.
func (f *Filter) Apply(deals []model.Deal, userQuery string) []model.Deal {
	kept := make([]model.Deal, 0, len(deals))
	for i := range deals {
		if ok, _ := f.Check(&deals[i], userQuery); ok {
			kept = append(kept, deals[i])
		}
	}
	return kept
}

// isTrueDeal requires either a positive resolved discount or an original price
// strictly greater than the current price. Everything else is a regularly
// priced item, not a deal.
func isTrueDeal(deal *model.Deal) bool {
	if deal.DiscountValue() > 0 {
		return true
	}
	orig := deal.OriginalPriceAmount()
	return orig > 0 && orig > deal.PriceAmount()
}

// hasImplausibleOriginalPrice rejects deals whose original price is
// order-of-magnitude implausible, regardless of the resulting discount. The
// high discount in that case is built on a deceptive premise.
func (f *Filter) hasImplausibleOriginalPrice(deal *model.Deal) bool {
	orig := deal.OriginalPriceAmount()
	if orig <= 0 {
		return false
	}
	if cap, ok := f.config.CategoryPriceCaps[strings.ToLower(deal.Category)]; ok && orig > cap {
		return true
	}
	current := deal.PriceAmount()
	if f.config.MaxOriginalMultiple > 0 && current > 0 && orig > current*f.config.MaxOriginalMultiple {
		return true
	}
	return false
}

// isSpecificQuery reports whether the query names a concrete product. Empty
// and generic queries leave the accessory check inactive.
func (f *Filter) isSpecificQuery(query string) bool {
	if query == "" {
		return false
	}
	for _, generic := range f.config.GenericQueries {
		if query == generic {
			return false
		}
	}
	return true
}

var accessoryPhrases = []string{
	"case for", "cover for", "charger for", "cable for", "stand for",
	"mount for", "screen protector for", "skin for", "parts for",
	"for parts", "replacement part", "box only", "empty box",
	"manual only", "photo of", "image of", "digital download",
}

// accessoryWords flags listings that name an accessory outright, e.g.
// "iPad Air Smart Case". Matching is skipped when the query asks for the
// accessory itself.
var accessoryWords = regexp.MustCompile(`\b(case|cases|cover|covers|charger|chargers|cable|cables|screen protector|protector|skin|skins|stand|mount|strap|holder)\b`)

func isAccessory(text, query string) bool {
	partsQuery := strings.Contains(query, "part")
	for _, phrase := range accessoryPhrases {
		if partsQuery && strings.Contains(phrase, "part") {
			continue
		}
		if strings.Contains(text, phrase) {
			return true
		}
	}
	if m := accessoryWords.FindString(text); m != "" && !strings.Contains(query, m) {
		return true
	}
	return false
}

var counterfeitPhrases = []string{
	"replica", "inspired by", "style of", "aaa quality", "master copy",
	"custom made to resemble",
}

func isCounterfeit(text, query string) bool {
	for _, phrase := range counterfeitPhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	// "as-is for parts" counts unless the user is actually shopping for parts.
	if strings.Contains(text, "as-is for parts") && !strings.Contains(query, "parts") {
		return true
	}
	return false
}

var bulkPattern = regexp.MustCompile(`\b(pack of \d+|\d+\s*pcs|lot of \d+|wholesale bundle)\b`)

func isBulkPriced(text string) bool {
	return bulkPattern.MatchString(text)
}
