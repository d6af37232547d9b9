package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"dealscout/internal/model"
)

// ResolveDiscount computes the discount percentage and the normalized original
// price string for a listing.
//
// A discount calculated from two real prices always wins over the platform's
// declared percentage: declared figures can reflect stale or promotional list
// prices. When only a declared percentage exists, the original price is
// inferred from it.
func ResolveDiscount(priceValue, currency string, marketing *model.Marketing) (int, string) {
	current, curOK := parseAmount(priceValue)

	var declaredOriginal string
	var original float64
	origOK := false
	if marketing != nil && marketing.OriginalPrice != nil {
		op := marketing.OriginalPrice
		if op.Value != "" && op.Currency != "" {
			declaredOriginal = fmt.Sprintf("%s %s", op.Currency, op.Value)
		}
		original, origOK = parseAmount(op.Value)
	}

	if curOK && origOK && current > 0 && original > current {
		discount := int(math.Round((original - current) / original * 100))
		if declaredOriginal == "" {
			declaredOriginal = model.FormatPrice(currency, original)
		}
		return discount, declaredOriginal
	}

	if marketing != nil && marketing.DiscountPercentage != "" {
		raw := strings.TrimSuffix(marketing.DiscountPercentage, "%")
		if pct, err := strconv.ParseFloat(raw, 64); err == nil && pct > 0 && pct < 100 {
			discount := int(math.Round(pct))
			if declaredOriginal == "" && curOK && discount > 0 && discount < 100 {
				inferred := current / (1 - float64(discount)/100)
				declaredOriginal = model.FormatPrice(currency, inferred)
			}
			return discount, declaredOriginal
		}
	}

	return 0, declaredOriginal
}

func parseAmount(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
