package rank

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"dealscout/internal/model"
)

// Condition buckets, best first. Raw condition strings from the marketplace
// are folded into one of these before comparison.
type conditionClass int

const (
	conditionNew conditionClass = iota
	conditionLikeNew
	conditionUsed
	conditionForParts
	conditionUnknown
)

var conditionClasses = map[string]conditionClass{
	"new":                      conditionNew,
	"brand new":                conditionNew,
	"new with tags":            conditionNew,
	"new with defects":         conditionLikeNew,
	"new other":                conditionLikeNew,
	"open box":                 conditionLikeNew,
	"certified refurbished":    conditionLikeNew,
	"manufacturer refurbished": conditionLikeNew,
	"excellent - refurbished":  conditionLikeNew,
	"very good - refurbished":  conditionLikeNew,
	"seller refurbished":       conditionUsed,
	"used":                     conditionUsed,
	"pre-owned":                conditionUsed,
	"good":                     conditionUsed,
	"acceptable":               conditionUsed,
	"for parts":                conditionForParts,
	"for parts or not working": conditionForParts,
	"parts only":               conditionForParts,
	"not working":              conditionForParts,
	"as-is":                    conditionForParts,
}

func classifyCondition(raw string) conditionClass {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if normalized == "" {
		return conditionUnknown
	}
	if c, ok := conditionClasses[normalized]; ok {
		return c
	}
	// Unlisted variants still usually carry one of the class words.
	switch {
	case strings.Contains(normalized, "parts"), strings.Contains(normalized, "not working"):
		return conditionForParts
	case strings.Contains(normalized, "refurbished"), strings.Contains(normalized, "open box"):
		return conditionLikeNew
	case strings.Contains(normalized, "used"), strings.Contains(normalized, "pre-owned"):
		return conditionUsed
	case strings.Contains(normalized, "new"):
		return conditionNew
	}
	return conditionUnknown
}

// SellerTrustScore grows with both the feedback percentage and the feedback
// count. The count enters logarithmically so a 99.8% seller with 50,000 sales
// outranks a 100% seller with three.
func SellerTrustScore(rating string) float64 {
	pct, count := parseSellerRating(rating)
	if pct <= 0 {
		return 0
	}
	return pct * math.Log10(float64(count)+10)
}

// parseSellerRating reads the "<pct>% (<count>)" format produced by the
// normalizer. The count group tolerates thousands separators.
func parseSellerRating(rating string) (float64, int) {
	if rating == "" {
		return 0, 0
	}
	pctEnd := strings.Index(rating, "%")
	if pctEnd < 0 {
		return 0, 0
	}
	pct, err := strconv.ParseFloat(strings.TrimSpace(rating[:pctEnd]), 64)
	if err != nil {
		return 0, 0
	}
	count := 0
	if open := strings.Index(rating, "("); open >= 0 {
		if close := strings.Index(rating[open:], ")"); close > 0 {
			digits := strings.ReplaceAll(rating[open+1:open+close], ",", "")
			count, _ = strconv.Atoi(digits)
		}
	}
	return pct, count
}

// Deals stable-sorts deals in place: discount percentage descending, then the
// fixed tie-break chain of absolute saving, condition, seller trust, recency,
// watch count, and delivery speed. Full ties keep their input order.
func Deals(deals []model.Deal) {
	sort.SliceStable(deals, func(i, j int) bool {
		a, b := &deals[i], &deals[j]

		if da, db := a.DiscountValue(), b.DiscountValue(); da != db {
			return da > db
		}
		if sa, sb := a.Saving(), b.Saving(); sa != sb {
			return sa > sb
		}
		if ca, cb := classifyCondition(a.Condition), classifyCondition(b.Condition); ca != cb {
			return ca < cb
		}
		if ta, tb := SellerTrustScore(a.SellerRating), SellerTrustScore(b.SellerRating); ta != tb {
			return ta > tb
		}
		if pa, pb := parsePostedDate(a.PostedDate), parsePostedDate(b.PostedDate); !pa.Equal(pb) {
			return pa.After(pb)
		}
		if a.WatchCount != b.WatchCount {
			return a.WatchCount > b.WatchCount
		}
		wa, wb := deliveryEarliest(a.DeliveryWindow), deliveryEarliest(b.DeliveryWindow)
		switch {
		case !wa.IsZero() && !wb.IsZero() && !wa.Equal(wb):
			return wa.Before(wb)
		case !wa.IsZero() && wb.IsZero():
			return true
		case wa.IsZero() && !wb.IsZero():
			return false
		}
		return false
	})
}

// Auctions stable-sorts auctions in place: soonest-ending first, then seller
// trust descending, then watch count descending.
func Auctions(auctions []model.Auction) {
	sort.SliceStable(auctions, func(i, j int) bool {
		a, b := &auctions[i], &auctions[j]

		ea, errA := a.EndsAt()
		eb, errB := b.EndsAt()
		switch {
		case errA == nil && errB == nil && !ea.Equal(eb):
			return ea.Before(eb)
		case errA == nil && errB != nil:
			return true
		case errA != nil && errB == nil:
			return false
		}
		if ta, tb := SellerTrustScore(a.SellerRating), SellerTrustScore(b.SellerRating); ta != tb {
			return ta > tb
		}
		return a.WatchCount > b.WatchCount
	})
}

func parsePostedDate(s string) time.Time {
	t, err := time.Parse("01/02/2006", s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// deliveryEarliest orders by the start of the delivery window. Windows are
// formatted as "Jan 2 - Jan 5" without a year, so the comparison assumes the
// current year, which holds for the few-week estimates the marketplace sends.
func deliveryEarliest(window string) time.Time {
	parts := strings.SplitN(window, " - ", 2)
	if len(parts) != 2 {
		return time.Time{}
	}
	t, err := time.Parse("Jan 2", parts[0])
	if err != nil {
		return time.Time{}
	}
	return t.AddDate(time.Now().Year(), 0, 0)
}
