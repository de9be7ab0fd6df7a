package utils

import (
	"time"

	"github.com/shopspring/decimal"

	"pms-backend/models"
)

// MoneyTolerance is the accepted rounding drift when comparing amounts
// that were computed through different paths (POS line totals etc.).
var MoneyTolerance = decimal.NewFromFloat(0.05)

// AmountsMatch reports whether a and b are equal within MoneyTolerance.
func AmountsMatch(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(MoneyTolerance)
}

// NightsBetween counts calendar nights between check-in and check-out,
// ignoring the time of day: a 15:00 arrival with an 11:00 departure two
// days later spans two hotel nights. Zero for a same-day window.
func NightsBetween(checkIn, checkOut time.Time) int {
	n := int(DateOnly(checkOut).Sub(DateOnly(checkIn)).Hours() / 24)
	if n < 0 {
		return 0
	}
	return n
}

// StayQuantity is the billable quantity for a stay window under an offer
// kind: nightly counts nights, short-stay is a single unit, weekend is
// at least two nights however short the actual span.
func StayQuantity(offerKind string, checkIn, checkOut time.Time) int {
	nights := NightsBetween(checkIn, checkOut)
	switch offerKind {
	case models.OfferKindShortStay:
		return 1
	case models.OfferKindWeekend:
		if nights < 2 {
			return 2
		}
		return nights
	default:
		// A whole stay always bills at least one night.
		if nights < 1 {
			return 1
		}
		return nights
	}
}

// StayBaseAmount = unit price x kind-based quantity.
func StayBaseAmount(unitPrice decimal.Decimal, offerKind string, checkIn, checkOut time.Time) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(StayQuantity(offerKind, checkIn, checkOut))))
}

// DateOnly truncates t to its calendar day (UTC).
func DateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
