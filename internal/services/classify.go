// Package services – alert classifier
//
// Classify is the pure core of the reconciliation engine: given one item
// snapshot, a reference date, and the soon-window, it returns every alert
// condition that currently holds. It performs no I/O and is deterministic,
// which keeps it trivially testable in isolation from the store.
package services

import (
	"fmt"
	"time"

	"github.com/freshkeeper/go-inventory-backend/internal/domain"
)

// Determination is one alert condition the classifier found to hold:
// the kind, the date it keys on, and the regenerated human-readable message.
type Determination struct {
	Kind    domain.AlertKind
	DueDate time.Time
	Message string
}

// Classify evaluates one item against today's date.
//
// Rules, evaluated independently (kinds may coexist on the same item):
//   - quantity present and <= 0            -> OUT_OF_STOCK, due = today
//   - expiry present and <= today          -> EXPIRED,      due = expiry
//   - today < expiry <= today+soonWindow   -> EXPIRING_SOON, due = expiry
//
// A nil quantity means the item is not stock-tracked and never raises
// OUT_OF_STOCK. Dates are compared at day precision in UTC.
func Classify(item domain.ItemSnapshot, today time.Time, soonWindowDays int) []Determination {
	today = DateOnly(today)
	var out []Determination

	if item.Quantity != nil && *item.Quantity <= 0 {
		out = append(out, determination(item.ID, domain.KindOutOfStock, today))
	}

	if item.ExpiryDate != nil {
		exp := DateOnly(*item.ExpiryDate)
		soonThreshold := today.AddDate(0, 0, soonWindowDays)
		switch {
		case !exp.After(today):
			out = append(out, determination(item.ID, domain.KindExpired, exp))
		case exp.After(today) && !exp.After(soonThreshold):
			out = append(out, determination(item.ID, domain.KindExpiringSoon, exp))
		}
	}

	return out
}

func determination(productID uint, kind domain.AlertKind, due time.Time) Determination {
	return Determination{
		Kind:    kind,
		DueDate: due,
		Message: fmt.Sprintf("%s for product #%d on %s", kind, productID, due.Format("2006-01-02")),
	}
}

// DateOnly truncates t to midnight UTC, the precision every due-date
// comparison in the engine uses.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
