package domain

import "fmt"

// AlertKind is the closed set of conditions the reconciliation engine raises.
// Values are parsed strictly at the API and store boundaries; anything outside
// the set is an error, never silently coerced.
type AlertKind string

const (
	// KindExpired marks an item whose expiry date has passed.
	KindExpired AlertKind = "EXPIRED"
	// KindExpiringSoon marks an item expiring within the configured window.
	KindExpiringSoon AlertKind = "EXPIRING_SOON"
	// KindOutOfStock marks a stock-tracked item with quantity <= 0.
	KindOutOfStock AlertKind = "OUT_OF_STOCK"
)

// Kinds lists every valid alert kind.
func Kinds() []AlertKind {
	return []AlertKind{KindExpired, KindExpiringSoon, KindOutOfStock}
}

// Valid reports whether k is a member of the closed kind set.
func (k AlertKind) Valid() bool {
	switch k {
	case KindExpired, KindExpiringSoon, KindOutOfStock:
		return true
	}
	return false
}

// String implements fmt.Stringer.
func (k AlertKind) String() string { return string(k) }

// ParseAlertKind converts a raw string into an AlertKind, or fails for any
// value outside the closed set (including differently-cased variants).
func ParseAlertKind(s string) (AlertKind, error) {
	k := AlertKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("invalid alert kind %q", s)
	}
	return k, nil
}
