package choice

// DefaultOrder is the presentation priority assumed for selections and
// options that declare no explicit Order.
const DefaultOrder = 1000

// DefaultEffectOrder is the manual pre-pass priority assumed for effects
// that declare no explicit Order. It coincides with DefaultOrder
// numerically but the two defaults are independent knobs: one governs
// how choice points present, the other how effects tiebreak before
// dependency ordering.
const DefaultEffectOrder = 1000

// OrderOf returns order when set, or the supplied fallback.
func OrderOf(order *int, fallback int) int {
	if order != nil {
		return *order
	}
	return fallback
}
