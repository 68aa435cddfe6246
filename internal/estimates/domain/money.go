package domain

// Monetary amounts are int64 cents and quantities are int64 thousandths,
// so pricing arithmetic stays in exact integers end to end.

// ExtendedAmount returns quantity x rate in cents, rounding half-up at the
// line. Totals are literal sums of these per-line amounts, never a
// recomputation from a rounded subtotal.
func ExtendedAmount(qtyMilli, rateCents int64) int64 {
	product := qtyMilli * rateCents
	if product >= 0 {
		return (product + 500) / 1000
	}
	return (product - 500) / 1000
}

// UnitPriceFor derives a display unit price from an exact total and a
// quantity in thousandths. The stored line total remains the exact amount;
// this is only the per-unit figure shown on the line.
func UnitPriceFor(totalCents, qtyMilli int64) int64 {
	if qtyMilli == 0 {
		return totalCents
	}
	product := totalCents * 1000
	if (product >= 0) == (qtyMilli > 0) {
		return (product + qtyMilli/2) / qtyMilli
	}
	return (product - qtyMilli/2) / qtyMilli
}
