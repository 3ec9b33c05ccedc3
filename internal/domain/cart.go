// internal/domain/cart.go
package domain

import "math"

// MaxLineQuantity is the largest quantity one cart or purchase line may hold.
// It matches the INT quantity columns of the relational schema.
const MaxLineQuantity = math.MaxInt32

// QuantityInRange reports whether q is a storable line quantity.
func QuantityInRange(q int) bool {
	return q >= 1 && q <= MaxLineQuantity
}

// CartLine is one (account, item, quantity) association awaiting purchase.
type CartLine struct {
	AccountID int64 `db:"account_id" json:"-"`
	ItemID    int64 `db:"item_id" json:"id"`
	Quantity  int   `db:"quantity" json:"quantity"`
}

// CartItem is a cart line joined with the live catalog entry.
type CartItem struct {
	CatalogItem
	Quantity int `db:"quantity" json:"quantity"`
}

// MergeCartLines folds duplicate item ids into one line by summing quantities.
// Lines keep the order in which each item first appeared; zero-quantity lines are dropped.
func MergeCartLines(lines []CartLine) []CartLine {
	merged := make([]CartLine, 0, len(lines))
	index := make(map[int64]int, len(lines))
	for _, line := range lines {
		if i, ok := index[line.ItemID]; ok {
			merged[i].Quantity += line.Quantity
			continue
		}
		index[line.ItemID] = len(merged)
		merged = append(merged, line)
	}

	out := merged[:0]
	for _, line := range merged {
		if line.Quantity != 0 {
			out = append(out, line)
		}
	}
	return out
}
