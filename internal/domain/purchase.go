// internal/domain/purchase.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Purchase is an immutable record of a completed checkout.
type Purchase struct {
	ID           int64           `db:"id" json:"id"`
	Reference    uuid.UUID       `db:"reference" json:"reference"`
	AccountID    int64           `db:"account_id" json:"-"`
	Total        decimal.Decimal `db:"total" json:"total"`
	PointsEarned int64           `db:"points_earned" json:"pointsEarned"`
	CreatedAt    time.Time       `db:"created_at" json:"date"`
	Items        []PurchaseItem  `db:"-" json:"items"`
}

// PurchaseLine is the persisted line of a purchase; Price is the purchase-time snapshot.
type PurchaseLine struct {
	ID         int64           `db:"id" json:"-"`
	PurchaseID int64           `db:"purchase_id" json:"-"`
	ItemID     int64           `db:"item_id" json:"id"`
	Quantity   int             `db:"quantity" json:"quantity"`
	Price      decimal.Decimal `db:"price" json:"price"`
}

// PurchaseItem is a purchase line as shown to a reader: frozen price and quantity,
// display metadata resolved from the live catalog.
type PurchaseItem struct {
	ItemID      int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Genre       string          `json:"genre"`
	Rating      float64         `json:"rating"`
	Image       string          `json:"image"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

// CheckoutLine is one line handed to checkout: item, quantity and the price seen when it was added.
type CheckoutLine struct {
	ItemID   int64           `json:"id"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// NewPurchase creates a purchase for accountID with a fresh reference.
func NewPurchase(accountID int64, total decimal.Decimal, pointsEarned int64, lines []CheckoutLine) *Purchase {
	items := make([]PurchaseItem, 0, len(lines))
	for _, line := range lines {
		items = append(items, PurchaseItem{ItemID: line.ItemID, Price: line.Price, Quantity: line.Quantity})
	}
	return &Purchase{
		Reference:    uuid.New(),
		AccountID:    accountID,
		Total:        total,
		PointsEarned: pointsEarned,
		CreatedAt:    time.Now().UTC(),
		Items:        items,
	}
}

// LineTotal sums price × quantity over lines.
func LineTotal(lines []CheckoutLine) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// PointsFor returns floor(total × pointsPerUnit), the loyalty points an order total earns.
func PointsFor(total decimal.Decimal, pointsPerUnit int64) int64 {
	return total.Mul(decimal.NewFromInt(pointsPerUnit)).Floor().IntPart()
}

// DescribePurchaseItems fills the display fields of items from catalog.
// Items whose entry is no longer in the catalog keep their frozen price and quantity only.
func DescribePurchaseItems(items []PurchaseItem, catalog []CatalogItem) {
	byID := make(map[int64]CatalogItem, len(catalog))
	for _, entry := range catalog {
		byID[entry.ID] = entry
	}
	for i := range items {
		entry, ok := byID[items[i].ItemID]
		if !ok {
			continue
		}
		items[i].Title = entry.Title
		items[i].Description = entry.Description
		items[i].Genre = entry.Genre
		items[i].Rating = entry.Rating
		items[i].Image = entry.Image
	}
}
