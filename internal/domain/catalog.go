// internal/domain/catalog.go
package domain

import (
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// CatalogItem is a purchasable game.
type CatalogItem struct {
	ID            int64            `db:"id" json:"id" yaml:"-"`
	Title         string           `db:"title" json:"title" yaml:"title"`
	Price         decimal.Decimal  `db:"price" json:"price" yaml:"price"`
	OriginalPrice *decimal.Decimal `db:"original_price" json:"originalPrice,omitempty" yaml:"original_price,omitempty"`
	Description   string           `db:"description" json:"description" yaml:"description"`
	Genre         string           `db:"genre" json:"genre" yaml:"genre"`
	Rating        float64          `db:"rating" json:"rating" yaml:"rating"`
	Image         string           `db:"image" json:"image" yaml:"image"`
	Discount      *int             `db:"discount" json:"discount,omitempty" yaml:"discount,omitempty"` // percent, advisory
}

// SortByTitle orders items by title under English collation, so case and
// accents do not split the listing. Equal titles fall back to id.
func SortByTitle(items []CatalogItem) {
	// A Collator keeps scratch buffers and is not safe to share.
	c := collate.New(language.English)
	sort.SliceStable(items, func(i, j int) bool {
		if cmp := c.CompareString(items[i].Title, items[j].Title); cmp != 0 {
			return cmp < 0
		}
		return items[i].ID < items[j].ID
	})
}
