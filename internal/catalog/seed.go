// Package catalog loads the catalog seed used to populate an empty store.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"storefront/internal/domain"
)

//go:embed default_catalog.yaml
var defaultCatalog []byte

type seedFile struct {
	Items []seedItem `yaml:"items"`
}

type seedItem struct {
	Title         string  `yaml:"title"`
	Price         string  `yaml:"price"`
	OriginalPrice string  `yaml:"original_price"`
	Description   string  `yaml:"description"`
	Genre         string  `yaml:"genre"`
	Rating        float64 `yaml:"rating"`
	Image         string  `yaml:"image"`
	Discount      *int    `yaml:"discount"`
}

// Default returns the built-in catalog.
func Default() ([]domain.CatalogItem, error) {
	return Parse(defaultCatalog)
}

// Load reads a seed file from path, or the built-in catalog when path is empty.
func Load(path string) ([]domain.CatalogItem, error) {
	if path == "" {
		return Default()
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog seed %s: %w", path, err)
	}
	return Parse(content)
}

// Parse decodes a YAML seed document. Items come back ordered by title.
func Parse(content []byte) ([]domain.CatalogItem, error) {
	var file seedFile
	if err := yaml.Unmarshal(content, &file); err != nil {
		return nil, fmt.Errorf("failed to decode catalog seed: %w", err)
	}

	items := make([]domain.CatalogItem, 0, len(file.Items))
	for i, raw := range file.Items {
		item, err := raw.toItem()
		if err != nil {
			return nil, fmt.Errorf("catalog seed item %d: %w", i, err)
		}
		items = append(items, item)
	}
	domain.SortByTitle(items)
	return items, nil
}

func (s seedItem) toItem() (domain.CatalogItem, error) {
	title := strings.TrimSpace(s.Title)
	if title == "" {
		return domain.CatalogItem{}, fmt.Errorf("title is required")
	}
	price, err := decimal.NewFromString(s.Price)
	if err != nil {
		return domain.CatalogItem{}, fmt.Errorf("%s: invalid price %q: %w", title, s.Price, err)
	}
	if price.IsNegative() {
		return domain.CatalogItem{}, fmt.Errorf("%s: price must not be negative", title)
	}
	if !domain.ValidPrice(price) {
		return domain.CatalogItem{}, fmt.Errorf("%s: price %s does not fit %d digits with %d decimals", title, price, domain.PricePrecision, domain.PriceScale)
	}

	item := domain.CatalogItem{
		Title:       title,
		Price:       price,
		Description: s.Description,
		Genre:       s.Genre,
		Rating:      s.Rating,
		Image:       s.Image,
		Discount:    s.Discount,
	}
	if s.OriginalPrice != "" {
		original, err := decimal.NewFromString(s.OriginalPrice)
		if err != nil {
			return domain.CatalogItem{}, fmt.Errorf("%s: invalid original price %q: %w", title, s.OriginalPrice, err)
		}
		if !domain.ValidPrice(original) {
			return domain.CatalogItem{}, fmt.Errorf("%s: original price %s does not fit %d digits with %d decimals", title, original, domain.PricePrecision, domain.PriceScale)
		}
		item.OriginalPrice = &original
	}
	return item, nil
}
