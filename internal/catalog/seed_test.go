package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	items, err := Default()
	require.NoError(t, err)
	require.Len(t, items, 8)

	titles := make([]string, len(items))
	for i, item := range items {
		titles[i] = item.Title
	}
	assert.Equal(t, []string{
		"Baldur's Gate 3",
		"Call of Duty: Modern Warfare III",
		"Cyberpunk 2077",
		"Elden Ring",
		"FIFA 24",
		"Grand Theft Auto V",
		"Spider-Man Remastered",
		"The Witcher 3: Wild Hunt",
	}, titles)

	var cyberpunk bool
	for _, item := range items {
		if item.Title != "Cyberpunk 2077" {
			continue
		}
		cyberpunk = true
		assert.Equal(t, "29.99", item.Price.String())
		require.NotNil(t, item.OriginalPrice)
		assert.Equal(t, "59.99", item.OriginalPrice.String())
		require.NotNil(t, item.Discount)
		assert.Equal(t, 50, *item.Discount)
	}
	assert.True(t, cyberpunk)
}

func TestParseRejectsInvalidItems(t *testing.T) {
	tests := map[string]string{
		"MissingTitle":  "items:\n  - price: \"1.00\"\n",
		"BadPrice":      "items:\n  - title: X\n    price: cheap\n",
		"NegativePrice": "items:\n  - title: X\n    price: \"-1\"\n",
		"BadOriginal":   "items:\n  - title: X\n    price: \"1\"\n    original_price: nope\n",
		"SubCentPrice":  "items:\n  - title: X\n    price: \"0.005\"\n",
		"HugePrice":     "items:\n  - title: X\n    price: \"100000000\"\n",
		"SubCentOrig":   "items:\n  - title: X\n    price: \"1\"\n    original_price: \"1.999\"\n",
		"NotYAML":       "items: [",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("items:\n  - title: Zelda\n    price: \"59.99\"\n  - title: Abzu\n    price: \"19.99\"\n"), 0o600))

	items, err := Load(path)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Abzu", items[0].Title)
	assert.Nil(t, items[0].OriginalPrice)
	assert.Nil(t, items[0].Discount)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseOrdersTitlesByCollation(t *testing.T) {
	doc := "items:\n" +
		"  - title: Zelda\n    price: \"1\"\n" +
		"  - title: apex\n    price: \"1\"\n" +
		"  - title: \u00c9lan\n    price: \"1\"\n"

	items, err := Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "apex", items[0].Title)
	assert.Equal(t, "\u00c9lan", items[1].Title)
	assert.Equal(t, "Zelda", items[2].Title)
}
