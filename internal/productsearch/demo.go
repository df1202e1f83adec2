package productsearch

import "strings"

// demoCatalog is the built-in result set served when no Product
// Advertising API credentials are configured. Entries are matched by
// substring against the lowercased search keyword, first match wins.
var demoCatalog = []struct {
	key   string
	items []Item
}{
	{
		key: "coffee",
		items: []Item{
			{
				ID:         "B07YLY5L8H",
				Title:      "AeroPress Go Portable Travel Coffee Press Kit",
				URL:        "https://www.amazon.com/dp/B07YLY5L8H",
				ImageURL:   "https://m.media-amazon.com/images/I/61dJ5YPjCmL._AC_SL1500_.jpg",
				PriceCents: cents(3995),
				Features: []string{
					"Full press, filters, scoop, and stirrer nest inside the mug",
					"Brews smooth, rich coffee in about a minute",
				},
			},
		},
	},
	{
		key: "tea",
		items: []Item{
			{
				ID:         "B00004SPEU",
				Title:      "Hario ChaCha Kyusu Maru Tea Pot, 700ml",
				URL:        "https://www.amazon.com/dp/B00004SPEU",
				ImageURL:   "https://m.media-amazon.com/images/I/51V9EmYkBCL._AC_SL1000_.jpg",
				PriceCents: cents(2350),
				Features: []string{
					"Heatproof glass body with a removable mesh strainer",
					"Wide mouth makes leaf cleanup simple",
				},
			},
		},
	},
	{
		key: "desk",
		items: []Item{
			{
				ID:         "B08N5WRWNW",
				Title:      "Grovemade Walnut Desk Shelf System",
				URL:        "https://www.amazon.com/dp/B08N5WRWNW",
				ImageURL:   "https://m.media-amazon.com/images/I/71sDeskShelf._AC_SL1500_.jpg",
				PriceCents: cents(12000),
				Features: []string{
					"Raises the monitor to eye level and clears keyboard space",
					"Solid walnut with a natural oil finish",
				},
			},
		},
	},
	{
		key: "yoga",
		items: []Item{
			{
				ID:         "B01LP0UBCG",
				Title:      "Manduka PRO Yoga Mat 6mm",
				URL:        "https://www.amazon.com/dp/B01LP0UBCG",
				ImageURL:   "https://m.media-amazon.com/images/I/71YogaMat._AC_SL1500_.jpg",
				PriceCents: cents(13800),
				Features: []string{
					"Dense 6mm cushion with a closed-cell surface",
					"Lifetime guarantee against wear",
				},
			},
		},
	},
}

// demoResult serves the built-in catalog entry matching keyword, or an
// empty degraded result when nothing matches.
func demoResult(keyword string) Result {
	needle := strings.ToLower(keyword)
	for _, entry := range demoCatalog {
		if strings.Contains(needle, entry.key) {
			items := make([]Item, len(entry.items))
			copy(items, entry.items)
			return Result{Items: items, Degraded: true, Reason: "demo result set"}
		}
	}
	return Result{Degraded: true, Reason: "demo result set has no match"}
}

func cents(v int64) *int64 { return &v }
