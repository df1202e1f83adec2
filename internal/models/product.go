// Package models defines the row types shared by the repositories and the API.
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Product represents a discovered item. The canonical URL is the unique
// upsert key; re-discovery of the same URL updates the row in place.
type Product struct {
	ID         string      `json:"id" db:"id"`
	Title      string      `json:"title" db:"title"`
	URL        string      `json:"url" db:"url"`
	Merchant   string      `json:"merchant" db:"merchant"`
	ImageURLs  StringArray `json:"image_urls" db:"image_urls"`
	PriceCents *int64      `json:"price_cents,omitempty" db:"price_cents"`
	Tags       StringArray `json:"tags" db:"tags"`
	RunID      string      `json:"run_id" db:"run_id"`
	CreatedAt  time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at" db:"updated_at"`

	Links     []AffiliateLink `json:"links,omitempty"`
	Creatives []Creative      `json:"creatives,omitempty"`
	Posts     []Post          `json:"posts,omitempty"`
}

// AffiliateLink is one tracked outbound link per product per network.
// It is cascade-deleted with its product.
type AffiliateLink struct {
	ID        string    `json:"id" db:"id"`
	ProductID string    `json:"product_id" db:"product_id"`
	Network   string    `json:"network" db:"network"`
	DeepLink  string    `json:"deep_link" db:"deep_link"`
	ShortLink string    `json:"short_link" db:"short_link"`
	SubID     string    `json:"sub_id" db:"sub_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// DiscoveredItem is a normalized product candidate handed to the persistence
// layer by either collector path.
type DiscoveredItem struct {
	Title        string
	URL          string
	Merchant     string
	ImageURL     string
	PriceCents   *int64
	AffiliateURL string
	// TagSeeds are free-text phrases (idea, highlights) the persistence
	// layer normalizes into topical tags.
	TagSeeds []string
}

// StringArray stores a string slice as a JSONB column.
type StringArray []string

// Value implements driver.Valuer for database storage.
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal([]string(a))
}

// Scan implements sql.Scanner for database retrieval.
func (a *StringArray) Scan(value any) error {
	if value == nil {
		*a = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, a)
}
