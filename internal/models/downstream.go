package models

import "time"

// Creative is a rendered marketing asset for a product. CreativeChef owns
// this table in a later stage; the discovery pipeline never writes it.
type Creative struct {
	ID        string    `json:"id" db:"id"`
	ProductID string    `json:"product_id" db:"product_id"`
	Kind      string    `json:"kind" db:"kind"` // video, image
	Status    string    `json:"status" db:"status"`
	AssetURL  string    `json:"asset_url,omitempty" db:"asset_url"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Post is a publishing record for a creative, owned by the Publisher stage.
type Post struct {
	ID          string     `json:"id" db:"id"`
	ProductID   string     `json:"product_id" db:"product_id"`
	CreativeID  string     `json:"creative_id,omitempty" db:"creative_id"`
	Channel     string     `json:"channel" db:"channel"`
	Status      string     `json:"status" db:"status"`
	ExternalRef string     `json:"external_ref,omitempty" db:"external_ref"`
	PostedAt    *time.Time `json:"posted_at,omitempty" db:"posted_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// Metric is an analytics snapshot for a post.
type Metric struct {
	ID          string    `json:"id" db:"id"`
	PostID      string    `json:"post_id" db:"post_id"`
	Impressions int64     `json:"impressions" db:"impressions"`
	Clicks      int64     `json:"clicks" db:"clicks"`
	Conversions int64     `json:"conversions" db:"conversions"`
	CapturedAt  time.Time `json:"captured_at" db:"captured_at"`
}
