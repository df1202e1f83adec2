// Package repository implements PostgreSQL persistence for products,
// affiliate links, and run logs.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/jonesrussell/adscout/internal/logger"
	"github.com/jonesrussell/adscout/internal/models"
	"github.com/jonesrussell/adscout/internal/normalize"
)

// NetworkAmazon is the primary affiliate network.
const NetworkAmazon = "amazon"

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// subIDPrefixLen is how much of the run identifier goes into the
// attribution sub-id.
const subIDPrefixLen = 8

type ProductRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewProductRepository(db *sql.DB, log logger.Logger) *ProductRepository {
	return &ProductRepository{
		db:     db,
		logger: log,
	}
}

// SubID derives the per-run attribution tag carried on affiliate links.
func SubID(runID string) string {
	if len(runID) > subIDPrefixLen {
		runID = runID[:subIDPrefixLen]
	}
	return "run-" + runID
}

// Upsert persists a discovered item keyed by its canonical URL. An existing
// product has its mutable fields and primary affiliate link updated; a new
// product is created together with its link. Both writes happen in one
// transaction so the caller sees the pair atomically.
func (r *ProductRepository) Upsert(ctx context.Context, runID string, item models.DiscoveredItem) (*models.Product, error) {
	if item.URL == "" {
		return nil, errors.New("item url is required")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	product := models.Product{
		ID:         uuid.New().String(),
		Title:      item.Title,
		URL:        item.URL,
		Merchant:   item.Merchant,
		PriceCents: item.PriceCents,
		Tags:       normalize.Tags(item.TagSeeds),
		RunID:      runID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if item.ImageURL != "" {
		product.ImageURLs = models.StringArray{item.ImageURL}
	}

	query := `
		INSERT INTO products (
			id, title, url, merchant, image_urls,
			price_cents, tags, run_id, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (url) DO UPDATE SET
			title = EXCLUDED.title,
			merchant = EXCLUDED.merchant,
			image_urls = EXCLUDED.image_urls,
			price_cents = EXCLUDED.price_cents,
			tags = EXCLUDED.tags,
			run_id = EXCLUDED.run_id,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`

	err = tx.QueryRowContext(ctx, query,
		product.ID,
		product.Title,
		product.URL,
		product.Merchant,
		product.ImageURLs,
		product.PriceCents,
		product.Tags,
		product.RunID,
		product.CreatedAt,
		product.UpdatedAt,
	).Scan(&product.ID, &product.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert product: %w", err)
	}

	link, err := r.upsertPrimaryLink(ctx, tx, &product, item, runID, now)
	if err != nil {
		return nil, err
	}
	product.Links = []models.AffiliateLink{*link}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &product, nil
}

// upsertPrimaryLink updates the product's first link on the primary network,
// or creates one if none exists yet.
func (r *ProductRepository) upsertPrimaryLink(
	ctx context.Context,
	tx *sql.Tx,
	product *models.Product,
	item models.DiscoveredItem,
	runID string,
	now time.Time,
) (*models.AffiliateLink, error) {
	deepLink := item.AffiliateURL
	if deepLink == "" {
		deepLink = item.URL
	}

	link := models.AffiliateLink{
		ProductID: product.ID,
		Network:   NetworkAmazon,
		DeepLink:  deepLink,
		ShortLink: deepLink, // short link mirrors the deep link on the primary network
		SubID:     SubID(runID),
		UpdatedAt: now,
	}

	var existingID string
	err := tx.QueryRowContext(ctx, `
		SELECT id FROM affiliate_links
		WHERE product_id = $1 AND network = $2
		ORDER BY created_at
		LIMIT 1
	`, product.ID, link.Network).Scan(&existingID)

	switch {
	case err == nil:
		link.ID = existingID
		_, err = tx.ExecContext(ctx, `
			UPDATE affiliate_links
			SET deep_link = $1, short_link = $2, sub_id = $3, updated_at = $4
			WHERE id = $5
		`, link.DeepLink, link.ShortLink, link.SubID, link.UpdatedAt, link.ID)
		if err != nil {
			return nil, fmt.Errorf("update affiliate link: %w", err)
		}

	case errors.Is(err, sql.ErrNoRows):
		link.ID = uuid.New().String()
		link.CreatedAt = now
		_, err = tx.ExecContext(ctx, `
			INSERT INTO affiliate_links (
				id, product_id, network, deep_link, short_link, sub_id, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, link.ID, link.ProductID, link.Network, link.DeepLink, link.ShortLink, link.SubID, link.CreatedAt, link.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("insert affiliate link: %w", err)
		}

	default:
		return nil, fmt.Errorf("query affiliate link: %w", err)
	}

	return &link, nil
}

// ListFilter holds filter and pagination params for product listing.
type ListFilter struct {
	RunID string
	Limit int
}

func (f *ListFilter) normalize() {
	if f.Limit <= 0 {
		f.Limit = defaultPageSize
	}
	if f.Limit > maxPageSize {
		f.Limit = maxPageSize
	}
}

// List returns recently created products, most recent first, with their
// links and any downstream creative/post rows attached.
func (r *ProductRepository) List(ctx context.Context, filter ListFilter) ([]models.Product, error) {
	filter.normalize()

	query := `
		SELECT id, title, url, merchant, image_urls,
		       price_cents, tags, run_id, created_at, updated_at
		FROM products
	`
	args := []any{}
	if filter.RunID != "" {
		query += ` WHERE run_id = $1`
		args = append(args, filter.RunID)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d`, filter.Limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	var ids []string
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(
			&p.ID,
			&p.Title,
			&p.URL,
			&p.Merchant,
			&p.ImageURLs,
			&p.PriceCents,
			&p.Tags,
			&p.RunID,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	if len(products) == 0 {
		return products, nil
	}

	if err := r.attachLinks(ctx, products, ids); err != nil {
		return nil, err
	}
	if err := r.attachDownstream(ctx, products, ids); err != nil {
		return nil, err
	}

	return products, nil
}

func (r *ProductRepository) attachLinks(ctx context.Context, products []models.Product, ids []string) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, network, deep_link, short_link, sub_id, created_at, updated_at
		FROM affiliate_links
		WHERE product_id = ANY($1)
		ORDER BY created_at
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("query affiliate links: %w", err)
	}
	defer rows.Close()

	byProduct := indexProducts(products)
	for rows.Next() {
		var l models.AffiliateLink
		if err := rows.Scan(&l.ID, &l.ProductID, &l.Network, &l.DeepLink, &l.ShortLink, &l.SubID, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return fmt.Errorf("scan affiliate link: %w", err)
		}
		if i, ok := byProduct[l.ProductID]; ok {
			products[i].Links = append(products[i].Links, l)
		}
	}
	return rows.Err()
}

func (r *ProductRepository) attachDownstream(ctx context.Context, products []models.Product, ids []string) error {
	byProduct := indexProducts(products)

	creativeRows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, kind, status, COALESCE(asset_url, ''), created_at
		FROM creatives
		WHERE product_id = ANY($1)
		ORDER BY created_at
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("query creatives: %w", err)
	}
	defer creativeRows.Close()

	for creativeRows.Next() {
		var cr models.Creative
		if err := creativeRows.Scan(&cr.ID, &cr.ProductID, &cr.Kind, &cr.Status, &cr.AssetURL, &cr.CreatedAt); err != nil {
			return fmt.Errorf("scan creative: %w", err)
		}
		if i, ok := byProduct[cr.ProductID]; ok {
			products[i].Creatives = append(products[i].Creatives, cr)
		}
	}
	if err := creativeRows.Err(); err != nil {
		return err
	}

	postRows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, COALESCE(creative_id, ''), channel, status, COALESCE(external_ref, ''), posted_at, created_at
		FROM posts
		WHERE product_id = ANY($1)
		ORDER BY created_at
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("query posts: %w", err)
	}
	defer postRows.Close()

	for postRows.Next() {
		var p models.Post
		if err := postRows.Scan(&p.ID, &p.ProductID, &p.CreativeID, &p.Channel, &p.Status, &p.ExternalRef, &p.PostedAt, &p.CreatedAt); err != nil {
			return fmt.Errorf("scan post: %w", err)
		}
		if i, ok := byProduct[p.ProductID]; ok {
			products[i].Posts = append(products[i].Posts, p)
		}
	}
	return postRows.Err()
}

func indexProducts(products []models.Product) map[string]int {
	byID := make(map[string]int, len(products))
	for i := range products {
		byID[products[i].ID] = i
	}
	return byID
}
