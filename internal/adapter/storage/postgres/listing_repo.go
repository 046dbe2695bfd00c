package postgres

import (
	"context"
	"errors"
	"fmt"

	"donut-trade-backend/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ListingRepo implements ports.ListingRepository.
type ListingRepo struct {
	pool Pool
}

// NewListingRepo creates a new ListingRepo.
func NewListingRepo(pool Pool) *ListingRepo {
	return &ListingRepo{pool: pool}
}

const listingColumns = `id, seller_id, title, description, item_type, item_name, quantity, price, status, created_at, updated_at`

func scanListing(row pgx.Row) (*domain.Listing, error) {
	l := &domain.Listing{}
	err := row.Scan(
		&l.ID, &l.SellerID, &l.Title, &l.Description, &l.ItemType,
		&l.ItemName, &l.Quantity, &l.Price, &l.Status, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return l, nil
}

func scanListings(rows pgx.Rows) ([]domain.Listing, error) {
	defer rows.Close()

	var listings []domain.Listing
	for rows.Next() {
		var l domain.Listing
		err := rows.Scan(
			&l.ID, &l.SellerID, &l.Title, &l.Description, &l.ItemType,
			&l.ItemName, &l.Quantity, &l.Price, &l.Status, &l.CreatedAt, &l.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// Create inserts a new listing.
func (r *ListingRepo) Create(ctx context.Context, l *domain.Listing) error {
	query := `INSERT INTO listings (id, seller_id, title, description, item_type, item_name, quantity, price, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.pool.Exec(ctx, query,
		l.ID, l.SellerID, l.Title, l.Description, l.ItemType,
		l.ItemName, l.Quantity, l.Price, l.Status, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert listing: %w", err)
	}
	return nil
}

// GetByID fetches a listing by its UUID.
func (r *ListingRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`

	l, err := scanListing(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("get listing by id: %w", err)
	}
	return l, nil
}

// ListActive fetches all purchasable listings, newest first.
func (r *ListingRepo) ListActive(ctx context.Context) ([]domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE status = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, domain.ListingStatusActive)
	if err != nil {
		return nil, fmt.Errorf("list active listings: %w", err)
	}
	listings, err := scanListings(rows)
	if err != nil {
		return nil, fmt.Errorf("scan active listings: %w", err)
	}
	return listings, nil
}

// ListBySeller fetches all of a seller's listings, any status, newest first.
func (r *ListingRepo) ListBySeller(ctx context.Context, sellerID uuid.UUID) ([]domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE seller_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, sellerID)
	if err != nil {
		return nil, fmt.Errorf("list seller listings: %w", err)
	}
	listings, err := scanListings(rows)
	if err != nil {
		return nil, fmt.Errorf("scan seller listings: %w", err)
	}
	return listings, nil
}

// UpdateStatus performs a guarded status transition within a transaction.
// The WHERE clause carries the expected current status, so a concurrent
// writer who got there first makes this a no-op and the caller sees false.
func (r *ListingRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, from, to domain.ListingStatus) (bool, error) {
	query := `UPDATE listings SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`

	tag, err := tx.Exec(ctx, query, to, id, from)
	if err != nil {
		return false, fmt.Errorf("update listing status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
