package postgres

import (
	"context"
	"database/sql"

	"travel/internal/domain"
	"travel/internal/repository"
)

// ListingRepository is a PostgreSQL implementation of repository.ListingRepository.
type ListingRepository struct {
	q Querier
}

// NewListingRepository creates a new PostgreSQL listing repository.
func NewListingRepository(db *sql.DB) *ListingRepository {
	return &ListingRepository{q: db}
}

// NewListingRepositoryWithTx creates a listing repository using a transaction.
func NewListingRepositoryWithTx(tx *sql.Tx) *ListingRepository {
	return &ListingRepository{q: tx}
}

const listingColumns = `id, host_id, title, description, price_per_night, created_at, updated_at`

// Create persists a new listing.
func (r *ListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	query := `
		INSERT INTO listings (id, host_id, title, description, price_per_night)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	err := r.q.QueryRowContext(ctx, query,
		listing.ID,
		listing.HostID,
		listing.Title,
		listing.Description,
		listing.PricePerNight,
	).Scan(&listing.CreatedAt, &listing.UpdatedAt)

	return mapError(err)
}

// GetByID retrieves a listing by ID.
func (r *ListingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`

	var listing domain.Listing
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&listing.ID,
		&listing.HostID,
		&listing.Title,
		&listing.Description,
		&listing.PricePerNight,
		&listing.CreatedAt,
		&listing.UpdatedAt,
	)
	if err != nil {
		return nil, mapError(err)
	}

	return &listing, nil
}

// GetAll retrieves all listings.
func (r *ListingRepository) GetAll(ctx context.Context) ([]*domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings ORDER BY created_at DESC`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []*domain.Listing
	for rows.Next() {
		var listing domain.Listing
		if err := rows.Scan(
			&listing.ID,
			&listing.HostID,
			&listing.Title,
			&listing.Description,
			&listing.PricePerNight,
			&listing.CreatedAt,
			&listing.UpdatedAt,
		); err != nil {
			return nil, err
		}
		listings = append(listings, &listing)
	}

	return listings, rows.Err()
}

// Update updates an existing listing.
func (r *ListingRepository) Update(ctx context.Context, listing *domain.Listing) error {
	query := `
		UPDATE listings
		SET host_id = $1, title = $2, description = $3, price_per_night = $4, updated_at = now()
		WHERE id = $5
		RETURNING updated_at
	`

	err := r.q.QueryRowContext(ctx, query,
		listing.HostID,
		listing.Title,
		listing.Description,
		listing.PricePerNight,
		listing.ID,
	).Scan(&listing.UpdatedAt)

	return mapError(err)
}

// Delete removes a listing.
func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}

	return expectAffected(result)
}

// Ensure ListingRepository implements repository.ListingRepository.
var _ repository.ListingRepository = (*ListingRepository)(nil)
