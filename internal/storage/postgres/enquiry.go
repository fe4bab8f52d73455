package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/alankar-storefront/internal/domain/enquiry"
)

var _ enquiry.Repository = (*EnquiryRepository)(nil)

const insertEnquiry = `
INSERT INTO enquiries (id, name, email, phone, message, product_code, quoted_price, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

// EnquiryRepository implements enquiry.Repository backed by PostgreSQL.
type EnquiryRepository struct {
	pool *pgxpool.Pool
}

// NewEnquiryRepository returns an EnquiryRepository that uses the given pool.
func NewEnquiryRepository(pool *pgxpool.Pool) *EnquiryRepository {
	return &EnquiryRepository{pool: pool}
}

// Create persists a new enquiry. A missing quoted price is stored as NULL.
func (r *EnquiryRepository) Create(ctx context.Context, e *enquiry.Enquiry) error {
	_, err := r.pool.Exec(ctx, insertEnquiry,
		e.ID,
		e.Name,
		e.Email,
		e.Phone,
		e.Message,
		e.ProductCode,
		e.QuotedPrice,
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("creating enquiry %q: %w", e.ID, err)
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *EnquiryRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
