// Package zaplog implements storage that only records to the application
// log. It backs deployments without a database.
package zaplog

import (
	"context"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/alankar-storefront/internal/domain/enquiry"
)

var _ enquiry.Repository = EnquiryRepository{}

// EnquiryRepository writes each enquiry as a structured log entry.
type EnquiryRepository struct{}

// Create logs e on the context logger.
func (EnquiryRepository) Create(ctx context.Context, e *enquiry.Enquiry) error {
	fields := []zap.Field{
		zap.String("enquiry_id", e.ID),
		zap.String("name", e.Name),
		zap.String("email", e.Email),
		zap.String("phone", e.Phone),
		zap.String("message", e.Message),
		zap.Time("created_at", e.CreatedAt),
	}
	if e.ProductCode != "" {
		fields = append(fields, zap.String("product_code", e.ProductCode))
	}
	if e.QuotedPrice.Valid {
		fields = append(fields, zap.Stringer("quoted_price", e.QuotedPrice.Decimal))
	}
	zctx.From(ctx).Info("Enquiry received", fields...)
	return nil
}
