package enquiry

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xenking/alankar-storefront/internal/domain/product"
)

// ProductLookup resolves a product by code.
type ProductLookup interface {
	Get(ctx context.Context, code string) (*product.Product, error)
}

// Service accepts contact form submissions.
type Service struct {
	products  ProductLookup
	enquiries Repository
	now       func() time.Time
}

// NewService creates an enquiry Service.
func NewService(products ProductLookup, enquiries Repository) *Service {
	return &Service{
		products:  products,
		enquiries: enquiries,
		now:       time.Now,
	}
}

// Submit validates the form, snapshots the price of the named product and
// persists the enquiry. Invalid input is reported as ValidationErrors.
func (s *Service) Submit(ctx context.Context, form Form) (*Enquiry, error) {
	form = form.Normalize()
	err := Validate(form)

	e := &Enquiry{
		Name:        form.Name,
		Email:       form.Email,
		Phone:       form.Phone,
		Message:     form.Message,
		ProductCode: form.ProductCode,
	}

	if form.ProductCode != "" {
		p, lookupErr := s.products.Get(ctx, form.ProductCode)
		switch {
		case errors.Is(lookupErr, product.ErrNotFound):
			var verrs ValidationErrors
			errors.As(err, &verrs)
			err = append(verrs, &ValidationError{Field: "productCode", Reason: "unknown product"})
		case lookupErr != nil:
			// The enquiry is still worth keeping without a quoted price.
			zctx.From(ctx).Warn("Quote lookup failed",
				zap.String("product_code", form.ProductCode),
				zap.Error(lookupErr),
			)
		default:
			e.QuotedPrice = decimal.NewNullDecimal(p.Price)
		}
	}
	if err != nil {
		return nil, err
	}

	e.ID = uuid.New().String()
	e.CreatedAt = s.now().UTC()
	if err := s.enquiries.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("create enquiry: %w", err)
	}
	return e, nil
}
