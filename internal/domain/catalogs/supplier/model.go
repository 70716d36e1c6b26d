// Package supplier provides the Supplier catalog.
package supplier

import (
	"context"
	"regexp"

	"almacen/internal/core/apperror"
	"almacen/internal/core/entity"
)

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Supplier represents a vendor purchases are registered against.
type Supplier struct {
	entity.Catalog

	// TaxID is the fiscal identifier (RUC)
	TaxID string `db:"tax_id" json:"taxId"`

	// Address is the fiscal address
	Address *string `db:"address" json:"address,omitempty"`

	// Phone is an optional contact number
	Phone *string `db:"phone" json:"phone,omitempty"`

	// Email is an optional contact address
	Email *string `db:"email" json:"email,omitempty"`
}

// New creates a new Supplier with required fields.
func New(code, name, taxID string) *Supplier {
	return &Supplier{
		Catalog: entity.NewCatalog(code, name),
		TaxID:   taxID,
	}
}

// Validate implements entity.Validatable interface.
func (s *Supplier) Validate(ctx context.Context) error {
	if err := s.Catalog.Validate(ctx); err != nil {
		return err
	}

	if s.TaxID == "" {
		return apperror.NewValidation("tax id is required").
			WithDetail("field", "taxId")
	}
	if s.Email != nil && *s.Email != "" && !emailRe.MatchString(*s.Email) {
		return apperror.NewValidation("invalid email").
			WithDetail("field", "email").
			WithDetail("value", *s.Email)
	}

	return nil
}
