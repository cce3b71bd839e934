package service

import (
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"sneakerdex/internal/errors"
	"sneakerdex/internal/model"
)

const (
	minNameLength = 2
	minShoeSize   = 4
	maxShoeSize   = 18
)

// SneakerInput is a new sneaker as submitted by its owner.
type SneakerInput struct {
	Brand   string
	Model   string
	Price   *decimal.Decimal
	Color   string
	Size    float64
	InStock *bool
}

// SneakerValidator validates and normalizes sneaker fields.
type SneakerValidator struct{}

// NewSneakerValidator creates a new sneaker validator.
func NewSneakerValidator() *SneakerValidator {
	return &SneakerValidator{}
}

// ValidateInput trims text fields in place and checks every field.
func (v *SneakerValidator) ValidateInput(in *SneakerInput) error {
	in.Brand = strings.TrimSpace(in.Brand)
	in.Model = strings.TrimSpace(in.Model)
	in.Color = strings.TrimSpace(in.Color)

	var missing []string
	if in.Brand == "" {
		missing = append(missing, "brand")
	}
	if in.Model == "" {
		missing = append(missing, "model")
	}
	if in.Price == nil {
		missing = append(missing, "price")
	}
	if len(missing) > 0 {
		return errors.NewValidationError("the following fields are required: %s", strings.Join(missing, ", "))
	}

	if err := v.validateName("brand", in.Brand); err != nil {
		return err
	}
	if err := v.validateName("model", in.Model); err != nil {
		return err
	}
	if in.Color == "" {
		return errors.NewValidationError("color is required")
	}
	if err := v.validatePrice(*in.Price); err != nil {
		return err
	}
	return v.validateSize(in.Size)
}

// ValidateUpdate trims text fields in place and checks the fields present.
func (v *SneakerValidator) ValidateUpdate(u *model.SneakerUpdate) error {
	if u.Empty() {
		return errors.NewValidationError("at least one valid field must be provided for update: brand, model, price, color, size, inStock")
	}

	if u.Brand != nil {
		*u.Brand = strings.TrimSpace(*u.Brand)
		if err := v.validateName("brand", *u.Brand); err != nil {
			return err
		}
	}
	if u.Model != nil {
		*u.Model = strings.TrimSpace(*u.Model)
		if err := v.validateName("model", *u.Model); err != nil {
			return err
		}
	}
	if u.Color != nil {
		*u.Color = strings.TrimSpace(*u.Color)
		if *u.Color == "" {
			return errors.NewValidationError("color is required")
		}
	}
	if u.Price != nil {
		if err := v.validatePrice(*u.Price); err != nil {
			return err
		}
	}
	if u.Size != nil {
		return v.validateSize(*u.Size)
	}
	return nil
}

func (v *SneakerValidator) validateName(field, value string) error {
	if utf8.RuneCountInString(value) < minNameLength {
		return errors.NewValidationError("%s must be at least %d characters long", field, minNameLength)
	}
	return nil
}

func (v *SneakerValidator) validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return errors.NewValidationError("price cannot be negative")
	}
	return nil
}

func (v *SneakerValidator) validateSize(size float64) error {
	if size < minShoeSize {
		return errors.NewValidationError("size must be at least %d", minShoeSize)
	}
	if size > maxShoeSize {
		return errors.NewValidationError("size cannot be greater than %d", maxShoeSize)
	}
	return nil
}
