package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	apperrors "sneakerdex/internal/errors"
	"sneakerdex/internal/model"
)

func pricePtr(v int64) *decimal.Decimal {
	p := decimal.NewFromInt(v)
	return &p
}

func validInput() SneakerInput {
	return SneakerInput{Brand: "Nike", Model: "Air Max 90", Price: pricePtr(120), Color: "white", Size: 10}
}

func TestSneakerValidator_ValidateInput(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(in *SneakerInput)
		wantErr bool
	}{
		{name: "valid", mutate: func(in *SneakerInput) {}},
		{name: "free pair", mutate: func(in *SneakerInput) { in.Price = pricePtr(0) }},
		{name: "half sizes", mutate: func(in *SneakerInput) { in.Size = 9.5 }},
		{name: "size bounds inclusive", mutate: func(in *SneakerInput) { in.Size = 18 }},
		{name: "missing brand", mutate: func(in *SneakerInput) { in.Brand = "   " }, wantErr: true},
		{name: "missing model", mutate: func(in *SneakerInput) { in.Model = "" }, wantErr: true},
		{name: "short brand", mutate: func(in *SneakerInput) { in.Brand = "N" }, wantErr: true},
		{name: "missing color", mutate: func(in *SneakerInput) { in.Color = "" }, wantErr: true},
		{name: "negative price", mutate: func(in *SneakerInput) { in.Price = pricePtr(-1) }, wantErr: true},
		{name: "missing price", mutate: func(in *SneakerInput) { in.Price = nil }, wantErr: true},
		{name: "size too small", mutate: func(in *SneakerInput) { in.Size = 3.5 }, wantErr: true},
		{name: "size too large", mutate: func(in *SneakerInput) { in.Size = 18.5 }, wantErr: true},
	}

	v := NewSneakerValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			err := v.ValidateInput(&in)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSneakerValidator_ValidateInputTrims(t *testing.T) {
	in := SneakerInput{Brand: "  Nike ", Model: " Dunk ", Price: pricePtr(90), Color: " red ", Size: 9}
	assert.NoError(t, NewSneakerValidator().ValidateInput(&in))
	assert.Equal(t, "Nike", in.Brand)
	assert.Equal(t, "Dunk", in.Model)
	assert.Equal(t, "red", in.Color)
}

func TestSneakerValidator_MissingFieldsListed(t *testing.T) {
	in := SneakerInput{}
	err := NewSneakerValidator().ValidateInput(&in)
	var vErr *apperrors.ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.Equal(t, "the following fields are required: brand, model, price", vErr.Details)
}

func TestSneakerValidator_ValidateUpdate(t *testing.T) {
	negative := decimal.NewFromInt(-5)
	tiny := 2.0
	inStock := false

	v := NewSneakerValidator()
	assert.ErrorIs(t, v.ValidateUpdate(&model.SneakerUpdate{}), apperrors.ErrValidation)
	assert.ErrorIs(t, v.ValidateUpdate(&model.SneakerUpdate{Price: &negative}), apperrors.ErrValidation)
	assert.ErrorIs(t, v.ValidateUpdate(&model.SneakerUpdate{Size: &tiny}), apperrors.ErrValidation)
	assert.ErrorIs(t, v.ValidateUpdate(&model.SneakerUpdate{Brand: strPtr(" X ")}), apperrors.ErrValidation)
	assert.ErrorIs(t, v.ValidateUpdate(&model.SneakerUpdate{Color: strPtr("  ")}), apperrors.ErrValidation)
	assert.NoError(t, v.ValidateUpdate(&model.SneakerUpdate{InStock: &inStock}))

	color := " navy "
	u := model.SneakerUpdate{Color: &color}
	assert.NoError(t, v.ValidateUpdate(&u))
	assert.Equal(t, "navy", *u.Color)
}
