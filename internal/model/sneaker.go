package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func init() {
	// prices render as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

// Sneaker is a single pair in a user's collection.
type Sneaker struct {
	ID        uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	UserID    uuid.UUID       `json:"userId" gorm:"type:char(36);not null;index"`
	Brand     string          `json:"brand" gorm:"size:255;not null"`
	Model     string          `json:"model" gorm:"size:255;not null"`
	Price     decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null;default:0"`
	Color     string          `json:"color" gorm:"size:100;not null"`
	Size      float64         `json:"size" gorm:"not null"`
	InStock   bool            `json:"inStock" gorm:"not null"`
	CreatedAt time.Time       `json:"createdAt" gorm:"index"`
	UpdatedAt time.Time       `json:"updatedAt"`

	// Relations
	User User `json:"-" gorm:"foreignKey:UserID"`
}

// BeforeCreate sets UUID before creating the record.
func (s *Sneaker) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// SneakerUpdate lists the mutable fields of a sneaker; nil means unchanged.
type SneakerUpdate struct {
	Brand   *string
	Model   *string
	Price   *decimal.Decimal
	Color   *string
	Size    *float64
	InStock *bool
}

// Empty reports whether the update changes nothing.
func (u SneakerUpdate) Empty() bool {
	return u.Brand == nil && u.Model == nil && u.Price == nil &&
		u.Color == nil && u.Size == nil && u.InStock == nil
}
