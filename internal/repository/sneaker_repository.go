package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sneakerdex/internal/model"
)

// SneakerRepository defines sneaker persistence. Every read and write is
// scoped to the owning user.
type SneakerRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Sneaker, error)
	FindOwned(ctx context.Context, id, userID uuid.UUID) (*model.Sneaker, error)
	FindOwnedByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]model.Sneaker, error)
	Create(ctx context.Context, sneaker *model.Sneaker) error
	UpdateOwned(ctx context.Context, id, userID uuid.UUID, update model.SneakerUpdate) (*model.Sneaker, error)
	DeleteOwned(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error)
	// Transaction methods
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo SneakerRepository) error) error
}

type sneakerRepository struct {
	db *gorm.DB
}

// NewSneakerRepository creates a new sneaker repository.
func NewSneakerRepository(db *gorm.DB) SneakerRepository {
	return &sneakerRepository{db: db}
}

// ListByUser returns the user's sneakers, newest first.
func (r *sneakerRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Sneaker, error) {
	sneakers := []model.Sneaker{}
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&sneakers).Error; err != nil {
		return nil, err
	}
	return sneakers, nil
}

// FindOwned returns gorm.ErrRecordNotFound when the sneaker does not exist
// or belongs to someone else.
func (r *sneakerRepository) FindOwned(ctx context.Context, id, userID uuid.UUID) (*model.Sneaker, error) {
	var sneaker model.Sneaker
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&sneaker).Error; err != nil {
		return nil, err
	}
	return &sneaker, nil
}

func (r *sneakerRepository) FindOwnedByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) ([]model.Sneaker, error) {
	sneakers := []model.Sneaker{}
	if len(ids) == 0 {
		return sneakers, nil
	}
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, ids).
		Order("created_at DESC").
		Find(&sneakers).Error; err != nil {
		return nil, err
	}
	return sneakers, nil
}

func (r *sneakerRepository) Create(ctx context.Context, sneaker *model.Sneaker) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(sneaker).Error
}

// UpdateOwned applies the non-nil fields of update and returns the stored row.
func (r *sneakerRepository) UpdateOwned(ctx context.Context, id, userID uuid.UUID, update model.SneakerUpdate) (*model.Sneaker, error) {
	var updated model.Sneaker
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&updated).Error; err != nil {
			return err
		}
		if err := tx.Model(&updated).Updates(updateColumns(update)).Error; err != nil {
			return err
		}
		return tx.Where("id = ? AND user_id = ?", id, userID).First(&updated).Error
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *sneakerRepository) DeleteOwned(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, ids).
		Delete(&model.Sneaker{})
	return res.RowsAffected, res.Error
}

// WithTransaction executes a function within a database transaction.
func (r *sneakerRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo SneakerRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &sneakerRepository{db: tx}
		return fn(ctx, txRepo)
	})
}

// updateColumns maps an update onto column names. A map is used so that
// zero values such as InStock=false or Price=0 are written.
func updateColumns(u model.SneakerUpdate) map[string]any {
	cols := map[string]any{}
	if u.Brand != nil {
		cols["brand"] = *u.Brand
	}
	if u.Model != nil {
		cols["model"] = *u.Model
	}
	if u.Price != nil {
		cols["price"] = *u.Price
	}
	if u.Color != nil {
		cols["color"] = *u.Color
	}
	if u.Size != nil {
		cols["size"] = *u.Size
	}
	if u.InStock != nil {
		cols["in_stock"] = *u.InStock
	}
	return cols
}
