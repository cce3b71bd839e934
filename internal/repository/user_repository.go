package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "sneakerdex/internal/errors"
	"sneakerdex/internal/model"
)

// PublicUserColumns is every users column except the password hash.
var PublicUserColumns = []string{"id", "username", "email", "google_id", "created_at", "updated_at"}

// UserRepository defines persistence operations.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	// FindByID, FindByExternalID and FindByEmail load only columns; an empty
	// list loads PublicUserColumns.
	FindByID(ctx context.Context, id uuid.UUID, columns []string) (*model.User, error)
	FindByExternalID(ctx context.Context, externalID string, columns []string) (*model.User, error)
	FindByEmail(ctx context.Context, email string, columns []string) (*model.User, error)
	FindByUsernameWithSecret(ctx context.Context, username string) (*model.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	// LinkExternalID binds externalID to the user only if it has none yet and
	// reports whether a row was changed.
	LinkExternalID(ctx context.Context, id uuid.UUID, externalID string) (bool, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return translateDuplicate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID, columns []string) (*model.User, error) {
	return r.findOne(ctx, columns, "id = ?", id)
}

func (r *userRepository) FindByExternalID(ctx context.Context, externalID string, columns []string) (*model.User, error) {
	return r.findOne(ctx, columns, "google_id = ?", externalID)
}

func (r *userRepository) FindByEmail(ctx context.Context, email string, columns []string) (*model.User, error) {
	return r.findOne(ctx, columns, "email = ?", email)
}

func (r *userRepository) FindByUsernameWithSecret(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userRepository) LinkExternalID(ctx context.Context, id uuid.UUID, externalID string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND google_id IS NULL", id).
		Update("google_id", externalID)
	if res.Error != nil {
		return false, translateDuplicate(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *userRepository) findOne(ctx context.Context, columns []string, query string, arg any) (*model.User, error) {
	if len(columns) == 0 {
		columns = PublicUserColumns
	}
	var user model.User
	if err := r.db.WithContext(ctx).Select(columns).Where(query, arg).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// translateDuplicate normalizes unique-constraint violations to
// gorm.ErrDuplicatedKey for dialects whose errors gorm does not translate.
func translateDuplicate(err error) error {
	if err == nil || errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}
	if apperrors.IsDuplicateKey(err) {
		return fmt.Errorf("%w: %v", gorm.ErrDuplicatedKey, err)
	}
	return err
}
