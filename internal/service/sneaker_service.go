package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "sneakerdex/internal/errors"
	"sneakerdex/internal/model"
	"sneakerdex/internal/repository"
)

// BulkDeleteMismatchError is returned when some requested sneakers are
// missing or owned by someone else. Nothing is deleted in that case.
type BulkDeleteMismatchError struct {
	Found     []model.Sneaker
	Requested int
}

func (e *BulkDeleteMismatchError) Error() string {
	return fmt.Sprintf("some sneaker ids were not found: %d of %d", len(e.Found), e.Requested)
}

// SneakerService manages a user's collection. Every operation is scoped to
// the owner passed in.
type SneakerService interface {
	List(ctx context.Context, owner uuid.UUID) ([]model.Sneaker, error)
	Get(ctx context.Context, owner, id uuid.UUID) (*model.Sneaker, error)
	Create(ctx context.Context, owner uuid.UUID, in SneakerInput) (*model.Sneaker, error)
	Update(ctx context.Context, owner, id uuid.UUID, update model.SneakerUpdate) (*model.Sneaker, error)
	Delete(ctx context.Context, owner, id uuid.UUID) (*model.Sneaker, error)
	BulkDelete(ctx context.Context, owner uuid.UUID, ids []uuid.UUID) ([]model.Sneaker, error)
}

type sneakerService struct {
	repo      repository.SneakerRepository
	validator *SneakerValidator
	logger    *slog.Logger
}

// NewSneakerService creates a new sneaker service.
func NewSneakerService(repo repository.SneakerRepository, logger *slog.Logger) SneakerService {
	return &sneakerService{repo: repo, validator: NewSneakerValidator(), logger: logger}
}

func (s *sneakerService) List(ctx context.Context, owner uuid.UUID) ([]model.Sneaker, error) {
	sneakers, err := s.repo.ListByUser(ctx, owner)
	if err != nil {
		return nil, s.internal(ctx, "list sneakers", err)
	}
	return sneakers, nil
}

func (s *sneakerService) Get(ctx context.Context, owner, id uuid.UUID) (*model.Sneaker, error) {
	sneaker, err := s.repo.FindOwned(ctx, id, owner)
	if err != nil {
		return nil, s.notFoundOrInternal(ctx, "get sneaker", err)
	}
	return sneaker, nil
}

func (s *sneakerService) Create(ctx context.Context, owner uuid.UUID, in SneakerInput) (*model.Sneaker, error) {
	if err := s.validator.ValidateInput(&in); err != nil {
		return nil, err
	}

	inStock := true
	if in.InStock != nil {
		inStock = *in.InStock
	}
	sneaker := &model.Sneaker{
		UserID:  owner,
		Brand:   in.Brand,
		Model:   in.Model,
		Price:   *in.Price,
		Color:   in.Color,
		Size:    in.Size,
		InStock: inStock,
	}
	if err := s.repo.Create(ctx, sneaker); err != nil {
		return nil, s.internal(ctx, "create sneaker", err)
	}
	return sneaker, nil
}

func (s *sneakerService) Update(ctx context.Context, owner, id uuid.UUID, update model.SneakerUpdate) (*model.Sneaker, error) {
	if err := s.validator.ValidateUpdate(&update); err != nil {
		return nil, err
	}

	sneaker, err := s.repo.UpdateOwned(ctx, id, owner, update)
	if err != nil {
		return nil, s.notFoundOrInternal(ctx, "update sneaker", err)
	}
	return sneaker, nil
}

func (s *sneakerService) Delete(ctx context.Context, owner, id uuid.UUID) (*model.Sneaker, error) {
	deleted, err := s.BulkDelete(ctx, owner, []uuid.UUID{id})
	if err != nil {
		var mismatch *BulkDeleteMismatchError
		if errors.As(err, &mismatch) {
			return nil, apperrors.ErrSneakerNotFound
		}
		return nil, err
	}
	return &deleted[0], nil
}

// BulkDelete removes all of ids or none of them.
func (s *sneakerService) BulkDelete(ctx context.Context, owner uuid.UUID, ids []uuid.UUID) ([]model.Sneaker, error) {
	if len(ids) == 0 {
		return nil, apperrors.NewValidationError("invalid or empty sneaker ids provided")
	}
	ids = dedupe(ids)

	var deleted []model.Sneaker
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, repo repository.SneakerRepository) error {
		found, err := repo.FindOwnedByIDs(ctx, owner, ids)
		if err != nil {
			return err
		}
		if len(found) != len(ids) {
			return &BulkDeleteMismatchError{Found: found, Requested: len(ids)}
		}
		if _, err := repo.DeleteOwned(ctx, owner, ids); err != nil {
			return err
		}
		deleted = found
		return nil
	})
	if err != nil {
		var mismatch *BulkDeleteMismatchError
		if errors.As(err, &mismatch) {
			return nil, err
		}
		return nil, s.internal(ctx, "delete sneakers", err)
	}
	return deleted, nil
}

func (s *sneakerService) notFoundOrInternal(ctx context.Context, op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrSneakerNotFound
	}
	return s.internal(ctx, op, err)
}

func (s *sneakerService) internal(ctx context.Context, op string, err error) error {
	s.logger.ErrorContext(ctx, op+" failed", "error", err)
	return apperrors.ErrInternal
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
