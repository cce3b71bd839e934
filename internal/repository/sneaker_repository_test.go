package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"sneakerdex/internal/model"
)

func seedSneaker(t *testing.T, repo SneakerRepository, owner uuid.UUID, brand string, createdAt time.Time) *model.Sneaker {
	t.Helper()
	s := &model.Sneaker{
		UserID:    owner,
		Brand:     brand,
		Model:     "Model " + brand,
		Price:     decimal.RequireFromString("120.50"),
		Color:     "white",
		Size:      10.5,
		InStock:   true,
		CreatedAt: createdAt,
	}
	require.NoError(t, repo.Create(context.Background(), s))
	return s
}

func TestSneakerRepository_ListByUserNewestFirst(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	repo := NewSneakerRepository(db)
	alice := seedUser(t, users, "alice", nil)
	bob := seedUser(t, users, "bob", nil)

	base := time.Now().Add(-time.Hour)
	seedSneaker(t, repo, alice.ID, "Nike", base)
	seedSneaker(t, repo, alice.ID, "Adidas", base.Add(time.Minute))
	seedSneaker(t, repo, bob.ID, "Puma", base)

	list, err := repo.ListByUser(context.Background(), alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Adidas", list[0].Brand)
	assert.Equal(t, "Nike", list[1].Brand)
	assert.True(t, list[0].Price.Equal(decimal.RequireFromString("120.50")))

	empty, err := repo.ListByUser(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestSneakerRepository_FindOwned(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	repo := NewSneakerRepository(db)
	alice := seedUser(t, users, "alice", nil)
	bob := seedUser(t, users, "bob", nil)
	s := seedSneaker(t, repo, alice.ID, "Nike", time.Now())

	found, err := repo.FindOwned(context.Background(), s.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, found.ID)

	_, err = repo.FindOwned(context.Background(), s.ID, bob.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSneakerRepository_UpdateOwned(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	repo := NewSneakerRepository(db)
	alice := seedUser(t, users, "alice", nil)
	bob := seedUser(t, users, "bob", nil)
	s := seedSneaker(t, repo, alice.ID, "Nike", time.Now())
	ctx := context.Background()

	inStock := false
	price := decimal.Zero
	updated, err := repo.UpdateOwned(ctx, s.ID, alice.ID, model.SneakerUpdate{
		Color:   strPtr("black"),
		InStock: &inStock,
		Price:   &price,
	})
	require.NoError(t, err)
	assert.Equal(t, "black", updated.Color)
	assert.False(t, updated.InStock)
	assert.True(t, updated.Price.IsZero())
	assert.Equal(t, "Nike", updated.Brand)

	_, err = repo.UpdateOwned(ctx, s.ID, bob.ID, model.SneakerUpdate{Color: strPtr("red")})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	stored, err := repo.FindOwned(ctx, s.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "black", stored.Color)
}

func TestSneakerRepository_DeleteOwned(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	repo := NewSneakerRepository(db)
	alice := seedUser(t, users, "alice", nil)
	bob := seedUser(t, users, "bob", nil)
	a1 := seedSneaker(t, repo, alice.ID, "Nike", time.Now())
	a2 := seedSneaker(t, repo, alice.ID, "Adidas", time.Now())
	b1 := seedSneaker(t, repo, bob.ID, "Puma", time.Now())
	ctx := context.Background()

	owned, err := repo.FindOwnedByIDs(ctx, alice.ID, []uuid.UUID{a1.ID, a2.ID, b1.ID})
	require.NoError(t, err)
	assert.Len(t, owned, 2)

	n, err := repo.DeleteOwned(ctx, alice.ID, []uuid.UUID{a1.ID, b1.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = repo.FindOwned(ctx, b1.ID, bob.ID)
	assert.NoError(t, err, "another user's sneaker must survive")

	n, err = repo.DeleteOwned(ctx, alice.ID, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSneakerRepository_WithTransactionRollsBack(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	repo := NewSneakerRepository(db)
	alice := seedUser(t, users, "alice", nil)
	s := seedSneaker(t, repo, alice.ID, "Nike", time.Now())
	ctx := context.Background()

	err := repo.WithTransaction(ctx, func(ctx context.Context, tx SneakerRepository) error {
		if _, err := tx.DeleteOwned(ctx, alice.ID, []uuid.UUID{s.ID}); err != nil {
			return err
		}
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	_, err = repo.FindOwned(ctx, s.ID, alice.ID)
	assert.NoError(t, err)
}
