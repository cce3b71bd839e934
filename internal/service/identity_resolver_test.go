package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"sneakerdex/internal/model"
	"sneakerdex/internal/repository"
)

func TestIdentityResolver_ResolveByAnyID(t *testing.T) {
	localUser := &model.User{ID: uuid.New(), Username: "alice"}
	googleUser := &model.User{ID: uuid.New(), Username: "bob", ExternalID: strPtr("1234567890")}
	missing := uuid.New()

	tests := []struct {
		name      string
		id        string
		setupMock func(m *MockUserRepository)
		want      *model.User
	}{
		{
			name: "canonical id",
			id:   localUser.ID.String(),
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, localUser.ID, repository.PublicUserColumns).Return(localUser, nil)
			},
			want: localUser,
		},
		{
			name: "external id skips canonical lookup",
			id:   "1234567890",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByExternalID", mock.Anything, "1234567890", repository.PublicUserColumns).Return(googleUser, nil)
			},
			want: googleUser,
		},
		{
			name: "uuid-shaped external id falls through",
			id:   missing.String(),
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, missing, repository.PublicUserColumns).Return(nil, gormNotFound)
				m.On("FindByExternalID", mock.Anything, missing.String(), repository.PublicUserColumns).Return(googleUser, nil)
			},
			want: googleUser,
		},
		{
			name: "neither matches",
			id:   "unknown",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByExternalID", mock.Anything, "unknown", repository.PublicUserColumns).Return(nil, gormNotFound)
			},
			want: nil,
		},
		{
			name:      "empty id",
			id:        "",
			setupMock: func(m *MockUserRepository) {},
			want:      nil,
		},
		{
			name: "storage error resolves to nil",
			id:   localUser.ID.String(),
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, localUser.ID, repository.PublicUserColumns).Return(nil, assert.AnError)
				m.On("FindByExternalID", mock.Anything, localUser.ID.String(), repository.PublicUserColumns).Return(nil, assert.AnError)
			},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			tt.setupMock(repo)
			resolver := NewIdentityResolver(repo, discardLogger())

			got := resolver.ResolveByAnyID(context.Background(), tt.id)

			assert.Equal(t, tt.want, got)
			repo.AssertExpectations(t)
		})
	}
}

func TestIdentityResolver_SelectWithSecret(t *testing.T) {
	user := &model.User{ID: uuid.New(), Username: "alice", PasswordHash: "hash"}
	withSecret := append(append([]string{}, repository.PublicUserColumns...), "password_hash")

	repo := new(MockUserRepository)
	repo.On("FindByID", mock.Anything, user.ID, withSecret).Return(user, nil)
	resolver := NewIdentityResolver(repo, discardLogger())

	got := resolver.ResolveByAnyIDSelect(context.Background(), user.ID.String(), SelectWithSecret)

	assert.Equal(t, "hash", got.PasswordHash)
	repo.AssertExpectations(t)
}

func TestIdentityResolver_ResolveTaggedIdentifiers(t *testing.T) {
	user := &model.User{ID: uuid.New(), Username: "alice", ExternalID: strPtr("g1")}
	repo := new(MockUserRepository)
	repo.On("FindByID", mock.Anything, user.ID, repository.PublicUserColumns).Return(user, nil)
	repo.On("FindByExternalID", mock.Anything, "g1", repository.PublicUserColumns).Return(user, nil)
	resolver := NewIdentityResolver(repo, discardLogger())
	ctx := context.Background()

	assert.Equal(t, user, resolver.Resolve(ctx, LocalID(user.ID), SelectPublic))
	assert.Equal(t, user, resolver.Resolve(ctx, ExternalID("g1"), SelectPublic))
	assert.Nil(t, resolver.Resolve(ctx, ExternalID(""), SelectPublic))
	assert.Nil(t, resolver.Resolve(ctx, nil, SelectPublic))
}

func TestIdentityResolver_Idempotent(t *testing.T) {
	s := newStack(t, nil)
	ctx := context.Background()
	user := &model.User{Username: "alice", Email: "alice@x.com", PasswordHash: "h", ExternalID: strPtr("g1")}
	if err := s.users.Create(ctx, user); err != nil {
		t.Fatal(err)
	}

	for _, id := range []string{user.ID.String(), "g1", "nope", uuid.NewString()} {
		first := s.resolver.ResolveByAnyID(ctx, id)
		second := s.resolver.ResolveByAnyID(ctx, id)
		assert.Equal(t, first, second, id)
		if first != nil {
			assert.Empty(t, first.PasswordHash)
		}
	}
}
