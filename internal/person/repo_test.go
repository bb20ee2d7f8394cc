package person

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPersonRepo_CreateAndFind(t *testing.T) {
	t.Parallel()
	repo := NewPersonRepo(zap.NewNop())
	ctx := context.Background()

	owner, err := repo.Create(ctx, &PersonDTO{
		Email:    "  Owner@Example.com ",
		Username: "owner01",
		Profile:  &OwnerProfile{ResidencesToPublish: 2},
	})
	require.NoError(t, err)
	require.Equal(t, "owner@example.com", owner.Email)
	require.Equal(t, RoleOwner, owner.Role())
	require.Equal(t, AccountPending, owner.AccountStatus())
	require.Equal(t, 2, owner.ResidencesToPublish())

	renter, err := repo.Create(ctx, &PersonDTO{Email: "renter@example.com", Username: "renter01"})
	require.NoError(t, err)
	require.Equal(t, RoleRenter, renter.Role())
	require.Equal(t, AccountActive, renter.AccountStatus())
	require.Zero(t, renter.ResidencesToPublish())

	got, err := repo.FindByEmail(ctx, "OWNER@example.com")
	require.NoError(t, err)
	require.Equal(t, owner.ID, got.ID)

	_, err = repo.FindByID(ctx, 99)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPersonRepo_Duplicates(t *testing.T) {
	t.Parallel()
	repo := NewPersonRepo(zap.NewNop())
	ctx := context.Background()

	_, err := repo.Create(ctx, &PersonDTO{Email: "a@example.com", Username: "alpha"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &PersonDTO{Email: "A@example.com", Username: "beta"})
	require.ErrorIs(t, err, ErrDuplicateEmail)

	_, err = repo.Create(ctx, &PersonDTO{Email: "b@example.com", Username: "alpha"})
	require.ErrorIs(t, err, ErrDuplicateUsername)
}

func TestPersonRepo_SetAccountStatus(t *testing.T) {
	t.Parallel()
	repo := NewPersonRepo(zap.NewNop())
	ctx := context.Background()

	owner, err := repo.Create(ctx, &PersonDTO{
		Email:    "o@example.com",
		Username: "owner",
		Profile:  &OwnerProfile{ResidencesToPublish: 1},
	})
	require.NoError(t, err)

	require.NoError(t, repo.SetAccountStatus(ctx, owner.ID, AccountActive))
	got, err := repo.FindByID(ctx, owner.ID)
	require.NoError(t, err)
	require.Equal(t, AccountActive, got.AccountStatus())

	// returned copies are detached from the stored record
	got.Profile.AccountStatus = AccountSuspended
	again, err := repo.FindByID(ctx, owner.ID)
	require.NoError(t, err)
	require.Equal(t, AccountActive, again.AccountStatus())

	require.ErrorIs(t, repo.SetAccountStatus(ctx, 42, AccountActive), ErrNotFound)
}
