package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/gracechurch/portal/internal/portal/service"
	"github.com/stretchr/testify/require"
)

func TestRegistry_FindAvailable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, fixtureOpts{autoConfirm: true})

	_, err := f.registry.FindAvailable(ctx, "alice@example.com")
	require.ErrorIs(t, err, service.ErrNotFound)

	f.invite(t, "Alice@Example.com", "Alice")

	au, err := f.registry.FindAvailable(ctx, "ALICE@example.COM")
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", au.Email)
	require.False(t, au.IsUsed)
	require.Nil(t, au.RegisteredAt)

	require.NoError(t, f.registry.MarkUsed(ctx, "alice@example.com"))

	_, err = f.registry.FindAvailable(ctx, "alice@example.com")
	require.ErrorIs(t, err, service.ErrNotFound)
	_, err = f.registry.RequireAvailable(ctx, "alice@example.com")
	require.ErrorIs(t, err, service.ErrAlreadyUsed)
	_, err = f.registry.RequireAvailable(ctx, "nobody@example.com")
	require.ErrorIs(t, err, service.ErrNotFound)

	used, err := f.registry.FindAny(ctx, "alice@example.com")
	require.NoError(t, err)
	require.True(t, used.IsUsed)
	require.NotNil(t, used.RegisteredAt)
}

func TestRegistry_ResetRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, fixtureOpts{autoConfirm: true})
	f.invite(t, "carol@example.com", "Carol")

	original, err := f.registry.FindAvailable(ctx, "carol@example.com")
	require.NoError(t, err)

	require.NoError(t, f.registry.MarkUsed(ctx, "carol@example.com"))
	require.ErrorIs(t, f.registry.MarkUsed(ctx, "carol@example.com"), service.ErrAlreadyUsed)
	require.NoError(t, f.registry.Reset(ctx, "carol@example.com"))

	again, err := f.registry.FindAvailable(ctx, "carol@example.com")
	require.NoError(t, err)
	require.Equal(t, original.ID, again.ID)
	require.Equal(t, original.Email, again.Email)
	require.Equal(t, original.FullName, again.FullName)
	require.False(t, again.IsUsed)
	require.Nil(t, again.RegisteredAt)

	require.ErrorIs(t, f.registry.Reset(ctx, "nobody@example.com"), service.ErrNotFound)
	require.ErrorIs(t, f.registry.MarkUsed(ctx, "nobody@example.com"), service.ErrNotFound)
}

func TestRegistry_MarkUsedRace(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, fixtureOpts{autoConfirm: true})
	f.invite(t, "dave@example.com", "Dave")

	const workers = 16
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = f.registry.MarkUsed(ctx, "dave@example.com")
		}()
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		require.ErrorIs(t, err, service.ErrAlreadyUsed)
	}
	require.Equal(t, 1, wins)
}

func TestRegistry_UpsertInvite(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, fixtureOpts{autoConfirm: true})
	inviter := "admin-1"

	au, created, err := f.registry.UpsertInvite(ctx, service.UpsertInviteParams{
		Email: "erin@example.com", FullName: "Erin", InvitedBy: &inviter,
	})
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, "admin-1", *au.InvitedBy)

	_, _, err = f.registry.UpsertInvite(ctx, service.UpsertInviteParams{Email: "ERIN@example.com", FullName: "Erin B"})
	require.ErrorIs(t, err, service.ErrDuplicateEmail)

	require.NoError(t, f.registry.MarkUsed(ctx, "erin@example.com"))

	updated, created, err := f.registry.UpsertInvite(ctx, service.UpsertInviteParams{
		Email: "erin@example.com", FullName: "Erin Baker", Update: true,
	})
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, au.ID, updated.ID)

	stored, err := f.registry.FindAny(ctx, "erin@example.com")
	require.NoError(t, err)
	require.Equal(t, "Erin Baker", stored.FullName)
	require.True(t, stored.IsUsed, "updates never touch the used state")
	require.Equal(t, "admin-1", *stored.InvitedBy)

	_, _, err = f.registry.UpsertInvite(ctx, service.UpsertInviteParams{Email: "not-an-email"})
	require.ErrorIs(t, err, service.ErrInvalidRequest)

	list, err := f.registry.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, f.registry.Delete(ctx, "erin@example.com"))
	require.ErrorIs(t, f.registry.Delete(ctx, "erin@example.com"), service.ErrNotFound)
}
