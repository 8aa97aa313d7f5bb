// Package storetest holds behavioural tests shared by every store driver.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gracechurch/portal/internal/portal/domain"
	"github.com/gracechurch/portal/internal/portal/store"
	"github.com/gracechurch/portal/pkg/idx"
	"github.com/stretchr/testify/require"
)

// Run exercises a driver. newStore must return a migrated, empty store.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("AllowedUsers", func(t *testing.T) { testAllowedUsers(t, newStore(t)) })
	t.Run("MarkUsedRace", func(t *testing.T) { testMarkUsedRace(t, newStore(t)) })
	t.Run("Profiles", func(t *testing.T) { testProfiles(t, newStore(t)) })
	t.Run("EmailLogs", func(t *testing.T) { testEmailLogs(t, newStore(t)) })
	t.Run("EmailSends", func(t *testing.T) { testEmailSends(t, newStore(t)) })
	t.Run("WithTx", func(t *testing.T) { testWithTx(t, newStore(t)) })
}

var base = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func invite(t *testing.T, s store.Store, email string, at time.Time) domain.AllowedUser {
	t.Helper()
	au, err := domain.NewAllowedUser(idx.NewAt(at).String(), email, "Invitee", nil, at)
	require.NoError(t, err)
	require.NoError(t, s.AllowedUsers().Create(context.Background(), au))
	return au
}

func testAllowedUsers(t *testing.T, s store.Store) {
	ctx := context.Background()
	repo := s.AllowedUsers()

	alice := invite(t, s, "alice@example.com", base)

	t.Run("lookup is case-insensitive", func(t *testing.T) {
		got, err := repo.GetAvailableByEmail(ctx, "ALICE@example.com")
		require.NoError(t, err)
		require.Equal(t, alice.ID, got.ID)
		require.False(t, got.IsUsed)
		require.Nil(t, got.RegisteredAt)
		require.True(t, got.CreatedAt.Equal(base))
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		dup, err := domain.NewAllowedUser(idx.New().String(), "Alice@Example.com", "", nil, base)
		require.NoError(t, err)
		require.ErrorIs(t, repo.Create(ctx, dup), store.ErrAlreadyExists)
	})

	t.Run("mark used hides the invitation from the gate", func(t *testing.T) {
		at := base.Add(time.Hour)
		require.NoError(t, repo.MarkUsed(ctx, "alice@example.com", at))

		_, err := repo.GetAvailableByEmail(ctx, "alice@example.com")
		require.ErrorIs(t, err, store.ErrNotFound)

		got, err := repo.GetByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		require.True(t, got.IsUsed)
		require.NotNil(t, got.RegisteredAt)
		require.True(t, got.RegisteredAt.Equal(at))

		require.ErrorIs(t, repo.MarkUsed(ctx, "alice@example.com", at), store.ErrConflict)
	})

	t.Run("reset round-trip", func(t *testing.T) {
		require.NoError(t, repo.Reset(ctx, "alice@example.com", base.Add(2*time.Hour)))

		got, err := repo.GetAvailableByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		require.Equal(t, alice.ID, got.ID)
		require.False(t, got.IsUsed)
		require.Nil(t, got.RegisteredAt)
	})

	t.Run("missing rows", func(t *testing.T) {
		require.ErrorIs(t, repo.MarkUsed(ctx, "nobody@example.com", base), store.ErrNotFound)
		require.ErrorIs(t, repo.Reset(ctx, "nobody@example.com", base), store.ErrNotFound)
		require.ErrorIs(t, repo.Delete(ctx, "nobody@example.com"), store.ErrNotFound)
		require.ErrorIs(t, repo.UpdateInvitationSentAt(ctx, "nobody@example.com", base), store.ErrNotFound)
		_, err := repo.GetByEmail(ctx, "nobody@example.com")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("update contact keeps used state", func(t *testing.T) {
		require.NoError(t, repo.MarkUsed(ctx, "alice@example.com", base.Add(3*time.Hour)))

		inviter := "admin-1"
		updated := alice
		updated.FullName = "Alice A"
		updated.InvitedBy = &inviter
		updated.InvitationSentAt = base.Add(4 * time.Hour)
		updated.UpdatedAt = base.Add(4 * time.Hour)
		require.NoError(t, repo.UpdateContact(ctx, updated))

		got, err := repo.GetByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		require.Equal(t, "Alice A", got.FullName)
		require.Equal(t, &inviter, got.InvitedBy)
		require.True(t, got.IsUsed)
	})

	t.Run("list newest first and delete", func(t *testing.T) {
		invite(t, s, "bob@example.com", base.Add(time.Minute))

		list, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		require.Equal(t, "bob@example.com", list[0].Email)
		require.Equal(t, "alice@example.com", list[1].Email)

		require.NoError(t, repo.Delete(ctx, "BOB@example.com"))
		list, err = repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
	})
}

func testMarkUsedRace(t *testing.T, s store.Store) {
	ctx := context.Background()
	invite(t, s, "race@example.com", base)

	const racers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for range racers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.AllowedUsers().MarkUsed(ctx, "race@example.com", base.Add(time.Minute))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, store.ErrConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, successes)
	require.Equal(t, racers-1, conflicts)
}

func testProfiles(t *testing.T, s store.Store) {
	ctx := context.Background()
	repo := s.Profiles()

	_, err := repo.GetByID(ctx, "user-1")
	require.ErrorIs(t, err, store.ErrNotFound)

	t.Run("set admin creates a missing row", func(t *testing.T) {
		require.NoError(t, repo.SetAdmin(ctx, "user-1", "Pastor@Example.com", base))

		p, err := repo.GetByID(ctx, "user-1")
		require.NoError(t, err)
		require.True(t, p.IsAdmin)
		require.Equal(t, "pastor@example.com", p.Email)
	})

	t.Run("upsert keeps admin fields of existing rows", func(t *testing.T) {
		require.NoError(t, repo.Upsert(ctx, domain.UserProfile{
			ID: "user-1", Email: "pastor@example.com", FullName: "Pastor P", Role: "member",
			CreatedAt: base, UpdatedAt: base.Add(time.Minute),
		}))

		p, err := repo.GetByID(ctx, "user-1")
		require.NoError(t, err)
		require.True(t, p.IsAdmin)
		require.Equal(t, domain.RoleAdmin, p.Role)
		require.Equal(t, "Pastor P", p.FullName)
	})

	t.Run("upsert does not blank existing fields", func(t *testing.T) {
		require.NoError(t, repo.Upsert(ctx, domain.UserProfile{
			ID: "user-1", Email: "pastor@example.com", CreatedAt: base, UpdatedAt: base.Add(2 * time.Minute),
		}))
		p, err := repo.GetByID(ctx, "user-1")
		require.NoError(t, err)
		require.Equal(t, "Pastor P", p.FullName)
	})

	t.Run("set admin on existing row", func(t *testing.T) {
		require.NoError(t, repo.Upsert(ctx, domain.UserProfile{
			ID: "user-2", Email: "member@example.com", CreatedAt: base, UpdatedAt: base,
		}))
		p, err := repo.GetByID(ctx, "user-2")
		require.NoError(t, err)
		require.False(t, p.HasAdminRole())
		require.Equal(t, "member", p.Role)

		require.NoError(t, repo.SetAdmin(ctx, "user-2", "member@example.com", base.Add(time.Minute)))
		p, err = repo.GetByID(ctx, "user-2")
		require.NoError(t, err)
		require.True(t, p.IsAdmin)
	})

	t.Run("list and delete", func(t *testing.T) {
		list, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		require.Equal(t, "member@example.com", list[0].Email)

		require.NoError(t, repo.Delete(ctx, "user-2"))
		require.ErrorIs(t, repo.Delete(ctx, "user-2"), store.ErrNotFound)
	})
}

func testEmailLogs(t *testing.T, s store.Store) {
	ctx := context.Background()
	repo := s.EmailLogs()

	for i := range 5 {
		at := base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Append(ctx, domain.EmailLogEntry{
			ID:        idx.NewAt(at).String(),
			Timestamp: at,
			Type:      domain.EmailInvitation,
			Recipient: "r@example.com",
			Status:    domain.EmailSuccess,
			Details:   map[string]any{"attempt": float64(i)},
		}))
	}

	recent, err := repo.ListRecent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	require.True(t, recent[0].Timestamp.Equal(base.Add(4*time.Minute)))
	require.Equal(t, float64(4), recent[0].Details["attempt"])
	require.Equal(t, domain.EmailSuccess, recent[0].Status)

	n, err := repo.DeleteBefore(ctx, base.Add(2*time.Minute))
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	recent, err = repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 3)
}

func testEmailSends(t *testing.T, s store.Store) {
	ctx := context.Background()
	repo := s.EmailSends()

	require.NoError(t, repo.Record(ctx, base, 1))
	require.NoError(t, repo.Record(ctx, base.Add(30*time.Second), 3))
	require.NoError(t, repo.Record(ctx, base.Add(2*time.Minute), 1))

	got, err := repo.ListSince(ctx, base.Add(time.Second))
	require.NoError(t, err)
	require.Len(t, got, 4)
	require.True(t, got[0].Equal(base.Add(30*time.Second)))
	require.True(t, got[3].Equal(base.Add(2*time.Minute)))

	n, err := repo.DeleteBefore(ctx, base.Add(time.Minute))
	require.NoError(t, err)
	require.EqualValues(t, 4, n)
}

func testWithTx(t *testing.T, s store.Store) {
	ctx := context.Background()
	invite(t, s, "tx@example.com", base)

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx store.Tx) error {
		require.NoError(t, tx.AllowedUsers().MarkUsed(ctx, "tx@example.com", base))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.AllowedUsers().GetAvailableByEmail(ctx, "tx@example.com")
	require.NoError(t, err, "rolled back transaction must not mark the invitation used")

	err = s.WithTx(ctx, func(tx store.Tx) error {
		return tx.AllowedUsers().MarkUsed(ctx, "tx@example.com", base)
	})
	require.NoError(t, err)

	_, err = s.AllowedUsers().GetAvailableByEmail(ctx, "tx@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}
