package sqlite

import (
	"context"
	"database/sql"

	"github.com/gracechurch/portal/internal/portal/store"
)

type txStore struct {
	tx *sql.Tx
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // outer DB stays open

// Ping is a no-op: the connection is held by the transaction.
func (t *txStore) Ping(ctx context.Context) error { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) AllowedUsers() store.AllowedUsers { return &allowedUsersRepo{db: t.tx} }
func (t *txStore) Profiles() store.Profiles         { return &profilesRepo{db: t.tx} }
func (t *txStore) EmailLogs() store.EmailLogs       { return &emailLogsRepo{db: t.tx} }
func (t *txStore) EmailSends() store.EmailSends     { return &emailSendsRepo{db: t.tx} }

func (t *txStore) ApplyMigrations() error { return nil } // migrations run before any tx
