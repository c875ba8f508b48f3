package history

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// ledgerVersion is the layout of the runs table written by this build.
const ledgerVersion = 1

// ErrLedgerVersion is returned by Open when the ledger file was written by a
// build with a different runs table layout.
var ErrLedgerVersion = errors.New("run ledger version mismatch")

// prepareLedger creates the runs table on first use and refuses ledgers
// written with another layout. Runs are never migrated.
func (s *Store) prepareLedger(ctx context.Context) error {
	version, found, err := s.storedVersion(ctx)
	if err != nil {
		return err
	}
	if !found {
		return s.createLedger(ctx)
	}
	if version != ledgerVersion {
		return fmt.Errorf("%w: %s is version %d, this build writes version %d; move it aside to keep its runs",
			ErrLedgerVersion, s.path, version, ledgerVersion)
	}
	return nil
}

// storedVersion reports the version row of an existing ledger. found is
// false for a fresh database file.
func (s *Store) storedVersion(ctx context.Context) (int, bool, error) {
	var tables int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type = 'table' AND name = 'schema_version'",
	).Scan(&tables); err != nil {
		return 0, false, fmt.Errorf("inspect run ledger: %w", err)
	}
	if tables == 0 {
		return 0, false, nil
	}

	var version int
	err := s.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return 0, true, nil
	case err != nil:
		return 0, false, fmt.Errorf("read run ledger version: %w", err)
	}
	return version, true, nil
}

func (s *Store) createLedger(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin run ledger setup: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create runs table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", ledgerVersion); err != nil {
		return fmt.Errorf("stamp run ledger version: %w", err)
	}
	return tx.Commit()
}
