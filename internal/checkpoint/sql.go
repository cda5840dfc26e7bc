package checkpoint

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/JaimeStill/screener/pkg/repository"
)

const (
	upsertQuery = `
		INSERT INTO checkpoints (run_id, completed_batches, total_batches, data, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (run_id) DO UPDATE SET
			completed_batches = excluded.completed_batches,
			total_batches = excluded.total_batches,
			data = excluded.data,
			updated_at = excluded.updated_at`

	loadQuery   = `SELECT data FROM checkpoints WHERE run_id = ?`
	deleteQuery = `DELETE FROM checkpoints WHERE run_id = ?`
)

// SQLStore keeps checkpoints in the checkpoints table of a SQLite or
// PostgreSQL database. The schema is applied by Migrate.
type SQLStore struct {
	db     *sql.DB
	upsert string
	load   string
	delete string
}

// NewSQLStore creates a store over db. driver selects placeholder syntax.
func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	d := repository.DialectFor(driver)
	return &SQLStore{
		db:     db,
		upsert: d.Rebind(upsertQuery),
		load:   d.Rebind(loadQuery),
		delete: d.Rebind(deleteQuery),
	}
}

func (s *SQLStore) Save(ctx context.Context, cp *Checkpoint) error {
	data, err := encode(cp)
	if err != nil {
		return err
	}

	_, err = repository.WithTx(ctx, s.db, func(tx *sql.Tx) (struct{}, error) {
		_, err := tx.ExecContext(ctx, s.upsert,
			cp.RunID, cp.CompletedBatches, cp.TotalBatches, string(data), cp.UpdatedAt.UTC(),
		)
		return struct{}{}, err
	})
	if err != nil {
		return fmt.Errorf("save checkpoint %s: %w", cp.RunID, repository.MapError(err, ErrNotFound))
	}
	return nil
}

func (s *SQLStore) Load(ctx context.Context, runID string) (*Checkpoint, error) {
	if err := ValidateRunID(runID); err != nil {
		return nil, err
	}

	data, err := repository.QueryOne(ctx, s.db, s.load, []any{runID}, func(sc repository.Scanner) ([]byte, error) {
		var raw []byte
		err := sc.Scan(&raw)
		return raw, err
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound)
	}

	return decode(runID, data)
}

func (s *SQLStore) Delete(ctx context.Context, runID string) error {
	if err := ValidateRunID(runID); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, s.delete, runID); err != nil {
		return fmt.Errorf("delete checkpoint %s: %w", runID, repository.MapError(err, ErrNotFound))
	}
	return nil
}
