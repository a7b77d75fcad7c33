package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/practisync/sikka-client/internal/storage"
	"github.com/practisync/sikka-client/sikka"
)

// TransactionRepository implements the storage.TransactionRepository interface using PostgreSQL
type TransactionRepository struct {
	db *pgxpool.Pool
}

var _ storage.TransactionRepository = (*TransactionRepository)(nil)

// UpsertMany inserts or replaces the given transactions, keyed by their upstream serial number
func (repo *TransactionRepository) UpsertMany(ctx context.Context, transactions []sikka.Transaction, syncedAt int64) error {
	txn, err := repo.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer txn.Rollback(ctx)

	for _, transaction := range transactions {
		_, err := txn.Exec(ctx,
			`INSERT INTO transactions VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
				ON CONFLICT (transaction_sr_no) DO UPDATE SET
				claim_sr_no = $2, patient_id = $3, transaction_type = $4, transaction_date = $5,
				procedure_code = $6, description = $7, amount = $8, synced_at = $9`,
			transaction.TransactionSrNo, transaction.ClaimSrNo, transaction.PatientID, transaction.TransactionType,
			transaction.TransactionDate, transaction.ProcedureCode, transaction.Description, transaction.Amount, syncedAt)
		if err != nil {
			return err
		}
	}

	return txn.Commit(ctx)
}

// GetByClaim retrieves the mirrored transactions of a claim
func (repo *TransactionRepository) GetByClaim(ctx context.Context, claimSrNo string) ([]sikka.Transaction, error) {
	rows, err := repo.db.Query(ctx, "SELECT * FROM transactions WHERE claim_sr_no = $1 ORDER BY transaction_date", claimSrNo)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []sikka.Transaction{}, nil
		}
		return nil, err
	}
	defer rows.Close()

	objs := []sikka.Transaction{}
	for rows.Next() {
		obj := new(sikka.Transaction)
		var syncedAt int64
		if err := rows.Scan(&obj.TransactionSrNo, &obj.ClaimSrNo, &obj.PatientID, &obj.TransactionType,
			&obj.TransactionDate, &obj.ProcedureCode, &obj.Description, &obj.Amount, &syncedAt); err != nil {
			return nil, err
		}
		objs = append(objs, *obj)
	}

	return objs, nil
}

// Count returns the amount of mirrored transactions
func (repo *TransactionRepository) Count(ctx context.Context) (uint64, error) {
	var n uint64
	if err := repo.db.QueryRow(ctx, "SELECT COUNT(*) FROM transactions").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
