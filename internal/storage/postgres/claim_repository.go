package postgres

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/practisync/sikka-client/internal/storage"
	"github.com/practisync/sikka-client/sikka"
)

// ClaimRepository implements the storage.ClaimRepository interface using PostgreSQL
type ClaimRepository struct {
	db *pgxpool.Pool
}

var _ storage.ClaimRepository = (*ClaimRepository)(nil)

// UpsertMany inserts or replaces the given claims, keyed by their upstream serial number
func (repo *ClaimRepository) UpsertMany(ctx context.Context, claims []sikka.Claim, syncedAt int64) error {
	txn, err := repo.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer txn.Rollback(ctx)

	for _, claim := range claims {
		_, err := txn.Exec(ctx,
			`INSERT INTO claims VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
				ON CONFLICT (claim_sr_no) DO UPDATE SET
				claim_id = $2, patient_id = $3, status = $4, submitted_date = $5,
				insurance_company = $6, total_fee = $7, practice_id = $8, synced_at = $9`,
			claim.ClaimSrNo, claim.ClaimID, claim.PatientID, claim.Status, claim.SubmittedDate,
			claim.InsuranceCompany, claim.TotalFee, claim.PracticeID, syncedAt)
		if err != nil {
			return err
		}
	}

	return txn.Commit(ctx)
}

// GetByFilter retrieves multiple mirrored claims following a filter.
// If limit <= 0, a default limit value of 10 is used.
func (repo *ClaimRepository) GetByFilter(ctx context.Context, filter *storage.ClaimFilter, limit uint64) ([]sikka.Claim, uint64, error) {
	query := squirrel.Select("*").From("claims").OrderBy("submitted_date DESC")
	countQuery := squirrel.Select("COUNT(*)").From("claims")
	if filter.PatientID != nil {
		query = query.Where(squirrel.Eq{"patient_id": *filter.PatientID})
		countQuery = countQuery.Where(squirrel.Eq{"patient_id": *filter.PatientID})
	}
	if filter.Status != nil {
		query = query.Where(squirrel.Eq{"status": *filter.Status})
		countQuery = countQuery.Where(squirrel.Eq{"status": *filter.Status})
	}
	if limit <= 0 {
		limit = 10
	}
	query = query.Limit(limit)

	countSQL, countVals, err := countQuery.PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var n uint64
	if err := repo.db.QueryRow(ctx, countSQL, countVals...).Scan(&n); err != nil {
		return nil, 0, err
	}
	if n == 0 {
		return []sikka.Claim{}, 0, nil
	}

	sql, vals, err := query.PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := repo.db.Query(ctx, sql, vals...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []sikka.Claim{}, n, nil
		}
		return nil, 0, err
	}
	defer rows.Close()

	objs := []sikka.Claim{}
	for rows.Next() {
		obj, err := repo.rowToClaim(rows)
		if err != nil {
			return nil, 0, err
		}
		objs = append(objs, *obj)
	}

	return objs, n, nil
}

// Count returns the amount of mirrored claims
func (repo *ClaimRepository) Count(ctx context.Context) (uint64, error) {
	var n uint64
	if err := repo.db.QueryRow(ctx, "SELECT COUNT(*) FROM claims").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (repo *ClaimRepository) rowToClaim(row pgx.Row) (*sikka.Claim, error) {
	obj := new(sikka.Claim)
	var syncedAt int64
	if err := row.Scan(&obj.ClaimSrNo, &obj.ClaimID, &obj.PatientID, &obj.Status, &obj.SubmittedDate,
		&obj.InsuranceCompany, &obj.TotalFee, &obj.PracticeID, &syncedAt); err != nil {
		return nil, err
	}
	return obj, nil
}
