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

// PatientRepository implements the storage.PatientRepository interface using PostgreSQL
type PatientRepository struct {
	db *pgxpool.Pool
}

var _ storage.PatientRepository = (*PatientRepository)(nil)

// UpsertMany inserts or replaces the given patients, keyed by their upstream patient ID
func (repo *PatientRepository) UpsertMany(ctx context.Context, patients []sikka.Patient, syncedAt int64) error {
	txn, err := repo.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer txn.Rollback(ctx)

	for _, patient := range patients {
		_, err := txn.Exec(ctx,
			`INSERT INTO patients VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
				ON CONFLICT (patient_id) DO UPDATE SET
				firstname = $2, lastname = $3, birthdate = $4, gender = $5, email = $6,
				status = $7, customer_id = $8, practice_id = $9, synced_at = $10`,
			patient.PatientID, patient.Firstname, patient.Lastname, patient.Birthdate, patient.Gender,
			patient.Email, patient.Status, patient.CustomerID, patient.PracticeID, syncedAt)
		if err != nil {
			return err
		}
	}

	return txn.Commit(ctx)
}

// GetByID retrieves a mirrored patient by its upstream patient ID
func (repo *PatientRepository) GetByID(ctx context.Context, patientID string) (*sikka.Patient, error) {
	row := repo.db.QueryRow(ctx, "SELECT * FROM patients WHERE patient_id = $1", patientID)
	obj, err := repo.rowToPatient(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return obj, nil
}

// GetByFilter retrieves multiple mirrored patients following a filter.
// If limit <= 0, a default limit value of 10 is used.
func (repo *PatientRepository) GetByFilter(ctx context.Context, filter *storage.PatientFilter, limit uint64) ([]sikka.Patient, uint64, error) {
	query := squirrel.Select("*").From("patients").OrderBy("lastname, firstname")
	countQuery := squirrel.Select("COUNT(*)").From("patients")
	if filter.Firstname != nil {
		query = query.Where(squirrel.Eq{"firstname": *filter.Firstname})
		countQuery = countQuery.Where(squirrel.Eq{"firstname": *filter.Firstname})
	}
	if filter.Lastname != nil {
		query = query.Where(squirrel.Eq{"lastname": *filter.Lastname})
		countQuery = countQuery.Where(squirrel.Eq{"lastname": *filter.Lastname})
	}
	if filter.Birthdate != nil {
		query = query.Where(squirrel.Eq{"birthdate": *filter.Birthdate})
		countQuery = countQuery.Where(squirrel.Eq{"birthdate": *filter.Birthdate})
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
		return []sikka.Patient{}, 0, nil
	}

	sql, vals, err := query.PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return nil, 0, err
	}
	rows, err := repo.db.Query(ctx, sql, vals...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []sikka.Patient{}, n, nil
		}
		return nil, 0, err
	}
	defer rows.Close()

	objs := []sikka.Patient{}
	for rows.Next() {
		obj, err := repo.rowToPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		objs = append(objs, *obj)
	}

	return objs, n, nil
}

// Count returns the amount of mirrored patients
func (repo *PatientRepository) Count(ctx context.Context) (uint64, error) {
	var n uint64
	if err := repo.db.QueryRow(ctx, "SELECT COUNT(*) FROM patients").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (repo *PatientRepository) rowToPatient(row pgx.Row) (*sikka.Patient, error) {
	obj := new(sikka.Patient)
	var syncedAt int64
	if err := row.Scan(&obj.PatientID, &obj.Firstname, &obj.Lastname, &obj.Birthdate, &obj.Gender,
		&obj.Email, &obj.Status, &obj.CustomerID, &obj.PracticeID, &syncedAt); err != nil {
		return nil, err
	}
	return obj, nil
}
