package storage

import (
	"context"

	"github.com/practisync/sikka-client/sikka"
)

// Driver represents a storage driver for the local practice data mirror
type Driver interface {
	// Initialize initializes the storage driver (i.e. opens a database connection)
	Initialize(ctx context.Context) error

	// Patients provides a patient repository implementation
	Patients() PatientRepository

	// Claims provides a claim repository implementation
	Claims() ClaimRepository

	// Transactions provides a transaction repository implementation
	Transactions() TransactionRepository

	// Close closes the storage driver (i.e. closes a database connection)
	Close()
}

// PatientRepository defines the mirrored patient repository API
type PatientRepository interface {
	// UpsertMany inserts or replaces the given patients, keyed by their upstream patient ID
	UpsertMany(ctx context.Context, patients []sikka.Patient, syncedAt int64) error

	// GetByID retrieves a mirrored patient by its upstream patient ID
	GetByID(ctx context.Context, patientID string) (*sikka.Patient, error)

	// GetByFilter retrieves multiple mirrored patients following a filter.
	// If limit <= 0, a default limit value of 10 is used.
	GetByFilter(ctx context.Context, filter *PatientFilter, limit uint64) ([]sikka.Patient, uint64, error)

	// Count returns the amount of mirrored patients
	Count(ctx context.Context) (uint64, error)
}

// PatientFilter is used to query mirrored patients based on a filter
type PatientFilter struct {
	Firstname *string
	Lastname  *string
	Birthdate *string
}

// ClaimRepository defines the mirrored claim repository API
type ClaimRepository interface {
	// UpsertMany inserts or replaces the given claims, keyed by their upstream serial number
	UpsertMany(ctx context.Context, claims []sikka.Claim, syncedAt int64) error

	// GetByFilter retrieves multiple mirrored claims following a filter.
	// If limit <= 0, a default limit value of 10 is used.
	GetByFilter(ctx context.Context, filter *ClaimFilter, limit uint64) ([]sikka.Claim, uint64, error)

	// Count returns the amount of mirrored claims
	Count(ctx context.Context) (uint64, error)
}

// ClaimFilter is used to query mirrored claims based on a filter
type ClaimFilter struct {
	PatientID *string
	Status    *string
}

// TransactionRepository defines the mirrored transaction repository API
type TransactionRepository interface {
	// UpsertMany inserts or replaces the given transactions, keyed by their upstream serial number
	UpsertMany(ctx context.Context, transactions []sikka.Transaction, syncedAt int64) error

	// GetByClaim retrieves the mirrored transactions of a claim
	GetByClaim(ctx context.Context, claimSrNo string) ([]sikka.Transaction, error)

	// Count returns the amount of mirrored transactions
	Count(ctx context.Context) (uint64, error)
}
