package keystore

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/hashicorp/go-memdb"
	"github.com/practisync/sikka-client/internal/random"
)

var keyLength = 64

// Grant represents a minted request key grant of the mock upstream.
// Only key hashes are stored; the raw keys leave the store exactly once, on
// minting.
type Grant struct {
	RequestKeyHash string
	RefreshKeyHash string
	OfficeID       string
	IssuedAt       int64
	ExpiresAt      int64
}

var dbSchema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		"grants": {
			Name: "grants",
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:         "id",
					Unique:       true,
					AllowMissing: false,
					Indexer:      &memdb.StringFieldIndex{Field: "RequestKeyHash"},
				},
				"refreshKey": {
					Name:         "refreshKey",
					Unique:       true,
					AllowMissing: false,
					Indexer:      &memdb.StringFieldIndex{Field: "RefreshKeyHash"},
				},
				"officeID": {
					Name:         "officeID",
					Unique:       false,
					AllowMissing: false,
					Indexer:      &memdb.StringFieldIndex{Field: "OfficeID"},
				},
				"expires": {
					Name:         "expires",
					Unique:       false,
					AllowMissing: false,
					Indexer:      &memdb.IntFieldIndex{Field: "ExpiresAt"},
				},
			},
		},
	},
}

// Store holds the request key grants minted by the mock upstream, built using hashicorp/go-memdb
type Store struct {
	db *memdb.MemDB
}

// New creates a new empty grant store
func New() (*Store, error) {
	db, err := memdb.NewMemDB(dbSchema)
	if err != nil {
		return nil, err
	}
	return &Store{db}, nil
}

// Issue mints a new request/refresh key pair for an office and stores the grant.
// It returns the raw keys together with the absolute expiry instant.
func (store *Store) Issue(officeID string, lifetime time.Duration) (string, string, time.Time, error) {
	rawRequestKey := random.Key(keyLength)
	rawRefreshKey := random.Key(keyLength)
	now := time.Now().UTC().Truncate(time.Second)
	expiresAt := now.Add(lifetime)

	grant := &Grant{
		RequestKeyHash: hashKey(rawRequestKey),
		RefreshKeyHash: hashKey(rawRefreshKey),
		OfficeID:       officeID,
		IssuedAt:       now.Unix(),
		ExpiresAt:      expiresAt.Unix(),
	}

	txn := store.db.Txn(true)
	defer txn.Abort()
	if err := txn.Insert("grants", grant); err != nil {
		return "", "", time.Time{}, err
	}
	txn.Commit()

	return rawRequestKey, rawRefreshKey, expiresAt, nil
}

// GetByRequestKey retrieves a grant by its raw (prior hashing) request key
func (store *Store) GetByRequestKey(rawKey string) (*Grant, error) {
	txn := store.db.Txn(false)
	obj, err := txn.First("grants", "id", hashKey(rawKey))
	if err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, nil
	}
	return obj.(*Grant), nil
}

// Redeem exchanges a raw refresh key for a fresh grant of the same office.
// The old grant is revoked in the process. If the refresh key is unknown, no
// new grant is minted and empty keys are returned.
func (store *Store) Redeem(rawRefreshKey string, lifetime time.Duration) (string, string, time.Time, error) {
	txn := store.db.Txn(true)
	defer txn.Abort()

	obj, err := txn.First("grants", "refreshKey", hashKey(rawRefreshKey))
	if err != nil {
		return "", "", time.Time{}, err
	}
	if obj == nil {
		return "", "", time.Time{}, nil
	}
	old := obj.(*Grant)
	if err := txn.Delete("grants", old); err != nil {
		return "", "", time.Time{}, err
	}
	txn.Commit()

	return store.Issue(old.OfficeID, lifetime)
}

// SweepExpired removes all grants whose expiry lies in the past
func (store *Store) SweepExpired() (int, error) {
	txn := store.db.Txn(true)
	defer txn.Abort()

	it, err := txn.LowerBound("grants", "expires", 0)
	if err != nil {
		return 0, err
	}

	now := time.Now().Unix()
	deleted := 0
	for obj := it.Next(); obj != nil; obj = it.Next() {
		grant := obj.(*Grant)
		if grant.ExpiresAt > now {
			break
		}
		if err := txn.Delete("grants", grant); err != nil {
			return 0, err
		}
		deleted++
	}

	txn.Commit()
	return deleted, nil
}

func hashKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
