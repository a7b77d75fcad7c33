package mirror

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"time"

	"github.com/practisync/sikka-client/internal/hashmap"
	"github.com/practisync/sikka-client/internal/storage"
	"github.com/practisync/sikka-client/sikka"
)

// checksumLifetime bounds how long an unchanged record may be skipped.
// Once a checksum expires the record is written again on the next run, which
// heals the mirror from local drift at least once a day.
const checksumLifetime = 24 * time.Hour

// Report summarizes a single mirror run
type Report struct {
	Patients     int
	Claims       int
	Transactions int
	Skipped      int
}

// Syncer pulls practice data through the API client page by page and mirrors
// changed records into the local storage.
// The client never follows page markers itself, so the syncer re-invokes the
// list operations with a moving offset until a short page is returned.
type Syncer struct {
	client   *sikka.Client
	storage  storage.Driver
	pageSize int

	checksums *hashmap.ExpiringMap[string, uint64]
}

// New creates a new syncer.
// If pageSize <= 0, a default page size of 100 is used.
func New(client *sikka.Client, driver storage.Driver, pageSize int) *Syncer {
	if pageSize <= 0 {
		pageSize = 100
	}
	checksums := hashmap.NewExpiring[string, uint64](checksumLifetime)
	checksums.ScheduleCleanupTask(10 * time.Minute)
	return &Syncer{
		client:    client,
		storage:   driver,
		pageSize:  pageSize,
		checksums: checksums,
	}
}

// Close stops the checksum cleanup task
func (syncer *Syncer) Close() {
	syncer.checksums.StopCleanupTask()
}

// Run performs one full mirror pass over patients, claims and transactions
func (syncer *Syncer) Run(ctx context.Context) (*Report, error) {
	report := &Report{}
	syncedAt := time.Now().Unix()

	if err := syncer.syncPatients(ctx, report, syncedAt); err != nil {
		return nil, err
	}
	if err := syncer.syncClaims(ctx, report, syncedAt); err != nil {
		return nil, err
	}
	if err := syncer.syncTransactions(ctx, report, syncedAt); err != nil {
		return nil, err
	}
	return report, nil
}

func (syncer *Syncer) syncPatients(ctx context.Context, report *Report, syncedAt int64) error {
	for offset := 0; ; offset += syncer.pageSize {
		page, err := syncer.client.Patients().List(ctx, sikka.PatientListParams{Limit: syncer.pageSize, Offset: offset})
		if err != nil {
			return err
		}

		changed := make([]sikka.Patient, 0, len(page))
		pending := make([]pendingChecksum, 0, len(page))
		for _, patient := range page {
			if sum, ok := syncer.isChanged("patient:"+patient.PatientID, patient); ok {
				changed = append(changed, patient)
				pending = append(pending, pendingChecksum{"patient:" + patient.PatientID, sum})
			} else {
				report.Skipped++
			}
		}
		if len(changed) > 0 {
			if err := syncer.storage.Patients().UpsertMany(ctx, changed, syncedAt); err != nil {
				return err
			}
			report.Patients += len(changed)
		}
		syncer.recordChecksums(pending)

		if len(page) < syncer.pageSize {
			return nil
		}
	}
}

func (syncer *Syncer) syncClaims(ctx context.Context, report *Report, syncedAt int64) error {
	for offset := 0; ; offset += syncer.pageSize {
		page, err := syncer.client.Claims().List(ctx, sikka.ClaimListParams{Limit: syncer.pageSize, Offset: offset})
		if err != nil {
			return err
		}

		changed := make([]sikka.Claim, 0, len(page))
		pending := make([]pendingChecksum, 0, len(page))
		for _, claim := range page {
			if sum, ok := syncer.isChanged("claim:"+claim.ClaimSrNo, claim); ok {
				changed = append(changed, claim)
				pending = append(pending, pendingChecksum{"claim:" + claim.ClaimSrNo, sum})
			} else {
				report.Skipped++
			}
		}
		if len(changed) > 0 {
			if err := syncer.storage.Claims().UpsertMany(ctx, changed, syncedAt); err != nil {
				return err
			}
			report.Claims += len(changed)
		}
		syncer.recordChecksums(pending)

		if len(page) < syncer.pageSize {
			return nil
		}
	}
}

func (syncer *Syncer) syncTransactions(ctx context.Context, report *Report, syncedAt int64) error {
	for offset := 0; ; offset += syncer.pageSize {
		page, err := syncer.client.Transactions().List(ctx, sikka.TransactionListParams{Limit: syncer.pageSize, Offset: offset})
		if err != nil {
			return err
		}

		changed := make([]sikka.Transaction, 0, len(page))
		pending := make([]pendingChecksum, 0, len(page))
		for _, transaction := range page {
			if sum, ok := syncer.isChanged("transaction:"+transaction.TransactionSrNo, transaction); ok {
				changed = append(changed, transaction)
				pending = append(pending, pendingChecksum{"transaction:" + transaction.TransactionSrNo, sum})
			} else {
				report.Skipped++
			}
		}
		if len(changed) > 0 {
			if err := syncer.storage.Transactions().UpsertMany(ctx, changed, syncedAt); err != nil {
				return err
			}
			report.Transactions += len(changed)
		}
		syncer.recordChecksums(pending)

		if len(page) < syncer.pageSize {
			return nil
		}
	}
}

// pendingChecksum is a checksum that may only be recorded once the write of
// its record succeeded
type pendingChecksum struct {
	key string
	sum uint64
}

// isChanged checksums the record and reports whether it differs from the last
// mirrored state.
// The checksum is not recorded here: a record counts as mirrored only after
// its page's upsert succeeded, otherwise a failed run would make the next one
// skip records that were never persisted.
func (syncer *Syncer) isChanged(key string, record any) (uint64, bool) {
	sum := checksum(record)
	previous, ok := syncer.checksums.Lookup(key)
	return sum, !ok || previous != sum
}

// recordChecksums marks the given records as mirrored
func (syncer *Syncer) recordChecksums(pending []pendingChecksum) {
	for _, entry := range pending {
		syncer.checksums.Set(entry.key, entry.sum)
	}
}

func checksum(record any) uint64 {
	encoded, _ := json.Marshal(record)
	digest := fnv.New64a()
	digest.Write(encoded)
	return digest.Sum64()
}
