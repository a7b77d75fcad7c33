package mockapi

import (
	"fmt"
	"strings"
	"sync"

	"github.com/practisync/sikka-client/sikka"
)

// Dataset holds the seeded practice data the mock upstream serves.
// Posting claim payments appends payment transactions, so access is locked.
type Dataset struct {
	mtx sync.RWMutex

	patients     []sikka.Patient
	claims       []sikka.Claim
	transactions []sikka.Transaction
	paymentTypes []sikka.PaymentType
}

// NewDataset creates a new dataset out of the given seed records
func NewDataset(patients []sikka.Patient, claims []sikka.Claim, transactions []sikka.Transaction, paymentTypes []sikka.PaymentType) *Dataset {
	return &Dataset{
		patients:     patients,
		claims:       claims,
		transactions: transactions,
		paymentTypes: paymentTypes,
	}
}

// Patients returns the seeded patients matching the given filters
func (data *Dataset) Patients(filter func(sikka.Patient) bool) []sikka.Patient {
	data.mtx.RLock()
	defer data.mtx.RUnlock()
	return filtered(data.patients, filter)
}

// Claims returns the seeded claims matching the given filters
func (data *Dataset) Claims(filter func(sikka.Claim) bool) []sikka.Claim {
	data.mtx.RLock()
	defer data.mtx.RUnlock()
	return filtered(data.claims, filter)
}

// Transactions returns the seeded transactions matching the given filters
func (data *Dataset) Transactions(filter func(sikka.Transaction) bool) []sikka.Transaction {
	data.mtx.RLock()
	defer data.mtx.RUnlock()
	return filtered(data.transactions, filter)
}

// PaymentTypes returns the seeded payment types matching the given filters
func (data *Dataset) PaymentTypes(filter func(sikka.PaymentType) bool) []sikka.PaymentType {
	data.mtx.RLock()
	defer data.mtx.RUnlock()
	return filtered(data.paymentTypes, filter)
}

// AppendTransaction records a new ledger transaction (used when a claim payment is posted)
func (data *Dataset) AppendTransaction(transaction sikka.Transaction) {
	data.mtx.Lock()
	defer data.mtx.Unlock()
	data.transactions = append(data.transactions, transaction)
}

func filtered[T any](items []T, filter func(T) bool) []T {
	result := make([]T, 0, len(items))
	for _, item := range items {
		if filter == nil || filter(item) {
			result = append(result, item)
		}
	}
	return result
}

// matches reports whether a filter value is unset or equal to the record value (case-insensitively)
func matches(filter, value string) bool {
	return filter == "" || strings.EqualFold(filter, value)
}

// paginate cuts an offset/limit window out of the given items and wraps it
// into the envelope shape the real upstream emits, including the page markers
func paginate[T any](path string, items []T, offset, limit int64) sikka.Envelope[T] {
	total := int64(len(items))

	from := offset
	if from > total {
		from = total
	}
	to := from + limit
	if to > total {
		to = total
	}

	marker := func(offset int64) string {
		return fmt.Sprintf("%s?offset=%d&limit=%d", path, offset, limit)
	}
	lastOffset := int64(0)
	if total > 0 {
		lastOffset = ((total - 1) / limit) * limit
	}

	envelope := sikka.Envelope[T]{
		CurrentPage:   marker(offset),
		FirstPage:     marker(0),
		LastPage:      marker(lastOffset),
		TotalCount:    total,
		Limit:         limit,
		Offset:        offset,
		ExecutionTime: 0.001,
		Items:         items[from:to],
	}
	if to < total {
		envelope.NextPage = marker(offset + limit)
	}
	if offset > 0 {
		previous := offset - limit
		if previous < 0 {
			previous = 0
		}
		envelope.PreviousPage = marker(previous)
	}
	return envelope
}
