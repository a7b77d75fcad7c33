package sikka

import (
	"context"
	"net/url"
	"strconv"
)

// TransactionTypeProcedure is the transaction type tag of procedure entries
const TransactionTypeProcedure = "Procedure"

// Transaction represents a single ledger transaction (procedure, payment,
// adjustment, ...) attached to a claim
type Transaction struct {
	TransactionSrNo string `json:"transaction_sr_no"`
	ClaimSrNo       string `json:"claim_sr_no"`
	PatientID       string `json:"patient_id"`
	TransactionType string `json:"transaction_type"`
	TransactionDate string `json:"transaction_date,omitempty"`
	ProcedureCode   string `json:"procedure_code,omitempty"`
	Description     string `json:"description,omitempty"`
	Amount          string `json:"amount,omitempty"`
}

// TransactionListParams represents the optional filters of the transaction
// list endpoint. Zero-valued fields are omitted from the query string entirely.
type TransactionListParams struct {
	ClaimSrNo       string
	PatientID       string
	TransactionType string
	Limit           int
	Offset          int
}

func (params TransactionListParams) values() url.Values {
	values := url.Values{}
	if params.ClaimSrNo != "" {
		values.Set("claim_sr_no", params.ClaimSrNo)
	}
	if params.PatientID != "" {
		values.Set("patient_id", params.PatientID)
	}
	if params.TransactionType != "" {
		values.Set("transaction_type", params.TransactionType)
	}
	if params.Limit > 0 {
		values.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.Offset > 0 {
		values.Set("offset", strconv.Itoa(params.Offset))
	}
	return values
}

// TransactionService provides access to the transaction resource
type TransactionService struct {
	client *Client
}

// List retrieves the transactions matching the given filters
func (service *TransactionService) List(ctx context.Context, params TransactionListParams) ([]Transaction, error) {
	envelope, err := get[Envelope[Transaction]](ctx, service.client, "/v4/transactions", params.values())
	if err != nil {
		return nil, err
	}
	return envelope.Items, nil
}

// ListProcedures retrieves the transactions of a claim and keeps only those
// tagged as procedures. The filtering happens locally; the upstream transaction
// type filter matches loosely on some installations.
func (service *TransactionService) ListProcedures(ctx context.Context, claimSrNo string) ([]Transaction, error) {
	transactions, err := service.List(ctx, TransactionListParams{ClaimSrNo: claimSrNo})
	if err != nil {
		return nil, err
	}

	procedures := make([]Transaction, 0, len(transactions))
	for _, transaction := range transactions {
		if transaction.TransactionType == TransactionTypeProcedure {
			procedures = append(procedures, transaction)
		}
	}
	return procedures, nil
}
