package sikka

import (
	"context"
	"net/url"
	"strconv"
)

// Claim represents an insurance claim record
type Claim struct {
	ClaimID          string `json:"claim_id"`
	ClaimSrNo        string `json:"claim_sr_no"`
	PatientID        string `json:"patient_id"`
	Status           string `json:"status"`
	SubmittedDate    string `json:"submitted_date,omitempty"`
	InsuranceCompany string `json:"insurance_company,omitempty"`
	TotalFee         string `json:"total_fee,omitempty"`
	PracticeID       string `json:"practice_id,omitempty"`
}

// ClaimListParams represents the optional filters of the claim list endpoint.
// Zero-valued fields are omitted from the query string entirely.
type ClaimListParams struct {
	PatientID string
	ClaimID   string
	Status    string
	StartDate string
	EndDate   string
	Limit     int
	Offset    int
}

func (params ClaimListParams) values() url.Values {
	values := url.Values{}
	if params.PatientID != "" {
		values.Set("patient_id", params.PatientID)
	}
	if params.ClaimID != "" {
		values.Set("claim_id", params.ClaimID)
	}
	if params.Status != "" {
		values.Set("status", params.Status)
	}
	if params.StartDate != "" {
		values.Set("start_date", params.StartDate)
	}
	if params.EndDate != "" {
		values.Set("end_date", params.EndDate)
	}
	if params.Limit > 0 {
		values.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.Offset > 0 {
		values.Set("offset", strconv.Itoa(params.Offset))
	}
	return values
}

// ClaimService provides access to the claim resource
type ClaimService struct {
	client *Client
}

// List retrieves the claims matching the given filters
func (service *ClaimService) List(ctx context.Context, params ClaimListParams) ([]Claim, error) {
	envelope, err := get[Envelope[Claim]](ctx, service.client, "/v4/claims", params.values())
	if err != nil {
		return nil, err
	}
	return envelope.Items, nil
}
