package sikka

import "context"

// ClaimPaymentRequest represents the payload of the claim payment endpoint.
// A payment covering multiple line items carries its procedure codes and
// amounts pipe-delimited (e.g. "D1110|D0120" and "50.00|25.00"); the client
// passes these fields through opaquely.
type ClaimPaymentRequest struct {
	OfficeID       string `json:"office_id"`
	ClaimSrNo      string `json:"claim_sr_no"`
	PaymentType    string `json:"payment_type"`
	PaymentDate    string `json:"payment_date"`
	CheckNumber    string `json:"check_number,omitempty"`
	ProcedureCodes string `json:"procedure_codes"`
	Amounts        string `json:"amounts"`
	Note           string `json:"note,omitempty"`
}

// ClaimPaymentResponse represents the upstream acknowledgement of a posted
// claim payment
type ClaimPaymentResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message,omitempty"`
	PaymentID string `json:"payment_id,omitempty"`
}

// ClaimPaymentService provides access to the claim payment resource
type ClaimPaymentService struct {
	client *Client
}

// Post submits a claim payment
func (service *ClaimPaymentService) Post(ctx context.Context, request ClaimPaymentRequest) (*ClaimPaymentResponse, error) {
	response, err := post[ClaimPaymentResponse](ctx, service.client, "/v4/claim_payment", request)
	if err != nil {
		return nil, err
	}
	return &response, nil
}
