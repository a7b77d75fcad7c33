package sikka

import (
	"context"
	"net/url"
	"strconv"
)

// PaymentType represents a configured payment type of a practice
type PaymentType struct {
	Code             string `json:"code"`
	Description      string `json:"description,omitempty"`
	CustomerID       string `json:"customer_id,omitempty"`
	PracticeID       string `json:"practice_id,omitempty"`
	InsurancePayment bool   `json:"insurance_payment,omitempty"`
	PatientPayment   bool   `json:"patient_payment,omitempty"`
	Adjustment       bool   `json:"adjustment,omitempty"`
	Inactive         bool   `json:"inactive,omitempty"`
}

// PaymentTypeListParams represents the optional filters of the payment type
// list endpoint.
// Zero-valued fields are omitted from the query string entirely; the boolean
// flags are only sent when set, as the literal string "true" (omission means
// false, the upstream never expects "false").
type PaymentTypeListParams struct {
	Code             string
	CustomerID       string
	PracticeID       string
	InsurancePayment bool
	PatientPayment   bool
	Adjustment       bool
	Inactive         bool
	Limit            int
	Offset           int
}

func (params PaymentTypeListParams) values() url.Values {
	values := url.Values{}
	if params.Code != "" {
		values.Set("code", params.Code)
	}
	if params.CustomerID != "" {
		values.Set("customer_id", params.CustomerID)
	}
	if params.PracticeID != "" {
		values.Set("practice_id", params.PracticeID)
	}
	if params.InsurancePayment {
		values.Set("insurance_payment", "true")
	}
	if params.PatientPayment {
		values.Set("patient_payment", "true")
	}
	if params.Adjustment {
		values.Set("adjustment", "true")
	}
	if params.Inactive {
		values.Set("inactive", "true")
	}
	if params.Limit > 0 {
		values.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.Offset > 0 {
		values.Set("offset", strconv.Itoa(params.Offset))
	}
	return values
}

// PaymentTypeService provides access to the payment type resource
type PaymentTypeService struct {
	client *Client
}

// List retrieves the payment types matching the given filters
func (service *PaymentTypeService) List(ctx context.Context, params PaymentTypeListParams) ([]PaymentType, error) {
	envelope, err := get[Envelope[PaymentType]](ctx, service.client, "/v4/payment_types", params.values())
	if err != nil {
		return nil, err
	}
	return envelope.Items, nil
}
