package sikka

import (
	"context"
	"net/url"
	"strconv"
)

// Patient represents a patient record as stored by the practice-management system
type Patient struct {
	PatientID  string `json:"patient_id"`
	Firstname  string `json:"firstname"`
	Lastname   string `json:"lastname"`
	Birthdate  string `json:"birthdate"`
	Gender     string `json:"gender,omitempty"`
	Email      string `json:"email,omitempty"`
	Status     string `json:"status,omitempty"`
	CustomerID string `json:"customer_id,omitempty"`
	PracticeID string `json:"practice_id,omitempty"`
}

// PatientListParams represents the optional filters of the patient list
// endpoint. Zero-valued fields are omitted from the query string entirely.
type PatientListParams struct {
	Firstname string
	Lastname  string
	Birthdate string
	PatientID string
	Limit     int
	Offset    int
}

func (params PatientListParams) values() url.Values {
	values := url.Values{}
	if params.Firstname != "" {
		values.Set("firstname", params.Firstname)
	}
	if params.Lastname != "" {
		values.Set("lastname", params.Lastname)
	}
	if params.Birthdate != "" {
		values.Set("birthdate", params.Birthdate)
	}
	if params.PatientID != "" {
		values.Set("patient_id", params.PatientID)
	}
	if params.Limit > 0 {
		values.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.Offset > 0 {
		values.Set("offset", strconv.Itoa(params.Offset))
	}
	return values
}

// PatientService provides access to the patient resource
type PatientService struct {
	client *Client
}

// List retrieves the patients matching the given filters
func (service *PatientService) List(ctx context.Context, params PatientListParams) ([]Patient, error) {
	envelope, err := get[Envelope[Patient]](ctx, service.client, "/v4/patients", params.values())
	if err != nil {
		return nil, err
	}
	return envelope.Items, nil
}
