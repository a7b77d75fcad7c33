package mockapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/practisync/sikka-client/sikka"
)

// EndpointGetPatients handles the 'GET /v4/patients' endpoint
func (service *Service) EndpointGetPatients(writer http.ResponseWriter, request *http.Request) {
	offset, limit, apiErr := queryWindow(request)
	if apiErr != nil {
		service.writer.writeError(writer, http.StatusBadRequest, apiErr)
		return
	}

	query := request.URL.Query()
	patients := service.Data.Patients(func(patient sikka.Patient) bool {
		return matches(query.Get("firstname"), patient.Firstname) &&
			matches(query.Get("lastname"), patient.Lastname) &&
			matches(query.Get("birthdate"), patient.Birthdate) &&
			matches(query.Get("patient_id"), patient.PatientID)
	})

	service.writer.writeJSON(writer, paginate("/v4/patients", patients, offset, limit))
}

// EndpointGetClaims handles the 'GET /v4/claims' endpoint
func (service *Service) EndpointGetClaims(writer http.ResponseWriter, request *http.Request) {
	offset, limit, apiErr := queryWindow(request)
	if apiErr != nil {
		service.writer.writeError(writer, http.StatusBadRequest, apiErr)
		return
	}

	query := request.URL.Query()
	claims := service.Data.Claims(func(claim sikka.Claim) bool {
		return matches(query.Get("patient_id"), claim.PatientID) &&
			matches(query.Get("claim_id"), claim.ClaimID) &&
			matches(query.Get("status"), claim.Status) &&
			(query.Get("start_date") == "" || claim.SubmittedDate >= query.Get("start_date")) &&
			(query.Get("end_date") == "" || claim.SubmittedDate <= query.Get("end_date"))
	})

	service.writer.writeJSON(writer, paginate("/v4/claims", claims, offset, limit))
}

// EndpointGetTransactions handles the 'GET /v4/transactions' endpoint
func (service *Service) EndpointGetTransactions(writer http.ResponseWriter, request *http.Request) {
	offset, limit, apiErr := queryWindow(request)
	if apiErr != nil {
		service.writer.writeError(writer, http.StatusBadRequest, apiErr)
		return
	}

	query := request.URL.Query()
	transactions := service.Data.Transactions(func(transaction sikka.Transaction) bool {
		return matches(query.Get("claim_sr_no"), transaction.ClaimSrNo) &&
			matches(query.Get("patient_id"), transaction.PatientID) &&
			matches(query.Get("transaction_type"), transaction.TransactionType)
	})

	service.writer.writeJSON(writer, paginate("/v4/transactions", transactions, offset, limit))
}

// EndpointGetPaymentTypes handles the 'GET /v4/payment_types' endpoint.
// The boolean flags narrow the result only when present and "true"; an absent
// flag matches every record, mirroring the real upstream.
func (service *Service) EndpointGetPaymentTypes(writer http.ResponseWriter, request *http.Request) {
	offset, limit, apiErr := queryWindow(request)
	if apiErr != nil {
		service.writer.writeError(writer, http.StatusBadRequest, apiErr)
		return
	}

	query := request.URL.Query()
	flag := func(name string, value bool) bool {
		return query.Get(name) != "true" || value
	}
	paymentTypes := service.Data.PaymentTypes(func(paymentType sikka.PaymentType) bool {
		return matches(query.Get("code"), paymentType.Code) &&
			matches(query.Get("customer_id"), paymentType.CustomerID) &&
			matches(query.Get("practice_id"), paymentType.PracticeID) &&
			flag("insurance_payment", paymentType.InsurancePayment) &&
			flag("patient_payment", paymentType.PatientPayment) &&
			flag("adjustment", paymentType.Adjustment) &&
			flag("inactive", paymentType.Inactive)
	})

	service.writer.writeJSON(writer, paginate("/v4/payment_types", paymentTypes, offset, limit))
}

// EndpointPostClaimPayment handles the 'POST /v4/claim_payment' endpoint.
// A successful payment is recorded as an additional 'Payment' ledger
// transaction on the claim.
func (service *Service) EndpointPostClaimPayment(writer http.ResponseWriter, request *http.Request) {
	payment := new(sikka.ClaimPaymentRequest)
	if err := json.NewDecoder(request.Body).Decode(payment); err != nil {
		service.writer.writeError(writer, http.StatusBadRequest, &apiError{Message: "malformed request body"})
		return
	}
	if payment.ClaimSrNo == "" || payment.PaymentType == "" || payment.Amounts == "" {
		service.writer.writeError(writer, http.StatusBadRequest, &apiError{Message: "claim_sr_no, payment_type and amounts are required"})
		return
	}

	paymentID := uuid.NewString()
	service.Data.AppendTransaction(sikka.Transaction{
		TransactionSrNo: paymentID,
		ClaimSrNo:       payment.ClaimSrNo,
		TransactionType: "Payment",
		TransactionDate: payment.PaymentDate,
		Description:     fmt.Sprintf("claim payment (%s)", payment.PaymentType),
		Amount:          payment.Amounts,
	})

	service.writer.writeJSON(writer, &sikka.ClaimPaymentResponse{
		Status:    "success",
		PaymentID: paymentID,
	})
}

// queryWindow extracts and validates the offset/limit window out of the query
// parameters of the given request
func queryWindow(request *http.Request) (int64, int64, *apiError) {
	offset, apiErr := queryNumber(request, "offset", 0, 0)
	if apiErr != nil {
		return 0, 0, apiErr
	}
	limit, apiErr := queryNumber(request, "limit", 10, 1)
	if apiErr != nil {
		return 0, 0, apiErr
	}
	return offset, limit, nil
}

// queryNumber extracts and validates an integer value out of the query parameters of the given request
func queryNumber(request *http.Request, key string, def, min int64) (int64, *apiError) {
	value := request.URL.Query().Get(key)
	if value == "" {
		return def, nil
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, &apiError{Message: fmt.Sprintf("the query parameter '%s' ('%s') is not a number", key, value)}
	}
	if parsed < min {
		return 0, &apiError{Message: fmt.Sprintf("the query parameter '%s' is out of range (%d < %d)", key, parsed, min)}
	}
	return parsed, nil
}
