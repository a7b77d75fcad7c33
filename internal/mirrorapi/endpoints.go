package mirrorapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/practisync/sikka-client/internal/storage"
	"github.com/practisync/sikka-client/sikka"
	"github.com/rs/zerolog/log"
)

// defaultLimit is the result limit used when the query does not request one
const defaultLimit = 10

// statusResponse reports how many records the mirror currently holds
type statusResponse struct {
	Patients     uint64 `json:"patients"`
	Claims       uint64 `json:"claims"`
	Transactions uint64 `json:"transactions"`
}

// EndpointGetStatus handles the 'GET /status' endpoint
func (service *Service) EndpointGetStatus(writer http.ResponseWriter, request *http.Request) {
	patients, err := service.Storage.Patients().Count(request.Context())
	if err != nil {
		writeInternalError(writer, err)
		return
	}
	claims, err := service.Storage.Claims().Count(request.Context())
	if err != nil {
		writeInternalError(writer, err)
		return
	}
	transactions, err := service.Storage.Transactions().Count(request.Context())
	if err != nil {
		writeInternalError(writer, err)
		return
	}

	writeJSON(writer, http.StatusOK, &statusResponse{
		Patients:     patients,
		Claims:       claims,
		Transactions: transactions,
	})
}

// EndpointGetPatients handles the 'GET /patients' endpoint
func (service *Service) EndpointGetPatients(writer http.ResponseWriter, request *http.Request) {
	limit, ok := queryLimit(writer, request)
	if !ok {
		return
	}

	query := request.URL.Query()
	filter := &storage.PatientFilter{
		Firstname: optional(query, "firstname"),
		Lastname:  optional(query, "lastname"),
		Birthdate: optional(query, "birthdate"),
	}
	patients, total, err := service.Storage.Patients().GetByFilter(request.Context(), filter, limit)
	if err != nil {
		writeInternalError(writer, err)
		return
	}

	writeJSON(writer, http.StatusOK, &sikka.Envelope[sikka.Patient]{
		TotalCount: int64(total),
		Limit:      int64(limit),
		Items:      patients,
	})
}

// EndpointGetPatient handles the 'GET /patients/{patientID}' endpoint
func (service *Service) EndpointGetPatient(writer http.ResponseWriter, request *http.Request) {
	patient, err := service.Storage.Patients().GetByID(request.Context(), chi.URLParam(request, "patientID"))
	if err != nil {
		writeInternalError(writer, err)
		return
	}
	if patient == nil {
		writeError(writer, http.StatusNotFound, "resource not found")
		return
	}
	writeJSON(writer, http.StatusOK, patient)
}

// EndpointGetClaims handles the 'GET /claims' endpoint
func (service *Service) EndpointGetClaims(writer http.ResponseWriter, request *http.Request) {
	limit, ok := queryLimit(writer, request)
	if !ok {
		return
	}

	query := request.URL.Query()
	filter := &storage.ClaimFilter{
		PatientID: optional(query, "patient_id"),
		Status:    optional(query, "status"),
	}
	claims, total, err := service.Storage.Claims().GetByFilter(request.Context(), filter, limit)
	if err != nil {
		writeInternalError(writer, err)
		return
	}

	writeJSON(writer, http.StatusOK, &sikka.Envelope[sikka.Claim]{
		TotalCount: int64(total),
		Limit:      int64(limit),
		Items:      claims,
	})
}

// EndpointGetClaimTransactions handles the 'GET /claims/{claimSrNo}/transactions' endpoint
func (service *Service) EndpointGetClaimTransactions(writer http.ResponseWriter, request *http.Request) {
	transactions, err := service.Storage.Transactions().GetByClaim(request.Context(), chi.URLParam(request, "claimSrNo"))
	if err != nil {
		writeInternalError(writer, err)
		return
	}

	writeJSON(writer, http.StatusOK, &sikka.Envelope[sikka.Transaction]{
		TotalCount: int64(len(transactions)),
		Items:      transactions,
	})
}

// optional returns a pointer to the query parameter value if the parameter is
// present and nil otherwise
func optional(query url.Values, key string) *string {
	if !query.Has(key) {
		return nil
	}
	value := query.Get(key)
	return &value
}

// queryLimit extracts and validates the result limit out of the query
// parameters of the given request
func queryLimit(writer http.ResponseWriter, request *http.Request) (uint64, bool) {
	raw := request.URL.Query().Get("limit")
	if raw == "" {
		return defaultLimit, true
	}
	limit, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || limit == 0 {
		writeError(writer, http.StatusBadRequest, fmt.Sprintf("the query parameter 'limit' ('%s') is not a positive number", raw))
		return 0, false
	}
	return limit, true
}

// apiError represents a single error emitted by the mirror query API
type apiError struct {
	Message string `json:"message"`
}

func writeJSON(rw http.ResponseWriter, code int, value any) {
	encoded, _ := json.Marshal(value)
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(code)
	rw.Write(encoded)
}

func writeError(rw http.ResponseWriter, code int, message string) {
	writeJSON(rw, code, &apiError{Message: message})
}

func writeInternalError(rw http.ResponseWriter, err error) {
	log.Error().Err(err).Msg("the mirror query API experienced an unexpected error")
	writeError(rw, http.StatusInternalServerError, "internal error")
}
