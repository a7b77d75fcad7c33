package mockapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/practisync/sikka-client/sikka"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	service := &Service{
		AppID:  "test-app",
		AppKey: "test-app-key",
		Offices: map[string]string{
			"O-1": "office-secret",
		},
		Data: NewDataset(
			[]sikka.Patient{
				{PatientID: "P-1", Firstname: "John", Lastname: "Doe", Birthdate: "1990-01-01"},
				{PatientID: "P-2", Firstname: "Jane", Lastname: "Miller", Birthdate: "1985-06-15"},
				{PatientID: "P-3", Firstname: "Jim", Lastname: "Doe", Birthdate: "2001-12-24"},
			},
			[]sikka.Claim{
				{ClaimID: "CLM-1", ClaimSrNo: "123", PatientID: "P-1", Status: "submitted"},
				{ClaimID: "CLM-2", ClaimSrNo: "456", PatientID: "P-2", Status: "paid"},
			},
			[]sikka.Transaction{
				{TransactionSrNo: "T-1", ClaimSrNo: "123", PatientID: "P-1", TransactionType: "Procedure", ProcedureCode: "D1110"},
				{TransactionSrNo: "T-2", ClaimSrNo: "123", PatientID: "P-1", TransactionType: "Payment"},
			},
			[]sikka.PaymentType{
				{Code: "CHK", Description: "Check", PatientPayment: true},
				{Code: "INS", Description: "Insurance check", InsurancePayment: true},
			},
		),
	}
	if err := service.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %s", err)
	}
	return service
}

func newServiceClient(service *Service, server *httptest.Server) *sikka.Client {
	return sikka.New(sikka.Config{
		AppID:      service.AppID,
		AppKey:     service.AppKey,
		OfficeID:   "O-1",
		SecretKey:  "office-secret",
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
	})
}

func TestServiceKeyGrants(t *testing.T) {
	service := newTestService(t)
	server := httptest.NewServer(service.Router())
	defer server.Close()

	client := newServiceClient(service, server)
	if err := client.Authenticate(context.Background()); err != nil {
		t.Fatalf("Authenticate failed: %s", err)
	}
	if !client.IsAuthenticated() {
		t.Fatal("expected the client to be authenticated")
	}

	// A refresh must be accepted and yield a usable key again
	if err := client.RefreshAuthentication(context.Background()); err != nil {
		t.Fatalf("RefreshAuthentication failed: %s", err)
	}
	if _, err := client.Patients().List(context.Background(), sikka.PatientListParams{}); err != nil {
		t.Fatalf("List after refresh failed: %s", err)
	}

	// Redeeming revokes the old grant, so a second redeem of the same
	// refresh key must be rejected
	redeem := func(refreshKey string) *http.Response {
		payload, _ := json.Marshal(map[string]string{
			"grant_type":  "refresh_key",
			"app_id":      service.AppID,
			"app_key":     service.AppKey,
			"refresh_key": refreshKey,
		})
		response, err := server.Client().Post(server.URL+"/v4/request_key", "application/json", bytes.NewReader(payload))
		if err != nil {
			t.Fatalf("request failed: %s", err)
		}
		return response
	}

	_, refreshKey, _, err := service.keys.Issue("O-1", time.Hour)
	if err != nil {
		t.Fatalf("Issue failed: %s", err)
	}
	first := redeem(refreshKey)
	defer first.Body.Close()
	if first.StatusCode != http.StatusOK {
		t.Fatalf("expected the first redeem to succeed, got %d", first.StatusCode)
	}
	second := redeem(refreshKey)
	defer second.Body.Close()
	if second.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected the second redeem to be rejected, got %d", second.StatusCode)
	}
}

func TestServiceRejectsBadCredentials(t *testing.T) {
	service := newTestService(t)
	server := httptest.NewServer(service.Router())
	defer server.Close()

	tests := []struct {
		name     string
		config   sikka.Config
		expected string
	}{
		{
			"wrong app credentials",
			sikka.Config{AppID: "wrong", AppKey: "wrong", OfficeID: "O-1", SecretKey: "office-secret"},
			"Invalid app credentials",
		},
		{
			"wrong office secret",
			sikka.Config{AppID: "test-app", AppKey: "test-app-key", OfficeID: "O-1", SecretKey: "wrong"},
			"Invalid secret key",
		},
		{
			"unknown office",
			sikka.Config{AppID: "test-app", AppKey: "test-app-key", OfficeID: "O-404", SecretKey: "office-secret"},
			"Invalid secret key",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			config := test.config
			config.BaseURL = server.URL
			config.HTTPClient = server.Client()
			client := sikka.New(config)

			err := client.Authenticate(context.Background())
			var authErr *sikka.AuthenticationError
			if !errors.As(err, &authErr) {
				t.Fatalf("expected an AuthenticationError, got %T (%v)", err, err)
			}
			if authErr.Status != http.StatusUnauthorized {
				t.Errorf("expected status 401, got %d", authErr.Status)
			}
			if !strings.Contains(authErr.Message, test.expected) {
				t.Errorf("expected message to contain %q, got %q", test.expected, authErr.Message)
			}
			if client.IsAuthenticated() {
				t.Error("expected the client to stay unauthenticated")
			}
		})
	}
}

func TestServiceRejectsUnsupportedGrant(t *testing.T) {
	service := newTestService(t)
	server := httptest.NewServer(service.Router())
	defer server.Close()

	payload, _ := json.Marshal(map[string]string{
		"grant_type": "password",
		"app_id":     service.AppID,
		"app_key":    service.AppKey,
	})
	response, err := server.Client().Post(server.URL+"/v4/request_key", "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("request failed: %s", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", response.StatusCode)
	}
}

func TestServiceVerifiesRequestKey(t *testing.T) {
	service := newTestService(t)
	server := httptest.NewServer(service.Router())
	defer server.Close()

	tests := []struct {
		name string
		url  string
	}{
		{"missing key", server.URL + "/v4/patients"},
		{"unknown key", server.URL + "/v4/patients?request_key=bogus"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			response, err := server.Client().Get(test.url)
			if err != nil {
				t.Fatalf("request failed: %s", err)
			}
			defer response.Body.Close()

			if response.StatusCode != http.StatusUnauthorized {
				t.Errorf("expected status 401, got %d", response.StatusCode)
			}
			payload := apiError{}
			if err := json.NewDecoder(response.Body).Decode(&payload); err != nil {
				t.Fatalf("could not decode error body: %s", err)
			}
			if payload.ErrorDescription == "" {
				t.Error("expected an error_description in the body")
			}
		})
	}
}

func TestServiceAcceptsKeyViaHeader(t *testing.T) {
	service := newTestService(t)
	server := httptest.NewServer(service.Router())
	defer server.Close()

	requestKey, _, _, err := service.keys.Issue("O-1", time.Hour)
	if err != nil {
		t.Fatalf("Issue failed: %s", err)
	}

	request, _ := http.NewRequest(http.MethodGet, server.URL+"/v4/patients", nil)
	request.Header.Set("Request-Key", requestKey)
	response, err := server.Client().Do(request)
	if err != nil {
		t.Fatalf("request failed: %s", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", response.StatusCode)
	}
}

func TestServiceRejectsExpiredKey(t *testing.T) {
	service := newTestService(t)
	server := httptest.NewServer(service.Router())
	defer server.Close()

	requestKey, _, _, err := service.keys.Issue("O-1", -time.Hour)
	if err != nil {
		t.Fatalf("Issue failed: %s", err)
	}

	response, err := server.Client().Get(server.URL + "/v4/patients?request_key=" + requestKey)
	if err != nil {
		t.Fatalf("request failed: %s", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected status 401, got %d", response.StatusCode)
	}
}

func TestServiceListFilters(t *testing.T) {
	service := newTestService(t)
	server := httptest.NewServer(service.Router())
	defer server.Close()

	client := newServiceClient(service, server)
	if err := client.Authenticate(context.Background()); err != nil {
		t.Fatalf("Authenticate failed: %s", err)
	}
	ctx := context.Background()

	patients, err := client.Patients().List(ctx, sikka.PatientListParams{Lastname: "doe"})
	if err != nil {
		t.Fatalf("List failed: %s", err)
	}
	if len(patients) != 2 || patients[0].PatientID != "P-1" || patients[1].PatientID != "P-3" {
		t.Errorf("unexpected patients: %+v", patients)
	}

	claims, err := client.Claims().List(ctx, sikka.ClaimListParams{PatientID: "P-2"})
	if err != nil {
		t.Fatalf("List failed: %s", err)
	}
	if len(claims) != 1 || claims[0].ClaimSrNo != "456" {
		t.Errorf("unexpected claims: %+v", claims)
	}

	procedures, err := client.Transactions().ListProcedures(ctx, "123")
	if err != nil {
		t.Fatalf("ListProcedures failed: %s", err)
	}
	if len(procedures) != 1 || procedures[0].ProcedureCode != "D1110" {
		t.Errorf("unexpected procedures: %+v", procedures)
	}

	paymentTypes, err := client.PaymentTypes().List(ctx, sikka.PaymentTypeListParams{InsurancePayment: true})
	if err != nil {
		t.Fatalf("List failed: %s", err)
	}
	if len(paymentTypes) != 1 || paymentTypes[0].Code != "INS" {
		t.Errorf("unexpected payment types: %+v", paymentTypes)
	}
}

func TestServiceListPaginationWindow(t *testing.T) {
	service := newTestService(t)
	server := httptest.NewServer(service.Router())
	defer server.Close()

	client := newServiceClient(service, server)
	if err := client.Authenticate(context.Background()); err != nil {
		t.Fatalf("Authenticate failed: %s", err)
	}

	first, err := client.Patients().List(context.Background(), sikka.PatientListParams{Limit: 2})
	if err != nil {
		t.Fatalf("List failed: %s", err)
	}
	second, err := client.Patients().List(context.Background(), sikka.PatientListParams{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("List failed: %s", err)
	}

	if len(first) != 2 || len(second) != 1 {
		t.Fatalf("unexpected window sizes %d/%d", len(first), len(second))
	}
	if second[0].PatientID != "P-3" {
		t.Errorf("unexpected second page: %+v", second)
	}
}

func TestServicePostClaimPayment(t *testing.T) {
	service := newTestService(t)
	server := httptest.NewServer(service.Router())
	defer server.Close()

	client := newServiceClient(service, server)
	if err := client.Authenticate(context.Background()); err != nil {
		t.Fatalf("Authenticate failed: %s", err)
	}

	response, err := client.ClaimPayments().Post(context.Background(), sikka.ClaimPaymentRequest{
		OfficeID:       "O-1",
		ClaimSrNo:      "123",
		PaymentType:    "CHK",
		PaymentDate:    "2024-05-01",
		ProcedureCodes: "D1110",
		Amounts:        "50.00",
	})
	if err != nil {
		t.Fatalf("Post failed: %s", err)
	}
	if response.Status != "success" || response.PaymentID == "" {
		t.Errorf("unexpected response: %+v", response)
	}

	payments := service.Data.Transactions(func(transaction sikka.Transaction) bool {
		return transaction.ClaimSrNo == "123" && transaction.TransactionType == "Payment" && transaction.TransactionSrNo == response.PaymentID
	})
	if len(payments) != 1 {
		t.Errorf("expected the posted payment to be recorded, got %+v", payments)
	}
}

func TestServicePostClaimPaymentValidation(t *testing.T) {
	service := newTestService(t)
	server := httptest.NewServer(service.Router())
	defer server.Close()

	client := newServiceClient(service, server)
	if err := client.Authenticate(context.Background()); err != nil {
		t.Fatalf("Authenticate failed: %s", err)
	}

	_, err := client.ClaimPayments().Post(context.Background(), sikka.ClaimPaymentRequest{
		OfficeID:    "O-1",
		PaymentType: "CHK",
	})
	var reqErr *sikka.APIRequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected an APIRequestError, got %T (%v)", err, err)
	}
	if reqErr.Status != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", reqErr.Status)
	}
}

func TestServiceUnknownRoute(t *testing.T) {
	service := newTestService(t)
	server := httptest.NewServer(service.Router())
	defer server.Close()

	response, err := server.Client().Get(server.URL + "/v4/nope")
	if err != nil {
		t.Fatalf("request failed: %s", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", response.StatusCode)
	}
}
