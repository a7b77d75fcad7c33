package sikka

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the production base URL of the upstream practice-management API
const DefaultBaseURL = "https://api.sikkasoft.com"

// Config represents the configuration used to construct a Client.
// The four credential fields are mandatory; BaseURL and HTTPClient are
// optional and fall back to DefaultBaseURL and a 30-second-timeout client.
type Config struct {
	AppID     string
	AppKey    string
	OfficeID  string
	SecretKey string

	BaseURL    string
	HTTPClient *http.Client
}

// Client provides typed access to the upstream practice-management API.
// Every client owns its credentials and session state exclusively; multiple
// clients are fully independent of each other.
type Client struct {
	config  Config
	session *session
}

// New creates a new API client out of the given configuration.
// The credentials are immutable from this point on.
func New(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	config.BaseURL = strings.TrimSuffix(config.BaseURL, "/")
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}

	client := &Client{config: config}
	client.session = &session{client: client}
	return client
}

// Authenticate requests a fresh request key from the key endpoint using the
// configured office credentials and replaces the whole session state with it
func (client *Client) Authenticate(ctx context.Context) error {
	return client.session.authenticate(ctx)
}

// RefreshAuthentication mints a new request key using the current refresh key.
// It fails with an AuthenticationError if no refresh key is available, i.e. if
// Authenticate has never succeeded on this client.
func (client *Client) RefreshAuthentication(ctx context.Context) error {
	return client.session.refresh(ctx)
}

// IsAuthenticated returns whether the client currently holds a request key
// whose expiry lies in the future.
// This is a point-in-time liveness check without any look-ahead margin; it is
// meant for external status queries and does not influence the transparent
// refresh performed before dispatching requests.
func (client *Client) IsAuthenticated() bool {
	return client.session.isAuthenticated()
}

// ClearAuth unconditionally discards the request key, refresh key and expiry.
// It performs no network call and is idempotent.
func (client *Client) ClearAuth() {
	client.session.clearAuth()
}

// Patients provides access to the patient resource
func (client *Client) Patients() *PatientService {
	return &PatientService{client: client}
}

// Claims provides access to the claim resource
func (client *Client) Claims() *ClaimService {
	return &ClaimService{client: client}
}

// Transactions provides access to the transaction resource
func (client *Client) Transactions() *TransactionService {
	return &TransactionService{client: client}
}

// PaymentTypes provides access to the payment type resource
func (client *Client) PaymentTypes() *PaymentTypeService {
	return &PaymentTypeService{client: client}
}

// ClaimPayments provides access to the claim payment resource
func (client *Client) ClaimPayments() *ClaimPaymentService {
	return &ClaimPaymentService{client: client}
}
