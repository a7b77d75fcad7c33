package sikka

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/practisync/sikka-client/logging"
)

// keyEndpointPath is the path of the endpoint that mints request keys
const keyEndpointPath = "/v4/request_key"

// refreshMargin is the fixed look-ahead used to decide whether a request key
// is about to expire and has to be refreshed before the next dispatch
const refreshMargin = time.Hour

const (
	grantNewKey     = "request_key"
	grantRefreshKey = "refresh_key"
)

// keyRequest represents the payload sent to the key endpoint.
// Depending on the grant type, either the office credentials (new key) or the
// refresh key (refresh) are present.
type keyRequest struct {
	GrantType  string `json:"grant_type"`
	AppID      string `json:"app_id"`
	AppKey     string `json:"app_key"`
	OfficeID   string `json:"office_id,omitempty"`
	SecretKey  string `json:"secret_key,omitempty"`
	RefreshKey string `json:"refresh_key,omitempty"`
}

// keyResponse represents the success payload of the key endpoint.
// The absolute end time is authoritative for expiry tracking; the client never
// derives its own expiry from a relative lifetime.
type keyResponse struct {
	RequestKey string `json:"request_key"`
	RefreshKey string `json:"refresh_key"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
}

// session owns the request key state of a single client.
// The key, refresh key and expiry are set and cleared strictly together; a
// mutex guards the triple so that concurrent callers observing a near-expiry
// key share a single refresh instead of racing two.
type session struct {
	client *Client

	mtx        sync.Mutex
	requestKey string
	refreshKey string
	expiresAt  time.Time
}

// authenticate mints a fresh request key using the office credentials and
// replaces the whole session triple with the result
func (ses *session) authenticate(ctx context.Context) error {
	ses.mtx.Lock()
	defer ses.mtx.Unlock()

	return ses.mintLocked(ctx, keyRequest{
		GrantType: grantNewKey,
		AppID:     ses.client.config.AppID,
		AppKey:    ses.client.config.AppKey,
		OfficeID:  ses.client.config.OfficeID,
		SecretKey: ses.client.config.SecretKey,
	})
}

// refresh mints a new request key using the current refresh key
func (ses *session) refresh(ctx context.Context) error {
	ses.mtx.Lock()
	defer ses.mtx.Unlock()

	return ses.refreshLocked(ctx)
}

func (ses *session) refreshLocked(ctx context.Context) error {
	if ses.refreshKey == "" {
		return &AuthenticationError{Message: "no refresh key available; call Authenticate first"}
	}

	return ses.mintLocked(ctx, keyRequest{
		GrantType:  grantRefreshKey,
		AppID:      ses.client.config.AppID,
		AppKey:     ses.client.config.AppKey,
		RefreshKey: ses.refreshKey,
	})
}

// ensureAuthenticated guards every dispatch.
// It fails if no request key is present at all and transparently refreshes the
// key if it expires within the refresh margin. A failing refresh propagates to
// the caller; the old key is kept in place in that case.
// While a refresh is in flight the session is locked, so concurrent dispatches
// wait for its outcome and then proceed with the renewed key.
func (ses *session) ensureAuthenticated(ctx context.Context) error {
	ses.mtx.Lock()
	defer ses.mtx.Unlock()

	if ses.requestKey == "" {
		return errNotAuthenticated()
	}
	if !ses.expiresAt.IsZero() && time.Until(ses.expiresAt) < refreshMargin {
		return ses.refreshLocked(ctx)
	}
	return nil
}

// currentKey returns the present request key to stamp onto outgoing requests
func (ses *session) currentKey() (string, error) {
	ses.mtx.Lock()
	defer ses.mtx.Unlock()

	if ses.requestKey == "" {
		return "", errNotAuthenticated()
	}
	return ses.requestKey, nil
}

// isAuthenticated returns whether a request key is present and not yet expired.
// Unlike ensureAuthenticated, this check uses no look-ahead margin.
func (ses *session) isAuthenticated() bool {
	ses.mtx.Lock()
	defer ses.mtx.Unlock()

	return ses.requestKey != "" && ses.expiresAt.After(time.Now())
}

// clearAuth resets the session triple
func (ses *session) clearAuth() {
	ses.mtx.Lock()
	defer ses.mtx.Unlock()

	ses.requestKey = ""
	ses.refreshKey = ""
	ses.expiresAt = time.Time{}
}

// mintLocked performs the actual call to the key endpoint and replaces the
// session triple on success. The session mutex has to be held by the caller.
func (ses *session) mintLocked(ctx context.Context, grant keyRequest) error {
	logging.Get().Debug("requesting key", map[string]any{
		"endpoint":   keyEndpointPath,
		"grant_type": grant.GrantType,
		"app_id":     grant.AppID,
	})

	payload, err := json.Marshal(grant)
	if err != nil {
		return err
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, ses.client.config.BaseURL+keyEndpointPath, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := ses.client.config.HTTPClient.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()
	body, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return &AuthenticationError{
			Message: keyErrorMessage(response.StatusCode, body),
			Status:  response.StatusCode,
		}
	}

	key := new(keyResponse)
	if err := json.Unmarshal(body, key); err != nil {
		return &AuthenticationError{Message: fmt.Sprintf("malformed key endpoint response: %s", err), Status: response.StatusCode}
	}
	expiresAt, err := parseEndTime(key.EndTime)
	if err != nil {
		return &AuthenticationError{Message: fmt.Sprintf("malformed key end time '%s': %s", key.EndTime, err), Status: response.StatusCode}
	}

	ses.requestKey = key.RequestKey
	ses.refreshKey = key.RefreshKey
	ses.expiresAt = expiresAt

	logging.Get().Debug("key granted", map[string]any{
		"grant_type": grant.GrantType,
		"expires_at": expiresAt,
	})
	return nil
}

// keyErrorMessage extracts a human-readable message out of a key endpoint
// error body, falling back to the HTTP status line for unstructured bodies
func keyErrorMessage(status int, body []byte) string {
	payload := struct {
		ErrorDescription string `json:"error_description"`
		Error            string `json:"error"`
		Message          string `json:"message"`
	}{}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.ErrorDescription != "":
			return payload.ErrorDescription
		case payload.Error != "":
			return payload.Error
		case payload.Message != "":
			return payload.Message
		}
	}
	return fmt.Sprintf("HTTP %d %s", status, http.StatusText(status))
}

// parseEndTime parses the absolute key end time sent by the key endpoint.
// The upstream emits RFC 3339 instants on current endpoint revisions and
// space-separated UTC timestamps on older ones.
func parseEndTime(value string) (time.Time, error) {
	instant, err := time.Parse(time.RFC3339, value)
	if err == nil {
		return instant, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
