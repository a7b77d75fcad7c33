package sikka

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/practisync/sikka-client/logging"
)

// get performs a single authenticated GET request against a domain endpoint
// and decodes the JSON response into T.
// The request key is conveyed both as the 'request_key' query parameter and as
// the 'Request-Key' header; the upstream accepts either. Caller-supplied query
// parameters overwrite same-named defaults.
// A 2xx response with an empty or all-whitespace body yields the zero value of
// T instead of a decode attempt. Some upstream list endpoints answer 200 with
// no body at all for "no results"; this shim exists for exactly that quirk and
// is deliberately not applied to POST responses.
func get[T any](ctx context.Context, client *Client, path string, params url.Values) (T, error) {
	var zero T

	if err := client.session.ensureAuthenticated(ctx); err != nil {
		return zero, err
	}
	key, err := client.session.currentKey()
	if err != nil {
		return zero, err
	}

	query := url.Values{}
	query.Set("request_key", key)
	for name := range params {
		query.Set(name, params.Get(name))
	}

	logging.Get().Debug("dispatching GET request", map[string]any{
		"endpoint": path,
		"params":   params.Encode(),
	})

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, client.config.BaseURL+path+"?"+query.Encode(), nil)
	if err != nil {
		return zero, err
	}
	request.Header.Set("Request-Key", key)
	request.Header.Set("Content-Type", "application/json")

	status, body, err := perform(client, request)
	if err != nil {
		return zero, err
	}

	logging.Get().Debug("received GET response", map[string]any{
		"endpoint": path,
		"status":   status,
	})

	if status < 200 || status > 299 {
		return zero, requestError(path, status, body)
	}
	if strings.TrimSpace(string(body)) == "" {
		return zero, nil
	}

	target := new(T)
	if err := json.Unmarshal(body, target); err != nil {
		return zero, decodeError(path, status, err)
	}
	return *target, nil
}

// post performs a single authenticated POST request against a domain endpoint,
// serializing payload as the JSON body and decoding the JSON response into T.
// Unlike get, an empty success body is a decode failure: the write endpoints
// are expected to always answer with a body.
func post[T any](ctx context.Context, client *Client, path string, payload any) (T, error) {
	var zero T

	if err := client.session.ensureAuthenticated(ctx); err != nil {
		return zero, err
	}
	key, err := client.session.currentKey()
	if err != nil {
		return zero, err
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return zero, err
	}

	logging.Get().Debug("dispatching POST request", map[string]any{
		"endpoint": path,
		"body":     string(encoded),
	})

	query := url.Values{}
	query.Set("request_key", key)
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, client.config.BaseURL+path+"?"+query.Encode(), bytes.NewReader(encoded))
	if err != nil {
		return zero, err
	}
	request.Header.Set("Request-Key", key)
	request.Header.Set("Content-Type", "application/json")

	status, body, err := perform(client, request)
	if err != nil {
		return zero, err
	}

	logging.Get().Debug("received POST response", map[string]any{
		"endpoint": path,
		"status":   status,
	})

	if status < 200 || status > 299 {
		return zero, requestError(path, status, body)
	}

	target := new(T)
	if err := json.Unmarshal(body, target); err != nil {
		return zero, decodeError(path, status, err)
	}
	return *target, nil
}

// perform executes a prepared request and drains its body.
// Transport errors surface as-is; there is exactly one attempt per dispatch.
func perform(client *Client, request *http.Request) (int, []byte, error) {
	response, err := client.config.HTTPClient.Do(request)
	if err != nil {
		return 0, nil, err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return 0, nil, err
	}
	return response.StatusCode, body, nil
}

func requestError(path string, status int, body []byte) *APIRequestError {
	return &APIRequestError{
		Path:   path,
		Status: status,
		Reason: http.StatusText(status),
		Body:   string(body),
	}
}

// decodeError reports a success response whose body did not match the expected
// shape. It reuses the APIRequestError kind so callers keep a three-kind
// taxonomy while the message still names the decode problem.
func decodeError(path string, status int, err error) *APIRequestError {
	return &APIRequestError{
		Path:   path,
		Status: status,
		Reason: http.StatusText(status),
		Body:   "malformed response body: " + err.Error(),
	}
}
