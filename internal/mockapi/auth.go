package mockapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

// keyRequest mirrors the payload clients send to the key endpoint
type keyRequest struct {
	GrantType  string `json:"grant_type"`
	AppID      string `json:"app_id"`
	AppKey     string `json:"app_key"`
	OfficeID   string `json:"office_id"`
	SecretKey  string `json:"secret_key"`
	RefreshKey string `json:"refresh_key"`
}

// keyResponse mirrors the success payload of the key endpoint
type keyResponse struct {
	RequestKey string `json:"request_key"`
	RefreshKey string `json:"refresh_key"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	ExpiresIn  int64  `json:"expires_in"`
}

// EndpointRequestKey handles the 'POST /v4/request_key' endpoint.
// Depending on the grant type, a new key pair is minted from office
// credentials or an existing refresh key is redeemed.
func (service *Service) EndpointRequestKey(writer http.ResponseWriter, request *http.Request) {
	grant := new(keyRequest)
	if err := json.NewDecoder(request.Body).Decode(grant); err != nil {
		service.writer.writeError(writer, http.StatusBadRequest, &apiError{ErrorDescription: "Malformed request body"})
		return
	}

	if grant.AppID != service.AppID || grant.AppKey != service.AppKey {
		service.writer.writeError(writer, http.StatusUnauthorized, &apiError{ErrorDescription: "Invalid app credentials"})
		return
	}

	switch grant.GrantType {
	case "request_key":
		secret, ok := service.Offices[grant.OfficeID]
		if !ok || secret != grant.SecretKey {
			service.writer.writeError(writer, http.StatusUnauthorized, &apiError{ErrorDescription: "Invalid secret key"})
			return
		}
		requestKey, refreshKey, expiresAt, err := service.keys.Issue(grant.OfficeID, service.KeyLifetime)
		if err != nil {
			service.writer.writeInternalError(writer, err)
			return
		}
		service.writeKeyResponse(writer, requestKey, refreshKey, expiresAt)
	case "refresh_key":
		requestKey, refreshKey, expiresAt, err := service.keys.Redeem(grant.RefreshKey, service.KeyLifetime)
		if err != nil {
			service.writer.writeInternalError(writer, err)
			return
		}
		if requestKey == "" {
			service.writer.writeError(writer, http.StatusUnauthorized, &apiError{ErrorDescription: "Invalid refresh key"})
			return
		}
		service.writeKeyResponse(writer, requestKey, refreshKey, expiresAt)
	default:
		service.writer.writeError(writer, http.StatusBadRequest, &apiError{ErrorDescription: "Unsupported grant_type"})
	}
}

func (service *Service) writeKeyResponse(writer http.ResponseWriter, requestKey, refreshKey string, expiresAt time.Time) {
	service.writer.writeJSON(writer, &keyResponse{
		RequestKey: requestKey,
		RefreshKey: refreshKey,
		StartTime:  time.Now().UTC().Format(time.RFC3339),
		EndTime:    expiresAt.Format(time.RFC3339),
		ExpiresIn:  int64(time.Until(expiresAt).Seconds()),
	})
}

// MiddlewareVerifyKey makes sure that the requesting client has provided a
// valid, unexpired request key.
// The key is accepted both as the 'request_key' query parameter and as the
// 'Request-Key' header, matching the redundant transport of the real upstream.
func (service *Service) MiddlewareVerifyKey(next http.HandlerFunc) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		rawKey := request.URL.Query().Get("request_key")
		if rawKey == "" {
			rawKey = strings.TrimSpace(request.Header.Get("Request-Key"))
		}
		if rawKey == "" {
			service.writer.writeError(writer, http.StatusUnauthorized, errUnauthorized)
			return
		}

		grant, err := service.keys.GetByRequestKey(rawKey)
		if err != nil {
			service.writer.writeInternalError(writer, err)
			return
		}
		if grant == nil || grant.ExpiresAt <= time.Now().Unix() {
			service.writer.writeError(writer, http.StatusUnauthorized, errUnauthorized)
			return
		}

		next(writer, request)
	}
}
