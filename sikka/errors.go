package sikka

import "fmt"

// NotAuthenticatedError indicates that an operation requiring a request key was
// performed before Authenticate was called (or after ClearAuth).
type NotAuthenticatedError struct {
	Message string
}

func (err *NotAuthenticatedError) Error() string {
	return err.Message
}

// AuthenticationError indicates that the key endpoint rejected the provided
// credentials or refresh key, or that a refresh was attempted without a refresh
// key on hand.
// The message carries the upstream-supplied detail whenever one is available.
type AuthenticationError struct {
	Message string
	Status  int
}

func (err *AuthenticationError) Error() string {
	return err.Message
}

// APIRequestError indicates a non-success response from a domain endpoint
type APIRequestError struct {
	Path   string
	Status int
	Reason string
	Body   string
}

func (err *APIRequestError) Error() string {
	return fmt.Sprintf("request to '%s' failed: HTTP %d %s: %s", err.Path, err.Status, err.Reason, err.Body)
}

func errNotAuthenticated() *NotAuthenticatedError {
	return &NotAuthenticatedError{Message: "not authenticated; call Authenticate first"}
}
