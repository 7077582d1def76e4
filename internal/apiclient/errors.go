package apiclient

import "fmt"

// NetworkError wraps a transport-level failure (DNS, connection refused,
// timeout) where no HTTP response was received.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network failure during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// HTTPError is a non-2xx response from the backend, carrying the status code
// and the raw body text.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("backend returned status %d: %s", e.Status, e.Body)
}

// NotFound reports whether the response was a 404.
func (e *HTTPError) NotFound() bool { return e.Status == 404 }

// ForbiddenError is an authorization precondition that failed locally,
// before any network call was made.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	return "forbidden: " + e.Reason
}

// AuthError is a login failure: the backend rejected the credentials or the
// request could not be completed.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication failed: %s: %v", e.Message, e.Err)
	}
	return "authentication failed: " + e.Message
}

func (e *AuthError) Unwrap() error { return e.Err }

// AuthClaimsError means the issued token decoded cleanly but is missing a
// required claim, or carries one in an unusable form.
type AuthClaimsError struct {
	Claim string
}

func (e *AuthClaimsError) Error() string {
	return "token is missing a usable " + e.Claim + " claim"
}

// TokenDecodeError means the issued token could not be decoded at all.
type TokenDecodeError struct {
	Err error
}

func (e *TokenDecodeError) Error() string {
	return fmt.Sprintf("decoding token: %v", e.Err)
}

func (e *TokenDecodeError) Unwrap() error { return e.Err }
