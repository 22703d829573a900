package vkauth

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingClientID is returned when the OAuth client ID is not provided.
	ErrMissingClientID = errors.New("vkauth: missing client ID")

	// ErrMissingClientSecret is returned when the OAuth client secret is not provided.
	ErrMissingClientSecret = errors.New("vkauth: missing client secret")

	// ErrFetchFailed is returned when the profile request could not be issued.
	ErrFetchFailed = errors.New("vkauth: failed to fetch user profile")

	// ErrNilResponse is returned when the profile endpoint returns a nil response.
	ErrNilResponse = errors.New("vkauth: nil response from provider")

	// ErrRequestFailed is returned when the profile endpoint returns a non-OK status.
	ErrRequestFailed = errors.New("vkauth: request returned non-OK status")

	// ErrDecodeFailed is returned when the profile response fails to parse
	// or lacks the expected shape.
	ErrDecodeFailed = errors.New("vkauth: failed to decode response")

	// ErrUnsupportedVerify is returned by NewStrategy when the verify
	// callback does not match any of the supported signatures.
	ErrUnsupportedVerify = errors.New("vkauth: unsupported verify callback signature")
)

// APIError is a logical error reported by the VK API inside an otherwise
// successful profile response (invalid token, access denied, rate limit).
type APIError struct {
	Message string
	Code    int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("vkauth: api error %d: %s", e.Code, e.Message)
}

// TokenError is an error payload returned by VK's token endpoint during
// the authorization code exchange. It is distinct from APIError so callers
// can tell token revocation apart from profile-access denial.
type TokenError struct {
	Message string
	Code    int
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("vkauth: token error %d: %s", e.Code, e.Message)
}
