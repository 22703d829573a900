package vkauth

import (
	"context"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"
)

// TokenParams is the auxiliary data VK returns alongside the access token,
// outside the standard token fields. The email claim is only obtainable
// here; VK's profile API does not expose it.
type TokenParams struct {
	Email  string
	UserID int64
}

// Verify callback shapes, mirroring the token/profile hand-off of common
// web auth middleware. The returned value is the application's own user
// record; a nil value with a nil error means authentication was declined.
type (
	// VerifyFunc receives the tokens and the normalized profile.
	VerifyFunc func(accessToken, refreshToken string, profile *Profile) (any, error)

	// VerifyParamsFunc additionally receives the token-exchange parameters.
	VerifyParamsFunc func(accessToken, refreshToken string, params TokenParams, profile *Profile) (any, error)

	// VerifyRequestFunc additionally receives the originating HTTP request.
	VerifyRequestFunc func(r *http.Request, accessToken, refreshToken string, params TokenParams, profile *Profile) (any, error)
)

// Strategy binds a Provider to an application-supplied verify callback
// and runs the post-redirect half of the authentication flow. It holds no
// mutable state and is safe for concurrent use.
type Strategy struct {
	provider      *Provider
	verify        VerifyFunc
	verifyParams  VerifyParamsFunc
	verifyRequest VerifyRequestFunc
}

// NewStrategy creates a Strategy dispatching to the given verify callback.
// Exactly one of the supported signatures must be supplied (named types or
// their plain function equivalents); anything else returns
// ErrUnsupportedVerify and the callback will never be invoked.
func NewStrategy(provider *Provider, verify any) (*Strategy, error) {
	s := &Strategy{provider: provider}

	switch v := verify.(type) {
	case VerifyFunc:
		s.verify = v
	case func(accessToken, refreshToken string, profile *Profile) (any, error):
		s.verify = v
	case VerifyParamsFunc:
		s.verifyParams = v
	case func(accessToken, refreshToken string, params TokenParams, profile *Profile) (any, error):
		s.verifyParams = v
	case VerifyRequestFunc:
		s.verifyRequest = v
	case func(r *http.Request, accessToken, refreshToken string, params TokenParams, profile *Profile) (any, error):
		s.verifyRequest = v
	default:
		return nil, ErrUnsupportedVerify
	}

	return s, nil
}

// Authenticate completes the authorization code flow: exchanges the code,
// fetches and normalizes the profile, merges the email claim from the
// token response, then dispatches to the verify callback. The request is
// forwarded to request-taking callbacks and may be nil otherwise. Either
// a result or an error is returned, never both.
func (s *Strategy) Authenticate(ctx context.Context, r *http.Request, code string) (any, error) {
	token, err := s.provider.Exchange(ctx, code, "")
	if err != nil {
		return nil, err
	}

	profile, err := s.provider.FetchProfile(ctx, token)
	if err != nil {
		return nil, err
	}

	params := tokenParams(token)
	if params.Email != "" {
		profile.Emails = []Email{{Value: params.Email}}
	}

	switch {
	case s.verifyRequest != nil:
		return s.verifyRequest(r, token.AccessToken, token.RefreshToken, params, profile)
	case s.verifyParams != nil:
		return s.verifyParams(token.AccessToken, token.RefreshToken, params, profile)
	default:
		return s.verify(token.AccessToken, token.RefreshToken, profile)
	}
}

// tokenParams pulls VK's extra token-response fields out of the token.
func tokenParams(token *oauth2.Token) TokenParams {
	var params TokenParams

	if email, ok := token.Extra("email").(string); ok {
		params.Email = email
	}

	switch id := token.Extra("user_id").(type) {
	case float64:
		params.UserID = int64(id)
	case int64:
		params.UserID = id
	case string:
		if n, err := strconv.ParseInt(id, 10, 64); err == nil {
			params.UserID = n
		}
	}

	return params
}
