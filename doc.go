// Package vkauth implements the OAuth2 authorization code flow for
// VK (VKontakte) and normalizes the provider's user profile.
//
// The OAuth2 handshake itself is delegated to golang.org/x/oauth2; this
// package shapes the requests and responses around it: it appends VK's
// display parameter to the authorization URL, translates VK's error
// payloads into typed errors, fetches the users.get profile, and merges
// the email claim that VK returns only alongside the access token.
//
// # Usage
//
//	provider, err := vkauth.New(vkauth.Config{
//		ClientID:     os.Getenv("VK_OAUTH_CLIENT_ID"),
//		ClientSecret: os.Getenv("VK_OAUTH_CLIENT_SECRET"),
//		RedirectURL:  "https://example.com/auth/vk/callback",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	strategy, err := vkauth.NewStrategy(provider, vkauth.VerifyFunc(
//		func(accessToken, refreshToken string, profile *vkauth.Profile) (any, error) {
//			return lookupOrCreateUser(profile)
//		},
//	))
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Redirect the user to the authorization page.
//	url := provider.AuthCodeURL("random-state-string")
//
//	// In the callback handler, complete the flow.
//	user, err := strategy.Authenticate(r.Context(), r, r.FormValue("code"))
//
// Verify callbacks come in three shapes: VerifyFunc, VerifyParamsFunc
// (adds the token-exchange parameters, including the email claim and VK
// user id) and VerifyRequestFunc (adds the originating *http.Request).
// NewStrategy selects the shape at configuration time; an unsupported
// callback value yields ErrUnsupportedVerify.
//
// # Error Handling
//
// Failures are distinguishable by kind:
//
//   - *TokenError: VK's token endpoint rejected the code exchange
//   - *APIError: users.get responded with a logical error payload
//   - ErrFetchFailed, ErrRequestFailed, ErrDecodeFailed: transport,
//     status and parse failures around the profile request
//
// Use errors.As for the typed errors and errors.Is for the sentinels:
//
//	var apiErr *vkauth.APIError
//	if errors.As(err, &apiErr) && apiErr.Code == 5 {
//		// access token expired or revoked
//	}
//
// # Testing
//
// Use WithHTTPClient to inject a transport that routes VK endpoints to a
// local handler:
//
//	provider, err := vkauth.New(cfg, vkauth.WithHTTPClient(client))
package vkauth
