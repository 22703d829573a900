package vkauth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/vkauth"
)

// vkFlowHandler serves both the token endpoint and users.get for a full
// authentication flow. Extra token fields are merged into the token body.
func vkFlowHandler(tokenExtras map[string]any, profileBody string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/method/users.get" {
			_, _ = w.Write([]byte(profileBody))
			return
		}
		body := map[string]any{
			"access_token": "test-access-token",
			"token_type":   "Bearer",
			"expires_in":   86400,
		}
		for k, v := range tokenExtras {
			body[k] = v
		}
		_ = json.NewEncoder(w).Encode(body)
	})
}

const flowProfileBody = `{"response":[{"uid":1,"first_name":"A","last_name":"B","sex":2,"photo_200":"http://x"}]}`

func TestNewStrategy(t *testing.T) {
	t.Parallel()

	p, err := vkauth.New(vkauth.Config{
		ClientID:     "test-id",
		ClientSecret: "test-secret",
	})
	require.NoError(t, err)

	t.Run("accepts the three shapes", func(t *testing.T) {
		t.Parallel()

		for name, verify := range map[string]any{
			"basic": func(accessToken, refreshToken string, profile *vkauth.Profile) (any, error) {
				return nil, nil
			},
			"with params": func(accessToken, refreshToken string, params vkauth.TokenParams, profile *vkauth.Profile) (any, error) {
				return nil, nil
			},
			"with request": func(r *http.Request, accessToken, refreshToken string, params vkauth.TokenParams, profile *vkauth.Profile) (any, error) {
				return nil, nil
			},
			"named basic": vkauth.VerifyFunc(func(accessToken, refreshToken string, profile *vkauth.Profile) (any, error) {
				return nil, nil
			}),
			"named with params": vkauth.VerifyParamsFunc(func(accessToken, refreshToken string, params vkauth.TokenParams, profile *vkauth.Profile) (any, error) {
				return nil, nil
			}),
			"named with request": vkauth.VerifyRequestFunc(func(r *http.Request, accessToken, refreshToken string, params vkauth.TokenParams, profile *vkauth.Profile) (any, error) {
				return nil, nil
			}),
		} {
			s, err := vkauth.NewStrategy(p, verify)
			require.NoError(t, err, name)
			require.NotNil(t, s, name)
		}
	})

	t.Run("rejects unsupported shapes", func(t *testing.T) {
		t.Parallel()

		for name, verify := range map[string]any{
			"nil":           nil,
			"not a func":    "verify",
			"no params":     func() (any, error) { return nil, nil },
			"wrong arity":   func(accessToken string, profile *vkauth.Profile) (any, error) { return nil, nil },
			"wrong returns": func(accessToken, refreshToken string, profile *vkauth.Profile) error { return nil },
		} {
			s, err := vkauth.NewStrategy(p, verify)
			require.ErrorIs(t, err, vkauth.ErrUnsupportedVerify, name)
			require.Nil(t, s, name)
		}
	})
}

func TestStrategy_Authenticate(t *testing.T) {
	t.Parallel()

	t.Run("dispatches to basic shape", func(t *testing.T) {
		t.Parallel()

		handler := vkFlowHandler(nil, flowProfileBody)
		p := newTestProvider(t, vkauth.Config{}, handler)

		var gotAccess, gotRefresh string
		s, err := vkauth.NewStrategy(p, func(accessToken, refreshToken string, profile *vkauth.Profile) (any, error) {
			gotAccess = accessToken
			gotRefresh = refreshToken
			return profile.DisplayName, nil
		})
		require.NoError(t, err)

		result, err := s.Authenticate(context.Background(), nil, "test-code")
		require.NoError(t, err)
		require.Equal(t, "A B", result)
		require.Equal(t, "test-access-token", gotAccess)
		require.Empty(t, gotRefresh)
	})

	t.Run("dispatches to params shape with token extras", func(t *testing.T) {
		t.Parallel()

		handler := vkFlowHandler(map[string]any{"email": "user@example.com", "user_id": 2243}, flowProfileBody)
		p := newTestProvider(t, vkauth.Config{}, handler)

		var gotParams vkauth.TokenParams
		s, err := vkauth.NewStrategy(p, func(accessToken, refreshToken string, params vkauth.TokenParams, profile *vkauth.Profile) (any, error) {
			gotParams = params
			return profile, nil
		})
		require.NoError(t, err)

		_, err = s.Authenticate(context.Background(), nil, "test-code")
		require.NoError(t, err)
		require.Equal(t, "user@example.com", gotParams.Email)
		require.EqualValues(t, 2243, gotParams.UserID)
	})

	t.Run("dispatches to request shape with originating request", func(t *testing.T) {
		t.Parallel()

		handler := vkFlowHandler(nil, flowProfileBody)
		p := newTestProvider(t, vkauth.Config{}, handler)

		req, err := http.NewRequest(http.MethodGet, "https://example.com/auth/vk/callback?code=test-code", nil)
		require.NoError(t, err)

		var gotRequest *http.Request
		s, err := vkauth.NewStrategy(p, func(r *http.Request, accessToken, refreshToken string, params vkauth.TokenParams, profile *vkauth.Profile) (any, error) {
			gotRequest = r
			return profile, nil
		})
		require.NoError(t, err)

		_, err = s.Authenticate(context.Background(), req, "test-code")
		require.NoError(t, err)
		require.Same(t, req, gotRequest)
	})

	t.Run("email claim merged into profile", func(t *testing.T) {
		t.Parallel()

		handler := vkFlowHandler(map[string]any{"email": "user@example.com"}, flowProfileBody)
		p := newTestProvider(t, vkauth.Config{}, handler)

		var gotProfile *vkauth.Profile
		s, err := vkauth.NewStrategy(p, func(accessToken, refreshToken string, profile *vkauth.Profile) (any, error) {
			gotProfile = profile
			return profile, nil
		})
		require.NoError(t, err)

		_, err = s.Authenticate(context.Background(), nil, "test-code")
		require.NoError(t, err)
		require.Equal(t, []vkauth.Email{{Value: "user@example.com"}}, gotProfile.Emails)
	})

	t.Run("no email claim leaves profile emails empty", func(t *testing.T) {
		t.Parallel()

		handler := vkFlowHandler(nil, flowProfileBody)
		p := newTestProvider(t, vkauth.Config{}, handler)

		var gotProfile *vkauth.Profile
		s, err := vkauth.NewStrategy(p, func(accessToken, refreshToken string, profile *vkauth.Profile) (any, error) {
			gotProfile = profile
			return profile, nil
		})
		require.NoError(t, err)

		_, err = s.Authenticate(context.Background(), nil, "test-code")
		require.NoError(t, err)
		require.Nil(t, gotProfile.Emails)
	})

	t.Run("exchange failure skips verify", func(t *testing.T) {
		t.Parallel()

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"error_msg":"invalid_grant","error_code":100}}`))
		})
		p := newTestProvider(t, vkauth.Config{}, handler)

		invoked := false
		s, err := vkauth.NewStrategy(p, func(accessToken, refreshToken string, profile *vkauth.Profile) (any, error) {
			invoked = true
			return nil, nil
		})
		require.NoError(t, err)

		result, err := s.Authenticate(context.Background(), nil, "bad-code")
		require.Nil(t, result)
		require.False(t, invoked)

		var tokenErr *vkauth.TokenError
		require.ErrorAs(t, err, &tokenErr)
	})

	t.Run("profile failure skips verify", func(t *testing.T) {
		t.Parallel()

		handler := vkFlowHandler(nil, `{"error":{"error_msg":"Invalid token","error_code":5}}`)
		p := newTestProvider(t, vkauth.Config{}, handler)

		invoked := false
		s, err := vkauth.NewStrategy(p, func(accessToken, refreshToken string, profile *vkauth.Profile) (any, error) {
			invoked = true
			return nil, nil
		})
		require.NoError(t, err)

		result, err := s.Authenticate(context.Background(), nil, "test-code")
		require.Nil(t, result)
		require.False(t, invoked)

		var apiErr *vkauth.APIError
		require.ErrorAs(t, err, &apiErr)
	})

	t.Run("verify error propagates", func(t *testing.T) {
		t.Parallel()

		handler := vkFlowHandler(nil, flowProfileBody)
		p := newTestProvider(t, vkauth.Config{}, handler)

		s, err := vkauth.NewStrategy(p, func(accessToken, refreshToken string, profile *vkauth.Profile) (any, error) {
			return nil, context.DeadlineExceeded
		})
		require.NoError(t, err)

		result, err := s.Authenticate(context.Background(), nil, "test-code")
		require.Nil(t, result)
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
