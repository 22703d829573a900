package vkauth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/oauth2"
)

// ProviderName is the identifier for the VK OAuth provider.
const ProviderName = "vkontakte"

// DisplayMode is VK's rendering hint for the authorization page.
type DisplayMode string

const (
	DisplayPage   DisplayMode = "page"
	DisplayPopup  DisplayMode = "popup"
	DisplayMobile DisplayMode = "mobile"
)

func (m DisplayMode) valid() bool {
	switch m {
	case DisplayPage, DisplayPopup, DisplayMobile:
		return true
	}
	return false
}

// DefaultScopes returns the default scopes for VK OAuth. The email scope
// is required for VK to include the email claim in the token response.
func DefaultScopes() []string {
	return []string{"email"}
}

// Provider implements the VK OAuth flow: authorization URL generation,
// code exchange with VK-specific error translation, and profile fetching
// with normalization.
type Provider struct {
	config     *oauth2.Config
	httpClient *http.Client
	profileURL string
	photoField string
	display    DisplayMode
}

// New creates a new VK OAuth provider.
// Returns an error if ClientID or ClientSecret is empty.
func New(cfg Config, opts ...Option) (*Provider, error) {
	if cfg.ClientID == "" {
		return nil, ErrMissingClientID
	}
	if cfg.ClientSecret == "" {
		return nil, ErrMissingClientSecret
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	cfg = cfg.WithDefaults()

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes()
	}
	// x/oauth2 joins scope elements with spaces; VK expects the configured
	// separator, so the list is pre-joined into a single element.
	if len(scopes) > 1 {
		scopes = []string{strings.Join(scopes, cfg.ScopeSeparator)}
	}

	photoField := fmt.Sprintf("photo_%d", cfg.PhotoSize)

	return &Provider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
		},
		httpClient: o.httpClient,
		profileURL: buildProfileURL(cfg, profileFields(photoField, cfg.ProfileFields)),
		photoField: photoField,
		display:    cfg.Display,
	}, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string {
	return ProviderName
}

// AuthCodeURL generates the authorization URL. When a display mode is
// configured, the display parameter is added; unknown modes add nothing.
func (p *Provider) AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string {
	if p.display.valid() {
		opts = append([]oauth2.AuthCodeOption{oauth2.SetAuthURLParam("display", string(p.display))}, opts...)
	}
	return p.config.AuthCodeURL(state, opts...)
}

// Exchange trades an authorization code for tokens. When VK's token
// endpoint responds with its object-shaped error payload, the error is
// returned as a *TokenError; any other failure is returned unchanged.
func (p *Provider) Exchange(ctx context.Context, code, redirectURI string) (*oauth2.Token, error) {
	cfg := p.config
	if redirectURI != "" {
		cfg = &oauth2.Config{
			ClientID:     p.config.ClientID,
			ClientSecret: p.config.ClientSecret,
			RedirectURL:  redirectURI,
			Scopes:       p.config.Scopes,
			Endpoint:     p.config.Endpoint,
		}
	}
	ctx = p.contextWithHTTPClient(ctx)

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		var rerr *oauth2.RetrieveError
		if errors.As(err, &rerr) {
			if terr := parseTokenError(rerr.Body); terr != nil {
				return nil, terr
			}
		}
		return nil, err
	}
	return token, nil
}

// FetchProfile retrieves the user's profile from VK's users.get endpoint
// and normalizes it. Emails is never populated here; VK only exposes the
// email claim through the token response (see Strategy.Authenticate).
func (p *Provider) FetchProfile(ctx context.Context, token *oauth2.Token) (*Profile, error) {
	ctx = p.contextWithHTTPClient(ctx)
	client := p.config.Client(ctx, token)

	resp, err := client.Get(p.profileURL)
	if err != nil {
		return nil, errors.Join(ErrFetchFailed, fmt.Errorf("fetch profile: %w", err))
	}
	if resp == nil {
		return nil, errors.Join(ErrNilResponse, errors.New("unexpected nil response from vk users.get endpoint"))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, errors.Join(ErrRequestFailed, fmt.Errorf("profile request failed: status=%d body=%s", resp.StatusCode, body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Join(ErrFetchFailed, fmt.Errorf("read profile response: %w", err))
	}

	var envelope userEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, errors.Join(ErrDecodeFailed, fmt.Errorf("decode profile: %w", err))
	}
	if envelope.Error != nil {
		return nil, &APIError{Message: envelope.Error.Message, Code: envelope.Error.Code}
	}
	if len(envelope.Response) == 0 {
		return nil, errors.Join(ErrDecodeFailed, errors.New("empty response list"))
	}

	profile, err := newProfile(body, envelope.Response[0], p.photoField)
	if err != nil {
		return nil, errors.Join(ErrDecodeFailed, fmt.Errorf("decode profile record: %w", err))
	}
	return profile, nil
}

func (p *Provider) contextWithHTTPClient(ctx context.Context) context.Context {
	if p.httpClient != nil {
		return context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	}
	return ctx
}

// profileFields unions the required users.get fields with caller-requested
// extras, de-duplicated, preserving caller order.
func profileFields(photoField string, extra []string) []string {
	fields := []string{"uid", "first_name", "last_name", "screen_name", "sex", photoField}
	seen := make(map[string]struct{}, len(fields)+len(extra))
	for _, f := range fields {
		seen[f] = struct{}{}
	}
	for _, f := range extra {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		fields = append(fields, f)
	}
	return fields
}

func buildProfileURL(cfg Config, fields []string) string {
	q := url.Values{}
	q.Set("fields", strings.Join(fields, ","))
	q.Set("v", cfg.APIVersion)
	q.Set("https", "1")
	if cfg.Lang != "" {
		q.Set("lang", cfg.Lang)
	}
	return cfg.ProfileURL + "?" + q.Encode()
}

// parseTokenError extracts VK's object-shaped token error payload
// { "error": { "error_msg": ..., "error_code": ... } }. A body without an
// object-shaped error field yields nil so the caller falls back to the
// generic OAuth2 error.
func parseTokenError(body []byte) *TokenError {
	var payload struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil
	}
	raw := bytes.TrimSpace(payload.Error)
	if len(raw) == 0 || raw[0] != '{' {
		return nil
	}
	var e apiErrorPayload
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil
	}
	return &TokenError{Message: e.Message, Code: e.Code}
}
