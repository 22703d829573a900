package vkauth

import (
	"github.com/caarlos0/env/v11"
	"golang.org/x/oauth2/vk"
)

// Documented defaults applied by Config.WithDefaults.
const (
	DefaultProfileURL     = "https://api.vk.com/method/users.get"
	DefaultAPIVersion     = "5.131"
	DefaultLang           = "en"
	DefaultPhotoSize      = 200
	DefaultScopeSeparator = ","
)

// Config holds VK OAuth configuration.
// Zero values for the optional fields are replaced with the documented
// defaults; use WithDefaults to obtain the resolved configuration.
type Config struct {
	ClientID     string   `env:"VK_OAUTH_CLIENT_ID,required"`
	ClientSecret string   `env:"VK_OAUTH_CLIENT_SECRET,required"`
	RedirectURL  string   `env:"VK_OAUTH_REDIRECT_URL" envDefault:""`
	Scopes       []string `env:"VK_OAUTH_SCOPES" envSeparator:","`

	// AuthURL and TokenURL override VK's standard OAuth endpoints,
	// mainly for tests pointed at a local server.
	AuthURL  string `env:"VK_OAUTH_AUTH_URL" envDefault:""`
	TokenURL string `env:"VK_OAUTH_TOKEN_URL" envDefault:""`

	// ProfileURL is the users.get endpoint the profile is fetched from.
	ProfileURL string `env:"VK_OAUTH_PROFILE_URL" envDefault:""`

	// APIVersion is sent as the v query parameter on profile requests.
	APIVersion string `env:"VK_OAUTH_API_VERSION" envDefault:""`

	// Lang is sent as the lang query parameter on profile requests.
	Lang string `env:"VK_OAUTH_LANG" envDefault:""`

	// PhotoSize selects the photo_<size> profile field (e.g. 200 -> photo_200).
	PhotoSize int `env:"VK_OAUTH_PHOTO_SIZE"`

	// ProfileFields lists extra users.get fields requested on top of the
	// required set. Duplicates of required fields are ignored; order is kept.
	ProfileFields []string `env:"VK_OAUTH_PROFILE_FIELDS" envSeparator:","`

	// Display is the VK rendering hint for the authorization page.
	// Only DisplayPage, DisplayPopup and DisplayMobile are forwarded.
	Display DisplayMode `env:"VK_OAUTH_DISPLAY" envDefault:""`

	// ScopeSeparator joins the scope list into the scope query parameter.
	// VK expects comma-separated scopes.
	ScopeSeparator string
}

// WithDefaults returns a copy of the configuration with every unset
// optional field filled with its documented default. ClientID,
// ClientSecret, RedirectURL and Scopes are left untouched.
func (c Config) WithDefaults() Config {
	if c.AuthURL == "" {
		c.AuthURL = vk.Endpoint.AuthURL
	}
	if c.TokenURL == "" {
		c.TokenURL = vk.Endpoint.TokenURL
	}
	if c.ProfileURL == "" {
		c.ProfileURL = DefaultProfileURL
	}
	if c.APIVersion == "" {
		c.APIVersion = DefaultAPIVersion
	}
	if c.Lang == "" {
		c.Lang = DefaultLang
	}
	if c.PhotoSize == 0 {
		c.PhotoSize = DefaultPhotoSize
	}
	if c.ScopeSeparator == "" {
		c.ScopeSeparator = DefaultScopeSeparator
	}
	return c
}

// LoadConfigFromEnv reads VK_OAUTH_* environment variables into a Config
// and applies the documented defaults.
func LoadConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg.WithDefaults(), nil
}
