// Demo server wiring the VK provider into a chi router: /auth/vk starts
// the flow, /auth/vk/callback completes it and prints the profile.
package main

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrymomot/vkauth"
)

const stateCookie = "vk_oauth_state"

func main() {
	log := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := vkauth.LoadConfigFromEnv()
	if err != nil {
		log.Error("config error", "error", err)
		os.Exit(1)
	}

	provider, err := vkauth.New(cfg)
	if err != nil {
		log.Error("provider error", "error", err)
		os.Exit(1)
	}

	strategy, err := vkauth.NewStrategy(provider, func(r *http.Request, accessToken, refreshToken string, params vkauth.TokenParams, profile *vkauth.Profile) (any, error) {
		// A real application would look up or create its own user record here.
		return profile, nil
	})
	if err != nil {
		log.Error("strategy error", "error", err)
		os.Exit(1)
	}

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/auth/vk", func(w http.ResponseWriter, r *http.Request) {
		state := randomState()
		http.SetCookie(w, &http.Cookie{
			Name:     stateCookie,
			Value:    state,
			Path:     "/",
			HttpOnly: true,
			Secure:   r.TLS != nil,
		})
		http.Redirect(w, r, provider.AuthCodeURL(state), http.StatusFound)
	})

	r.Get("/auth/vk/callback", func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(stateCookie)
		if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}

		user, err := strategy.Authenticate(r.Context(), r, r.URL.Query().Get("code"))
		if err != nil {
			log.Error("authentication failed", "error", err)
			http.Error(w, "authentication failed", http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(user)
	})

	addr := os.Getenv("ADDRESS")
	if addr == "" {
		addr = ":8080"
	}

	log.Info("listening", "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}

func randomState() string {
	b := make([]byte, 24)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
