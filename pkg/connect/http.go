package connect

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/journeyboard/platform/pkg/common/logger"
)

const stateCookie = "oauth_state"

type HTTPHandler struct {
	providers *Providers
	tokens    *TokenRepository
}

// NewHTTPHandler wires the connect endpoints. tokens may be nil when no
// database is configured; granted tokens are then acknowledged but not kept.
func NewHTTPHandler(providers *Providers, tokens *TokenRepository) *HTTPHandler {
	return &HTTPHandler{providers: providers, tokens: tokens}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/connect/{provider}", h.handleAuthorize).Methods(http.MethodGet)
	router.HandleFunc("/connect/{provider}/callback", h.handleCallback).Methods(http.MethodGet)
}

// handleAuthorize starts the authorization-code flow: a random state goes
// into a short-lived cookie and the caller is sent to the provider.
func (h *HTTPHandler) handleAuthorize(w http.ResponseWriter, r *http.Request) {
	provider := mux.Vars(r)["provider"]
	cfg, err := h.providers.Get(provider)
	if err != nil {
		http.Error(w, "unknown or unconfigured provider", http.StatusNotFound)
		return
	}

	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		logger.Log.WithError(err).Error("failed to generate oauth state")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	state := hex.EncodeToString(raw)

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   600,
	})
	http.Redirect(w, r, cfg.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

func (h *HTTPHandler) handleCallback(w http.ResponseWriter, r *http.Request) {
	provider := mux.Vars(r)["provider"]
	cfg, err := h.providers.Get(provider)
	if err != nil {
		http.Error(w, "unknown or unconfigured provider", http.StatusNotFound)
		return
	}

	query := r.URL.Query()
	if authErr := query.Get("error"); authErr != "" {
		logger.Log.WithField("provider", provider).WithField("error", authErr).Warn("oauth flow denied")
		http.Error(w, "authorization denied: "+authErr, http.StatusBadRequest)
		return
	}

	code := query.Get("code")
	if code == "" {
		http.Error(w, "missing authorization code", http.StatusBadRequest)
		return
	}

	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != query.Get("state") {
		http.Error(w, "state mismatch", http.StatusBadRequest)
		return
	}

	token, err := cfg.Exchange(r.Context(), code)
	if err != nil {
		logger.Log.WithError(err).WithField("provider", provider).Error("token exchange failed")
		http.Error(w, "token exchange failed", http.StatusBadGateway)
		return
	}

	stored := false
	if h.tokens != nil {
		if err := h.tokens.Save(r.Context(), provider, token); err != nil {
			logger.Log.WithError(err).WithField("provider", provider).Error("failed to store token")
		} else {
			stored = true
		}
	} else {
		logger.Log.WithField("provider", provider).Warn("no token store configured, granted token not kept")
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"provider": provider,
		"linked":   true,
		"stored":   stored,
		"expiry":   token.Expiry.Format(time.RFC3339),
	})
}
