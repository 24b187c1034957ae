package leads

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/journeyboard/platform/pkg/common/logger"
)

type HTTPHandler struct {
	service *Service
	maxBody int64
}

func NewHTTPHandler(service *Service, maxBody int64) *HTTPHandler {
	return &HTTPHandler{service: service, maxBody: maxBody}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/webhook/thumbtack", h.handleThumbtackVerify).Methods(http.MethodGet)
	router.HandleFunc("/webhook/thumbtack", h.handleThumbtack).Methods(http.MethodPost)
	router.HandleFunc("/webhook/gmail", h.handleGmailVerify).Methods(http.MethodGet)
	router.HandleFunc("/webhook/gmail", h.handleGmail).Methods(http.MethodPost)
	router.HandleFunc("/notify/test", h.handleTestNotify).Methods(http.MethodPost)
}

func (h *HTTPHandler) limitBody(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}
}

func (h *HTTPHandler) handleThumbtack(w http.ResponseWriter, r *http.Request) {
	h.limitBody(w, r)

	var hook ThumbtackWebhook
	if err := json.NewDecoder(r.Body).Decode(&hook); err != nil {
		logger.Log.WithError(err).Warn("unreadable thumbtack webhook")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.HandleThumbtack(r.Context(), hook); err != nil {
		if errors.Is(err, ErrInvalidWebhook) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		logger.Log.WithError(err).Error("failed to process thumbtack webhook")
		http.Error(w, "failed to process webhook", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"message": "Webhook processed successfully",
	})
}

func (h *HTTPHandler) handleThumbtackVerify(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message":   "Thumbtack webhook endpoint is active",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HTTPHandler) handleGmail(w http.ResponseWriter, r *http.Request) {
	h.limitBody(w, r)

	var push PubSubPush
	if err := json.NewDecoder(r.Body).Decode(&push); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.HandleGmail(r.Context(), push); err != nil {
		// Bad payloads are acked with 400 so Pub/Sub stops redelivering them.
		logger.Log.WithError(err).Warn("failed to process gmail push")
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"success": true})
}

// handleGmailVerify answers the hub challenge during subscription setup.
func (h *HTTPHandler) handleGmailVerify(w http.ResponseWriter, r *http.Request) {
	if challenge := r.URL.Query().Get("hub.challenge"); challenge != "" {
		w.Write([]byte(challenge))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "Gmail webhook endpoint ready"})
}

func (h *HTTPHandler) handleTestNotify(w http.ResponseWriter, r *http.Request) {
	h.limitBody(w, r)

	var req struct {
		Text string `json:"text"`
	}
	// Body is optional for the test endpoint.
	json.NewDecoder(r.Body).Decode(&req)

	delivered := h.service.SendTest(r.Context(), req.Text)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"delivered": delivered})
}
