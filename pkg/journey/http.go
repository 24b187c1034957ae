package journey

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/journeyboard/platform/pkg/common/logger"
	"github.com/journeyboard/platform/pkg/common/models"
)

type HTTPHandler struct {
	service *Service
	maxBody int64
}

func NewHTTPHandler(service *Service, maxBody int64) *HTTPHandler {
	return &HTTPHandler{service: service, maxBody: maxBody}
}

func (h *HTTPHandler) Register(router *mux.Router) {
	router.HandleFunc("/board", h.handleBoard).Methods(http.MethodGet)
	router.HandleFunc("/records", h.handleListRecords).Methods(http.MethodGet)
	router.HandleFunc("/records", h.handleAddRecord).Methods(http.MethodPost)
	router.HandleFunc("/records/{id}/history", h.handleHistory).Methods(http.MethodGet)
	router.HandleFunc("/records/{id}/transition", h.handleTransition).Methods(http.MethodPost)
	router.HandleFunc("/records/{id}/transition/commit", h.handleCommitClose).Methods(http.MethodPost)
	router.HandleFunc("/records/{id}/transition/cancel", h.handleCancelClose).Methods(http.MethodPost)
	router.HandleFunc("/records/{id}/delete", h.handleStageDelete).Methods(http.MethodPost)
	router.HandleFunc("/records/{id}/delete/confirm", h.handleConfirmDelete).Methods(http.MethodPost)
	router.HandleFunc("/records/{id}/delete/cancel", h.handleCancelDelete).Methods(http.MethodPost)
	router.HandleFunc("/notes/{key}", h.handleGetNote).Methods(http.MethodGet)
	router.HandleFunc("/notes/{key}", h.handleSetNote).Methods(http.MethodPut)
}

func (h *HTTPHandler) limitBody(w http.ResponseWriter, r *http.Request) {
	if h.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *HTTPHandler) handleBoard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Board())
}

func (h *HTTPHandler) handleListRecords(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Snapshot())
}

func (h *HTTPHandler) handleAddRecord(w http.ResponseWriter, r *http.Request) {
	h.limitBody(w, r)

	var req models.AddLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Log.WithError(err).Warn("invalid add-record payload")
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	rec, err := h.service.AddRecord(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrNameRequired),
			errors.Is(err, ErrStartDateRequired),
			errors.Is(err, ErrUnknownBucket),
			errors.Is(err, ErrUnknownPlatform),
			errors.Is(err, ErrDatesRequired):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			logger.Log.WithError(err).Error("failed to add record")
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (h *HTTPHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	history, err := h.service.History(id)
	if err != nil {
		http.Error(w, "record not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"record_id": id,
		"history":   history,
	})
}

func (h *HTTPHandler) handleTransition(w http.ResponseWriter, r *http.Request) {
	h.limitBody(w, r)
	id := mux.Vars(r)["id"]

	var req models.TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	rec, pending, err := h.service.ChangeState(r.Context(), id, State(req.Target))
	if err != nil {
		switch {
		case errors.Is(err, ErrRecordNotFound):
			http.Error(w, "record not found", http.StatusNotFound)
		case errors.Is(err, ErrNoChange):
			writeJSON(w, http.StatusOK, map[string]string{"status": "unchanged"})
		case errors.Is(err, ErrUnknownState):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			logger.Log.WithError(err).Error("transition failed")
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	if pending != nil {
		writeJSON(w, http.StatusAccepted, map[string]interface{}{
			"status":     "confirmation_required",
			"target":     pending.Target,
			"book_date":  FormatDateInput(pending.BookDate),
			"clean_date": FormatDateInput(pending.CleanDate),
		})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *HTTPHandler) handleCommitClose(w http.ResponseWriter, r *http.Request) {
	h.limitBody(w, r)
	id := mux.Vars(r)["id"]

	var req models.CommitCloseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	rec, err := h.service.CommitClose(r.Context(), id, req.BookDate, req.CleanDate)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoPendingClose):
			http.Error(w, "no close staged for record", http.StatusNotFound)
		case errors.Is(err, ErrDatesRequired):
			// Staging survives so the caller can resubmit corrected dates.
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			logger.Log.WithError(err).Error("close commit failed")
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *HTTPHandler) handleCancelClose(w http.ResponseWriter, r *http.Request) {
	h.service.CancelClose(mux.Vars(r)["id"])
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (h *HTTPHandler) handleStageDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.service.StageDelete(id); err != nil {
		http.Error(w, "record not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "confirmation_required"})
}

func (h *HTTPHandler) handleConfirmDelete(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.service.ConfirmDelete(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, ErrDeleteNotStaged):
			http.Error(w, "delete not staged for record", http.StatusConflict)
		case errors.Is(err, ErrRecordNotFound):
			http.Error(w, "record not found", http.StatusNotFound)
		default:
			logger.Log.WithError(err).Error("delete failed")
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *HTTPHandler) handleCancelDelete(w http.ResponseWriter, r *http.Request) {
	h.service.CancelDelete(mux.Vars(r)["id"])
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (h *HTTPHandler) handleGetNote(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	writeJSON(w, http.StatusOK, map[string]string{
		"key":     key,
		"content": h.service.GetNote(r.Context(), key),
	})
}

func (h *HTTPHandler) handleSetNote(w http.ResponseWriter, r *http.Request) {
	h.limitBody(w, r)
	key := mux.Vars(r)["key"]

	var req models.NoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	h.service.SetNote(r.Context(), key, req.Content)
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}
