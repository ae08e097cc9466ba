package mocks

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/interview-prep/backend/internal/apperr"
	"github.com/interview-prep/backend/internal/httputil"
	"github.com/interview-prep/backend/internal/middleware"
	"github.com/interview-prep/backend/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(protected *mux.Router) {
	protected.HandleFunc("/mock/start", h.Start).Methods("POST")
	protected.HandleFunc("/mock/submit", h.Submit).Methods("POST")
	protected.HandleFunc("/mock", h.List).Methods("GET")
}

type startRequest struct {
	Type models.MockType `json:"type"`
}

func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		httputil.WriteMessage(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req startRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	m, err := h.service.Start(r.Context(), userID, req.Type)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, m)
}

const maxResponses = 100

type submitRequest struct {
	InterviewID string          `json:"interviewId"`
	Responses   json.RawMessage `json:"responses"`
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		httputil.WriteMessage(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var req submitRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	responses, err := parseResponses(req.Responses)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	m, err := h.service.Submit(r.Context(), userID, req.InterviewID, responses)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, candidateView(*m))
}

// candidateView hides the reviewer-only draft.
func candidateView(m models.MockInterview) models.MockInterview {
	m.DraftFeedback = ""
	return m
}

// parseResponses returns nil unless raw is a JSON array. Non-string entries
// are kept as empty answers.
func parseResponses(raw json.RawMessage) ([]string, error) {
	var items []json.RawMessage
	if len(raw) == 0 || json.Unmarshal(raw, &items) != nil || items == nil {
		return nil, nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			s = ""
		}
		out = append(out, s)
	}
	if len(out) > maxResponses {
		return nil, apperr.Validation("at most %d responses are accepted", maxResponses)
	}
	return out, nil
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		httputil.WriteMessage(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	mocks, err := h.service.List(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	for i := range mocks {
		mocks[i] = candidateView(mocks[i])
	}
	httputil.WriteJSON(w, http.StatusOK, mocks)
}
