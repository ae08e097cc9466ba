package interviews

import (
	"net/http"

	"github.com/gorilla/mux"

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
	protected.HandleFunc("/interviews", h.Create).Methods("POST")
	protected.HandleFunc("/interviews", h.List).Methods("GET")
	protected.HandleFunc("/interviews/{id}", h.Get).Methods("GET")
	protected.HandleFunc("/interviews/{id}", h.Update).Methods("PUT")
	protected.HandleFunc("/interviews/{id}", h.Delete).Methods("DELETE")
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		httputil.WriteMessage(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var in models.InterviewInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	iv, err := h.service.Create(r.Context(), userID, in)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, iv)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		httputil.WriteMessage(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	query := r.URL.Query()
	filter := models.InterviewFilter{
		Status:   query.Get("status"),
		Query:    query.Get("q"),
		Upcoming: httputil.QueryBoolPtr(query, "upcoming"),
		Page:     httputil.IntQueryParam(query, "page", 1),
		Limit:    httputil.IntQueryParam(query, "limit", DefaultPageSize),
	}

	list, err := h.service.List(r.Context(), userID, filter)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		httputil.WriteMessage(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	iv, err := h.service.Get(r.Context(), mux.Vars(r)["id"], userID)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, iv)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		httputil.WriteMessage(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	var in models.InterviewInput
	if err := httputil.DecodeJSON(r, &in); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	iv, err := h.service.Update(r.Context(), mux.Vars(r)["id"], userID, in)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, iv)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		httputil.WriteMessage(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	if err := h.service.Delete(r.Context(), mux.Vars(r)["id"], userID); err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteMessage(w, http.StatusOK, "Deleted")
}
