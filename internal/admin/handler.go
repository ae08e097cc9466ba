package admin

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/interview-prep/backend/internal/httputil"
	"github.com/interview-prep/backend/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the console on a router that already requires an
// authenticated admin.
func (h *Handler) RegisterRoutes(admin *mux.Router) {
	admin.HandleFunc("/submissions", h.ListSubmissions).Methods("GET")
	admin.HandleFunc("/submissions/{id}", h.UpdateSubmission).Methods("PUT")
	admin.HandleFunc("/mocks", h.ListMocks).Methods("GET")
	admin.HandleFunc("/mocks/{id}", h.GetMock).Methods("GET")
	admin.HandleFunc("/mocks/{id}", h.UpdateMock).Methods("PUT")
}

func (h *Handler) ListSubmissions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	list, err := h.service.Submissions(r.Context(), models.SubmissionFilter{
		Status:   query.Get("status"),
		Category: query.Get("category"),
		Limit:    httputil.IntQueryParam(query, "limit", DefaultLimit),
		Skip:     httputil.IntQueryParam(query, "skip", 0),
	})
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) UpdateSubmission(w http.ResponseWriter, r *http.Request) {
	var review models.SubmissionReview
	if err := httputil.DecodeJSON(r, &review); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	result, err := h.service.ReviewSubmission(r.Context(), mux.Vars(r)["id"], review)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) ListMocks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	list, err := h.service.Mocks(r.Context(), models.MockFilter{
		Type:  query.Get("type"),
		Limit: httputil.IntQueryParam(query, "limit", DefaultLimit),
		Skip:  httputil.IntQueryParam(query, "skip", 0),
	})
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) GetMock(w http.ResponseWriter, r *http.Request) {
	m, err := h.service.Mock(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, m)
}

func (h *Handler) UpdateMock(w http.ResponseWriter, r *http.Request) {
	var review models.MockReview
	if err := httputil.DecodeJSON(r, &review); err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	m, err := h.service.ReviewMock(r.Context(), mux.Vars(r)["id"], review)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, m)
}
