package resumes

import (
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/interview-prep/backend/internal/httputil"
	"github.com/interview-prep/backend/internal/middleware"
)

// multipart overhead allowed on top of the file itself
const formOverhead = 1 << 20

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(protected *mux.Router) {
	protected.HandleFunc("/resume", h.Upload).Methods("POST")
	protected.HandleFunc("/resume", h.List).Methods("GET")
	protected.HandleFunc("/resume/{id}/file", h.File).Methods("GET")
	protected.HandleFunc("/resume/{id}", h.Delete).Methods("DELETE")
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		httputil.WriteMessage(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize+formOverhead)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.WriteMessage(w, http.StatusBadRequest, "File too large (max 5MB)")
			return
		}
		httputil.WriteMessage(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("resume")
	if err != nil {
		httputil.WriteMessage(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	resume, err := h.service.Upload(r.Context(), userID, Upload{
		OriginalName: header.Filename,
		MimeType:     header.Header.Get("Content-Type"),
		Size:         header.Size,
		Body:         file,
	})
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, resume)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		httputil.WriteMessage(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	list, err := h.service.List(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) File(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		httputil.WriteMessage(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	resume, body, err := h.service.Open(r.Context(), mux.Vars(r)["id"], userID)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", resume.MimeType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": resume.OriginalName}))
	if _, err := io.Copy(w, body); err != nil {
		slog.Warn("stream resume", "id", resume.ID, "error", err)
	}
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
