package practice

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"strconv"

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

// RegisterRoutes mounts the practice and report endpoints on an
// authenticated router.
func (h *Handler) RegisterRoutes(protected *mux.Router) {
	protected.HandleFunc("/practice/questions", h.Questions).Methods("GET")
	protected.HandleFunc("/practice/submit", h.Submit).Methods("POST")
	protected.HandleFunc("/practice/results", h.Results).Methods("GET")
	protected.HandleFunc("/practice/results/{id}", h.Result).Methods("GET")
	protected.HandleFunc("/report", h.Report).Methods("GET")
}

func (h *Handler) Questions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	category := httputil.QueryStringDefault(query, "category", models.CategoryAptitude)
	difficulty := httputil.QueryStringDefault(query, "difficulty", models.DifficultyMedium)

	limit := DefaultSampleSize
	if v, err := strconv.Atoi(query.Get("limit")); err == nil && v != 0 {
		limit = v
	}

	questions, err := h.service.Questions(r.Context(), category, difficulty, limit)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, questions)
}

type submitRequest struct {
	Category       string          `json:"category"`
	Difficulty     string          `json:"difficulty"`
	Answers        json.RawMessage `json:"answers"`
	TimeTaken      flexString      `json:"timeTaken"`
	SubmissionCode string          `json:"submissionCode"`
	Language       string          `json:"language"`
}

type answerPayload struct {
	QuestionID    flexString      `json:"questionId"`
	SelectedIndex json.RawMessage `json:"selectedIndex"`
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

	answers, err := parseAnswers(req.Answers)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}

	resp, err := h.service.Submit(r.Context(), userID, models.Submission{
		Category:       req.Category,
		Difficulty:     req.Difficulty,
		Answers:        answers,
		TimeTaken:      string(req.TimeTaken),
		SubmissionCode: req.SubmissionCode,
		Language:       req.Language,
	})
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, resp)
}

func (h *Handler) Results(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		httputil.WriteMessage(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	results, err := h.service.Results(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, results)
}

func (h *Handler) Result(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		httputil.WriteMessage(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	result, err := h.service.Result(r.Context(), mux.Vars(r)["id"], userID)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		httputil.WriteMessage(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	report, err := h.service.Report(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, report)
}

// ── Request Decoding ───────────────────────────────────

// parseAnswers returns nil when raw is absent or not a JSON array, leaving the
// missing-field error to the service.
func parseAnswers(raw json.RawMessage) ([]models.Answer, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, nil
	}

	var payload []answerPayload
	if err := json.Unmarshal(trimmed, &payload); err != nil {
		return nil, apperr.Validation("answers must be an array of {questionId, selectedIndex}")
	}

	answers := make([]models.Answer, 0, len(payload))
	for _, p := range payload {
		answers = append(answers, models.Answer{
			QuestionID:    string(p.QuestionID),
			SelectedIndex: selectedIndex(p.SelectedIndex),
		})
	}
	return answers, nil
}

// selectedIndex accepts only JSON numbers with an integral value. Anything
// else is an unanswered question.
func selectedIndex(raw json.RawMessage) *int {
	var f *float64
	if len(raw) == 0 || json.Unmarshal(raw, &f) != nil || f == nil {
		return nil
	}
	if *f != math.Trunc(*f) {
		return nil
	}
	i := int(*f)
	return &i
}

// flexString decodes a JSON string or number as text; null becomes "".
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.Equal(trimmed, []byte("null")):
		*f = ""
	case len(trimmed) > 0 && trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = flexString(s)
	default:
		var n json.Number
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return err
		}
		*f = flexString(n.String())
	}
	return nil
}
