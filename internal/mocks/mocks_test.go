package mocks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/interview-prep/backend/internal/apperr"
	"github.com/interview-prep/backend/internal/events"
	"github.com/interview-prep/backend/internal/middleware"
	"github.com/interview-prep/backend/internal/models"
)

type memRepo struct {
	mu    sync.Mutex
	mocks map[string]models.MockInterview
}

func newMemRepo() *memRepo {
	return &memRepo{mocks: map[string]models.MockInterview{}}
}

func (m *memRepo) Create(_ context.Context, mock *models.MockInterview) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mocks[mock.ID] = *mock
	return nil
}

func (m *memRepo) Get(_ context.Context, id string) (*models.MockInterview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mock, ok := m.mocks[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &mock, nil
}

func (m *memRepo) SaveSubmission(_ context.Context, mock *models.MockInterview) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mocks[mock.ID] = *mock
	return nil
}

func (m *memRepo) ListByUser(_ context.Context, userID string) ([]models.MockInterview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.MockInterview
	for _, mock := range m.mocks {
		if mock.UserID == userID {
			out = append(out, mock)
		}
	}
	return out, nil
}

func (m *memRepo) ListAdmin(_ context.Context, f models.MockFilter) ([]models.AdminMock, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.AdminMock
	for _, mock := range m.mocks {
		if f.Type == "" || string(mock.Type) == f.Type {
			out = append(out, models.AdminMock{MockInterview: mock})
		}
	}
	return out, nil
}

func (m *memRepo) GetAdmin(ctx context.Context, id string) (*models.AdminMock, error) {
	mock, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.AdminMock{MockInterview: *mock}, nil
}

func (m *memRepo) Review(_ context.Context, id string, score *int, feedback *string, reviewedAt time.Time) (*models.MockInterview, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mock, ok := m.mocks[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	if score != nil {
		mock.Score = *score
	}
	if feedback != nil {
		mock.Feedback = *feedback
	}
	mock.ReviewedAt = &reviewedAt
	m.mocks[id] = mock
	return &mock, nil
}

type stubDrafter struct {
	text string
	err  error
}

func (d stubDrafter) Draft(context.Context, *models.MockInterview) (string, error) {
	return d.text, d.err
}

type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *recordingPublisher) Publish(_ context.Context, key string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	return nil
}

var fixedNow = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

func newTestService(drafter Drafter) (*Service, *memRepo, *recordingPublisher) {
	repo := newMemRepo()
	pub := &recordingPublisher{}
	svc := NewService(repo, DefaultQuestionSets(), drafter, pub)
	svc.now = func() time.Time { return fixedNow }
	return svc, repo, pub
}

func TestDefaultQuestionSets(t *testing.T) {
	sets := DefaultQuestionSets()
	if len(sets[models.MockHR]) != 5 || len(sets[models.MockTechnical]) != 5 {
		t.Fatalf("sets = %v", sets)
	}
	if sets[models.MockHR][0] != "Tell me about yourself." {
		t.Errorf("first HR question = %q", sets[models.MockHR][0])
	}
	if sets[models.MockTechnical][4] != "What are React hooks and why are they useful?" {
		t.Errorf("last Technical question = %q", sets[models.MockTechnical][4])
	}
}

func TestParseQuestionSetsRejectsIncomplete(t *testing.T) {
	tests := []string{
		"HR:\n  - one\n",
		"HR:\n  - one\nTechnical: []\n",
		"HR: [a]\nTechnical: [b]\nSales: [c]\n",
		"HR: {",
	}
	for _, doc := range tests {
		if _, err := ParseQuestionSets([]byte(doc)); err == nil {
			t.Errorf("ParseQuestionSets(%q) error = nil", doc)
		}
	}
}

func TestCompletionScore(t *testing.T) {
	tests := []struct {
		responses []string
		questions int
		want      int
	}{
		{[]string{"a", "b", "c", "d", "e"}, 5, 100},
		{[]string{"a", " ", "", "d"}, 5, 40},
		{[]string{"a", "b"}, 3, 67},
		{[]string{"a"}, 3, 33},
		{nil, 5, 0},
		{[]string{"a"}, 0, 0},
	}
	for _, tt := range tests {
		if got := CompletionScore(tt.responses, tt.questions); got != tt.want {
			t.Errorf("CompletionScore(%q, %d) = %d, want %d", tt.responses, tt.questions, got, tt.want)
		}
	}
}

func TestStartAndSubmit(t *testing.T) {
	svc, repo, pub := newTestService(stubDrafter{text: "Looks promising."})
	ctx := context.Background()

	if _, err := svc.Start(ctx, "u1", "Sales"); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("Start(Sales) error = %v", err)
	}

	m, err := svc.Start(ctx, "u1", models.MockHR)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if len(m.Questions) != 5 || len(m.Responses) != 0 || m.Score != 0 || m.SubmittedAt != nil {
		t.Errorf("started mock = %+v", m)
	}

	if _, err := svc.Submit(ctx, "u2", m.ID, []string{"x"}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("foreign Submit error = %v, want not found", err)
	}
	if _, err := svc.Submit(ctx, "u1", m.ID, nil); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("Submit(nil responses) error = %v", err)
	}
	if _, err := svc.Submit(ctx, "u1", "missing", []string{}); apperr.Message(err) != "Interview not found" {
		t.Errorf("Submit(missing) error = %v", err)
	}

	submitted, err := svc.Submit(ctx, "u1", m.ID, []string{"I build APIs.", "", "Outage at 3am", "  "})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if submitted.Score != 40 || submitted.Feedback != SubmittedFeedback || submitted.DraftFeedback != "Looks promising." {
		t.Errorf("submitted = %+v", submitted)
	}
	if submitted.SubmittedAt == nil || !submitted.SubmittedAt.Equal(fixedNow) {
		t.Errorf("SubmittedAt = %v", submitted.SubmittedAt)
	}
	if stored := repo.mocks[m.ID]; stored.Score != 40 {
		t.Errorf("stored score = %d", stored.Score)
	}
	if !reflect.DeepEqual(pub.keys, []string{events.MockSubmitted}) {
		t.Errorf("published = %v", pub.keys)
	}
}

func TestSubmitSurvivesDraftFailure(t *testing.T) {
	svc, _, _ := newTestService(stubDrafter{err: errors.New("timeout")})
	ctx := context.Background()

	m, err := svc.Start(ctx, "u1", models.MockTechnical)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	submitted, err := svc.Submit(ctx, "u1", m.ID, []string{"a", "b", "c", "d", "e"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if submitted.Score != 100 || submitted.DraftFeedback != "" {
		t.Errorf("submitted = %+v", submitted)
	}
}

func TestReview(t *testing.T) {
	svc, _, pub := newTestService(nil)
	ctx := context.Background()

	m, err := svc.Start(ctx, "u1", models.MockHR)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}

	tests := []struct {
		score float64
		want  int
	}{
		{72.5, 73},
		{150, 100},
		{-3, 0},
	}
	for _, tt := range tests {
		score := tt.score
		got, err := svc.Review(ctx, m.ID, models.MockReview{Score: &score})
		if err != nil {
			t.Fatalf("Review(%v): %v", tt.score, err)
		}
		if got.Score != tt.want || got.ReviewedAt == nil {
			t.Errorf("Review(%v) = score %d reviewedAt %v, want %d", tt.score, got.Score, got.ReviewedAt, tt.want)
		}
	}

	feedback := "Great energy."
	got, err := svc.Review(ctx, m.ID, models.MockReview{Feedback: &feedback})
	if err != nil || got.Feedback != feedback || got.Score != 0 {
		t.Errorf("feedback-only review = %+v, %v", got, err)
	}

	if _, err := svc.Review(ctx, "missing", models.MockReview{}); apperr.Message(err) != "Mock not found" {
		t.Errorf("Review(missing) error = %v", err)
	}
	if len(pub.keys) != 4 || pub.keys[0] != events.MockReviewed {
		t.Errorf("published = %v", pub.keys)
	}
}

func TestAdminListValidatesType(t *testing.T) {
	svc, _, _ := newTestService(nil)
	if _, err := svc.AdminList(context.Background(), models.MockFilter{Type: "Sales"}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("error = %v, want validation", err)
	}
	list, err := svc.AdminList(context.Background(), models.MockFilter{})
	if err != nil || list == nil {
		t.Errorf("AdminList() = %v, %v", list, err)
	}
}

func TestParseResponses(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{``, nil},
		{`null`, nil},
		{`"text"`, nil},
		{`[]`, []string{}},
		{`["a", 3, null, "b"]`, []string{"a", "", "", "b"}},
	}
	for _, tt := range tests {
		got, err := parseResponses(json.RawMessage(tt.raw))
		if err != nil {
			t.Fatalf("parseResponses(%q): %v", tt.raw, err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseResponses(%q) = %#v, want %#v", tt.raw, got, tt.want)
		}
	}
}

func TestHandlerStartAndSubmit(t *testing.T) {
	svc, _, _ := newTestService(stubDrafter{text: "Reviewer only."})
	r := mux.NewRouter()
	NewHandler(svc).RegisterRoutes(r.PathPrefix("/api").Subrouter())
	user := &models.User{ID: "u1"}

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req = req.WithContext(middleware.ContextWithUser(req.Context(), user))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	rec := do(http.MethodPost, "/api/mock/start", `{"type":"Technical"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("start = %d %s", rec.Code, rec.Body.String())
	}
	var started models.MockInterview
	if err := json.NewDecoder(rec.Body).Decode(&started); err != nil {
		t.Fatalf("decode: %v", err)
	}

	if rec := do(http.MethodPost, "/api/mock/start", `{"type":"Sales"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid type = %d", rec.Code)
	}
	if rec := do(http.MethodPost, "/api/mock/submit", `{"interviewId":"`+started.ID+`"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("missing responses = %d", rec.Code)
	}

	rec = do(http.MethodPost, "/api/mock/submit", `{"interviewId":"`+started.ID+`","responses":["a","b"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("submit = %d %s", rec.Code, rec.Body.String())
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("Reviewer only.")) {
		t.Error("submit response exposes the reviewer draft")
	}
	var submitted models.MockInterview
	if err := json.NewDecoder(rec.Body).Decode(&submitted); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if submitted.Score != 40 {
		t.Errorf("score = %d, want 40", submitted.Score)
	}

	rec = do(http.MethodGet, "/api/mock", "")
	if rec.Code != http.StatusOK {
		t.Errorf("list = %d", rec.Code)
	}
	if bytes.Contains(rec.Body.Bytes(), []byte("draftFeedback")) {
		t.Error("list response exposes the reviewer draft")
	}
}
