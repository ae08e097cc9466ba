package interviews

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/interview-prep/backend/internal/apperr"
	"github.com/interview-prep/backend/internal/models"
)

type memRepo struct {
	rows map[string]models.Interview
}

func newMemRepo() *memRepo {
	return &memRepo{rows: map[string]models.Interview{}}
}

func (m *memRepo) Create(_ context.Context, iv *models.Interview) error {
	m.rows[iv.ID] = *iv
	return nil
}

func (m *memRepo) List(_ context.Context, userID string, f models.InterviewFilter, now time.Time) ([]models.Interview, int, error) {
	var matched []models.Interview
	for _, iv := range m.rows {
		if iv.UserID != userID {
			continue
		}
		if f.Status != "" && string(iv.Status) != f.Status {
			continue
		}
		if f.Query != "" && !strings.Contains(strings.ToLower(iv.Company+" "+iv.Role), strings.ToLower(f.Query)) {
			continue
		}
		if f.Upcoming != nil && (!iv.Date.Before(now)) != *f.Upcoming {
			continue
		}
		matched = append(matched, iv)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Date.After(matched[j].Date) })

	start := (f.Page - 1) * f.Limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], len(matched), nil
}

func (m *memRepo) Get(_ context.Context, id, userID string) (*models.Interview, error) {
	iv, ok := m.rows[id]
	if !ok || iv.UserID != userID {
		return nil, apperr.ErrNotFound
	}
	return &iv, nil
}

func (m *memRepo) Update(_ context.Context, iv *models.Interview) error {
	if _, ok := m.rows[iv.ID]; !ok {
		return apperr.ErrNotFound
	}
	m.rows[iv.ID] = *iv
	return nil
}

func (m *memRepo) Delete(_ context.Context, id, userID string) error {
	iv, ok := m.rows[id]
	if !ok || iv.UserID != userID {
		return apperr.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func strPtr(s string) *string { return &s }

var fixedNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestService() (*Service, *memRepo) {
	repo := newMemRepo()
	svc := NewService(repo)
	svc.now = func() time.Time { return fixedNow }
	return svc, repo
}

func TestCreateDefaults(t *testing.T) {
	svc, _ := newTestService()

	iv, err := svc.Create(context.Background(), "u1", models.InterviewInput{
		Company: strPtr("  Acme "),
		Role:    strPtr("Backend Engineer"),
		Date:    strPtr("2026-07-01"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if iv.Company != "Acme" || iv.Status != models.InterviewPending {
		t.Errorf("interview = %+v", iv)
	}
	if iv.Topics == nil || len(iv.Topics) != 0 {
		t.Errorf("Topics = %#v, want empty slice", iv.Topics)
	}
	if want := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC); !iv.Date.Equal(want) {
		t.Errorf("Date = %v, want %v", iv.Date, want)
	}
}

func TestCreateValidation(t *testing.T) {
	badStatus := models.InterviewStatus("Ghosted")
	tests := []struct {
		name string
		in   models.InterviewInput
	}{
		{"missing company", models.InterviewInput{Role: strPtr("r"), Date: strPtr("2026-01-01")}},
		{"missing date", models.InterviewInput{Company: strPtr("c"), Role: strPtr("r")}},
		{"bad date", models.InterviewInput{Company: strPtr("c"), Role: strPtr("r"), Date: strPtr("next tuesday")}},
		{"long company", models.InterviewInput{Company: strPtr(strings.Repeat("x", 101)), Role: strPtr("r"), Date: strPtr("2026-01-01")}},
		{"bad status", models.InterviewInput{Company: strPtr("c"), Role: strPtr("r"), Date: strPtr("2026-01-01"), Status: &badStatus}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestService()
			_, err := svc.Create(context.Background(), "u1", tt.in)
			if !errors.Is(err, apperr.ErrValidation) {
				t.Errorf("error = %v, want validation", err)
			}
			if len(repo.rows) != 0 {
				t.Error("invalid interview was stored")
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2026-03-04", time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)},
		{"2026-03-04T09:30", time.Date(2026, 3, 4, 9, 30, 0, 0, time.UTC)},
		{"2026-03-04T09:30:00+02:00", time.Date(2026, 3, 4, 7, 30, 0, 0, time.UTC)},
		{"2026-03-04T09:30:00.250Z", time.Date(2026, 3, 4, 9, 30, 0, 250_000_000, time.UTC)},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.in)
		if err != nil || !got.Equal(tt.want) {
			t.Errorf("ParseDate(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := ParseDate("04/03/2026"); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("ParseDate(slashes) error = %v", err)
	}
}

func TestListPagingAndFilters(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	for i, date := range []string{"2026-01-10", "2026-02-10", "2026-07-10", "2026-08-10", "2026-09-10"} {
		company := "Globex"
		if i%2 == 0 {
			company = "Acme"
		}
		if _, err := svc.Create(ctx, "u1", models.InterviewInput{Company: strPtr(company), Role: strPtr("SRE"), Date: strPtr(date)}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	if _, err := svc.Create(ctx, "u2", models.InterviewInput{Company: strPtr("Acme"), Role: strPtr("SRE"), Date: strPtr("2026-01-01")}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	list, err := svc.List(ctx, "u1", models.InterviewFilter{Page: 2, Limit: 2})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := models.PageMeta{Total: 5, Page: 2, Pages: 3, Limit: 2}
	if list.Meta != want {
		t.Errorf("Meta = %+v, want %+v", list.Meta, want)
	}
	if len(list.Interviews) != 2 || list.Interviews[0].Date.Month() != time.July {
		t.Errorf("page 2 = %+v", list.Interviews)
	}

	upcoming := true
	list, _ = svc.List(ctx, "u1", models.InterviewFilter{Upcoming: &upcoming})
	if list.Meta.Total != 3 || list.Meta.Limit != DefaultPageSize || list.Meta.Page != 1 {
		t.Errorf("upcoming meta = %+v", list.Meta)
	}

	list, _ = svc.List(ctx, "u1", models.InterviewFilter{Query: " acme "})
	if list.Meta.Total != 3 {
		t.Errorf("query total = %d, want 3", list.Meta.Total)
	}

	list, _ = svc.List(ctx, "nobody", models.InterviewFilter{Limit: 500})
	if list.Meta.Pages != 1 || list.Meta.Limit != MaxPageSize || list.Interviews == nil {
		t.Errorf("empty list = %+v", list)
	}
}

func TestUpdateAndDeleteAreOwnerScoped(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	iv, err := svc.Create(ctx, "u1", models.InterviewInput{Company: strPtr("Acme"), Role: strPtr("SRE"), Date: strPtr("2026-07-01"), Notes: strPtr("bring ID")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	passed := models.InterviewPassed
	updated, err := svc.Update(ctx, iv.ID, "u1", models.InterviewInput{Status: &passed, Topics: []string{"Go"}})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Status != models.InterviewPassed || updated.Notes != "bring ID" || !reflect.DeepEqual(updated.Topics, []string{"Go"}) {
		t.Errorf("updated = %+v", updated)
	}

	_, err = svc.Update(ctx, iv.ID, "u2", models.InterviewInput{Status: &passed})
	if !errors.Is(err, apperr.ErrNotFound) || apperr.Message(err) != "Interview not found or not allowed" {
		t.Errorf("foreign Update error = %v", err)
	}
	if _, err := svc.Get(ctx, iv.ID, "u2"); apperr.Message(err) != "Interview not found" {
		t.Errorf("foreign Get error = %v", err)
	}
	if err := svc.Delete(ctx, iv.ID, "u2"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("foreign Delete error = %v", err)
	}
	if err := svc.Delete(ctx, iv.ID, "u1"); err != nil {
		t.Errorf("Delete: %v", err)
	}
}

func TestWhereClause(t *testing.T) {
	upcoming := false
	where, args := whereClause("u1", models.InterviewFilter{Status: "Passed", Query: "50%_off", Upcoming: &upcoming}, fixedNow)

	wantWhere := "user_id = $1 AND status = $2 AND (company ILIKE $3 OR role ILIKE $3) AND date < $4"
	if where != wantWhere {
		t.Errorf("where = %q\nwant    %q", where, wantWhere)
	}
	if len(args) != 4 || args[2] != `%50\%\_off%` || args[3] != fixedNow {
		t.Errorf("args = %#v", args)
	}
}

func TestPageCount(t *testing.T) {
	tests := []struct{ total, limit, want int }{
		{0, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{5, 2, 3},
	}
	for _, tt := range tests {
		if got := pageCount(tt.total, tt.limit); got != tt.want {
			t.Errorf("pageCount(%d, %d) = %d, want %d", tt.total, tt.limit, got, tt.want)
		}
	}
}
