package practice

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/interview-prep/backend/internal/models"
)

func TestBuildReportEmpty(t *testing.T) {
	got := BuildReport(nil)

	if got.Attempts != 0 || got.AvgScore != 0 {
		t.Errorf("BuildReport(nil) = attempts %d avg %d, want 0/0", got.Attempts, got.AvgScore)
	}
	if got.Categories == nil || len(got.Categories) != 0 {
		t.Errorf("Categories = %#v, want empty slice", got.Categories)
	}
	if got.Recent == nil || len(got.Recent) != 0 {
		t.Errorf("Recent = %#v, want empty slice", got.Recent)
	}
}

func TestBuildReport(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	results := []models.TestResult{
		{ID: "r3", Category: "Coding", Score: 90, Total: 10, CorrectAnswers: 9, WrongAnswers: 1, SubmittedAt: t0, Status: models.StatusManualReview},
		{ID: "r1", Category: "Aptitude", Score: 80, SubmittedAt: t0.Add(time.Hour)},
		{ID: "r2", Category: "Aptitude", Score: 60, SubmittedAt: t0.Add(2 * time.Hour)},
		{ID: "r4", Category: "Verbal", Score: 50, SubmittedAt: t0.Add(3 * time.Hour)},
	}

	got := BuildReport(results)

	if got.Attempts != 4 {
		t.Errorf("Attempts = %d, want 4", got.Attempts)
	}
	if got.AvgScore != 70 {
		t.Errorf("AvgScore = %d, want 70", got.AvgScore)
	}
	if got.Percentile != 70 {
		t.Errorf("Percentile = %d, want 70", got.Percentile)
	}

	wantCategories := []models.CategoryStat{
		{Category: "Coding", AvgScore: 90, Count: 1},
		{Category: "Aptitude", AvgScore: 70, Count: 2},
		{Category: "Verbal", AvgScore: 50, Count: 1},
	}
	if !reflect.DeepEqual(got.Categories, wantCategories) {
		t.Errorf("Categories = %+v, want %+v", got.Categories, wantCategories)
	}

	var order []int
	for _, r := range got.Recent {
		order = append(order, r.Score)
	}
	if want := []int{50, 60, 80, 90}; !reflect.DeepEqual(order, want) {
		t.Errorf("recent scores = %v, want %v (newest first)", order, want)
	}
	last := got.Recent[3]
	if last.Total != 10 || last.CorrectAnswers != 9 || last.WrongAnswers != 1 || last.Status != models.StatusManualReview {
		t.Errorf("recent entry lost fields: %+v", last)
	}
}

func TestBuildReportRoundsMeans(t *testing.T) {
	results := []models.TestResult{
		{Category: "Aptitude", Score: 67},
		{Category: "Aptitude", Score: 68},
	}
	got := BuildReport(results)
	if got.AvgScore != 68 {
		t.Errorf("AvgScore = %d, want 68", got.AvgScore)
	}
	if got.Categories[0].AvgScore != 68 {
		t.Errorf("category AvgScore = %d, want 68", got.Categories[0].AvgScore)
	}
}

func TestBuildReportRecentLimit(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var results []models.TestResult
	for i := 0; i < 12; i++ {
		results = append(results, models.TestResult{
			ID:          fmt.Sprintf("r%d", i),
			Category:    "Aptitude",
			Score:       i,
			SubmittedAt: t0.Add(time.Duration(i) * time.Minute),
		})
	}

	got := BuildReport(results)
	if len(got.Recent) != 10 {
		t.Fatalf("len(Recent) = %d, want 10", len(got.Recent))
	}
	if got.Recent[0].Score != 11 || got.Recent[9].Score != 2 {
		t.Errorf("Recent spans scores %d..%d, want 11..2", got.Recent[0].Score, got.Recent[9].Score)
	}
	if got.Attempts != 12 {
		t.Errorf("Attempts = %d, want 12", got.Attempts)
	}
}

func TestPercentile(t *testing.T) {
	tests := []struct {
		score int
		want  int
	}{
		{100, 98},
		{95, 98},
		{94, 94},
		{90, 92},
		{85, 90},
		{84, 91},
		{75, 77},
		{70, 70},
		{69, 55},
		{55, 44},
		{50, 40},
		{49, 40},
		{0, 40},
	}
	for _, tt := range tests {
		if got := Percentile(tt.score); got != tt.want {
			t.Errorf("Percentile(%d) = %d, want %d", tt.score, got, tt.want)
		}
	}
}
