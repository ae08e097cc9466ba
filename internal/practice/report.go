package practice

import (
	"math"
	"sort"

	"github.com/interview-prep/backend/internal/models"
)

const recentAttempts = 10

// BuildReport summarizes every result of one user. It is recomputed from the
// full result list on each call.
func BuildReport(results []models.TestResult) models.UserReport {
	report := models.UserReport{
		Attempts:   len(results),
		Categories: []models.CategoryStat{},
		Recent:     []models.RecentAttempt{},
	}
	if len(results) == 0 {
		return report
	}

	type group struct {
		category string
		sum      int
		count    int
	}
	var order []*group
	groups := make(map[string]*group)
	total := 0

	for _, r := range results {
		total += r.Score
		g, ok := groups[r.Category]
		if !ok {
			g = &group{category: r.Category}
			groups[r.Category] = g
			order = append(order, g)
		}
		g.sum += r.Score
		g.count++
	}

	report.AvgScore = roundMean(total, len(results))

	sort.SliceStable(order, func(i, j int) bool {
		return float64(order[i].sum)/float64(order[i].count) > float64(order[j].sum)/float64(order[j].count)
	})
	for _, g := range order {
		report.Categories = append(report.Categories, models.CategoryStat{
			Category: g.category,
			AvgScore: roundMean(g.sum, g.count),
			Count:    g.count,
		})
	}

	sorted := make([]models.TestResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SubmittedAt.After(sorted[j].SubmittedAt)
	})
	if len(sorted) > recentAttempts {
		sorted = sorted[:recentAttempts]
	}
	for _, r := range sorted {
		report.Recent = append(report.Recent, models.RecentAttempt{
			Category:       r.Category,
			Score:          r.Score,
			Total:          r.Total,
			CorrectAnswers: r.CorrectAnswers,
			WrongAnswers:   r.WrongAnswers,
			SubmittedAt:    r.SubmittedAt,
			Status:         r.Status,
		})
	}

	report.Percentile = Percentile(report.AvgScore)
	return report
}

func roundMean(sum, count int) int {
	if count == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(count)))
}

// Percentile estimates a percentile rank from a single score. The bands are
// not continuous at their edges and must stay that way for client
// compatibility.
func Percentile(score int) int {
	switch {
	case score >= 95:
		return 98
	case score >= 85:
		return 90 + (score-85)/2
	case score >= 70:
		return 70 + (score-70)*3/2
	case score < 50:
		return 40
	default:
		return score * 4 / 5
	}
}
