package practice

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/interview-prep/backend/internal/models"
)

var (
	submissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "practice_submissions_total",
			Help: "Total number of graded practice submissions",
		},
		[]string{"category"},
	)

	scoreHistogram = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "practice_score",
			Help:    "Distribution of practice submission scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)
)

// categoryLabel folds unknown categories into "other".
func categoryLabel(category string) string {
	if models.ValidCategories[category] {
		return category
	}
	return "other"
}
