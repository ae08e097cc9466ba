package mocks

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var submissionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "mock_submissions_total",
	Help: "Submitted mock interviews by type",
}, []string{"type"})
