package resumes

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	uploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "resume_uploads_total",
		Help: "Resume upload attempts by result",
	}, []string{"result"})

	orphansRemoved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "resume_orphans_removed_total",
		Help: "Stored resume files removed because no record referenced them",
	})
)
