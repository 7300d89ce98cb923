package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	kindFileShared  = "file_shared"
	kindFileRemoved = "file_removed"
	kindAction      = "interactive_action"

	outcomeRejected  = "rejected"
	outcomeSkipped   = "skipped"
	outcomeProcessed = "processed"
	outcomeFailed    = "failed"
)

var (
	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "photomap_events_total",
		Help: "Inbound Slack events by kind and outcome.",
	}, []string{"kind", "outcome"})

	stepFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "photomap_step_failures_total",
		Help: "Fatal failures by processing step.",
	}, []string{"kind", "step"})

	downloadBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "photomap_download_bytes_total",
		Help: "Bytes downloaded from private file URLs.",
	})
)
