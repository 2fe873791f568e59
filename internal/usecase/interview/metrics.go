package interview

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	sessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "interview_sessions_started_total",
		Help: "Interview sessions started, including resets.",
	})

	sessionTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "interview_session_transitions_total",
		Help: "Interview sessions leaving the active state, by terminal status.",
	}, []string{"status"})

	startRacesLost = promauto.NewCounter(prometheus.CounterOpts{
		Name: "interview_start_races_lost_total",
		Help: "Start attempts that lost the active session compare-and-set.",
	})

	answersRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "interview_answers_total",
		Help: "Answers written, split into first writes and overwrites.",
	}, []string{"kind"})

	recommendationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "interview_recommendations_total",
		Help: "Recommendations synthesized, by source.",
	}, []string{"source"})

	casesLocked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "interview_cases_locked_total",
		Help: "Cases whose interview gate was closed.",
	})
)
