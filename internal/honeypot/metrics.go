package honeypot

import "github.com/prometheus/client_golang/prometheus"

var detectionTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "honeypot",
		Subsystem: "pipeline",
		Name:      "scam_detection_total",
		Help:      "Scam classifications by path and verdict",
	},
	[]string{"path", "verdict"}, // path: llm, fail_closed; verdict: scam, clean
)

var personaFallbackTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Namespace: "honeypot",
		Subsystem: "pipeline",
		Name:      "persona_fallback_total",
		Help:      "Persona replies served from the canned fallback pool",
	},
)

var extractionTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "honeypot",
		Subsystem: "pipeline",
		Name:      "intel_extraction_total",
		Help:      "Intelligence extractions by path",
	},
	[]string{"path"}, // llm, fallback, empty
)

var reportTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "honeypot",
		Subsystem: "pipeline",
		Name:      "final_report_total",
		Help:      "Final report deliveries by status",
	},
	[]string{"status"}, // success, failure
)

var llmLatency = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "honeypot",
		Subsystem: "pipeline",
		Name:      "llm_latency_seconds",
		Help:      "Latency of LLM completions",
		Buckets:   []float64{0.25, 0.5, 1, 2, 3, 4, 5, 6, 8, 10, 15, 20, 30},
	},
	[]string{"component", "status"}, // component: detector, persona, extractor; status: ok, error, empty
)

func init() {
	prometheus.MustRegister(detectionTotal)
	prometheus.MustRegister(personaFallbackTotal)
	prometheus.MustRegister(extractionTotal)
	prometheus.MustRegister(reportTotal)
	prometheus.MustRegister(llmLatency)
}
