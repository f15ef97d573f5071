// ABOUTME: Prometheus implementation of the pipeline metrics contract
// ABOUTME: Registers counters and histograms on a caller-supplied registry

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "aiml_digests"

// Prometheus records pipeline metrics
type Prometheus struct {
	feedPolls    *prometheus.CounterVec
	articles     prometheus.Counter
	pollDuration prometheus.Histogram
	llmCalls     *prometheus.CounterVec
	arxiv        *prometheus.CounterVec
}

// NewPrometheus registers the metrics on reg
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	factory := promauto.With(reg)
	return &Prometheus{
		feedPolls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_polls_total",
			Help:      "Feed polls by outcome",
		}, []string{"outcome"}),
		articles: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "articles_ingested_total",
			Help:      "New articles inserted by the poller",
		}),
		pollDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "feed_poll_duration_seconds",
			Help:      "Duration of a single feed poll",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		}),
		llmCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "LLM operations by operation, cache hit and status",
		}, []string{"operation", "cached", "status"}),
		arxiv: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "arxiv_extractions_total",
			Help:      "ArXiv extractions by source and status",
		}, []string{"source", "status"}),
	}
}

func (p *Prometheus) FeedPolled(outcome string) {
	p.feedPolls.WithLabelValues(outcome).Inc()
}

func (p *Prometheus) ArticlesIngested(n int) {
	if n > 0 {
		p.articles.Add(float64(n))
	}
}

func (p *Prometheus) PollDuration(seconds float64) {
	p.pollDuration.Observe(seconds)
}

func (p *Prometheus) LLMCall(operation string, cached bool, err error) {
	cachedLabel := "false"
	if cached {
		cachedLabel = "true"
	}
	p.llmCalls.WithLabelValues(operation, cachedLabel, statusLabel(err == nil)).Inc()
}

func (p *Prometheus) ArxivExtracted(source string, ok bool) {
	p.arxiv.WithLabelValues(source, statusLabel(ok)).Inc()
}

func statusLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "error"
}
