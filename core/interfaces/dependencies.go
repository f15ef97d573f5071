// ABOUTME: Dependencies container provides dependency injection for core services
// ABOUTME: Bundles the ambient capabilities shared by the poller, extractors and processor

package interfaces

// Dependencies holds all external dependencies required by the core business logic
type Dependencies struct {
	// Cache backs the LLM result cache
	Cache Cache

	// HTTPClient provides HTTP request functionality
	HTTPClient HTTPClient

	// Logger provides structured logging
	Logger Logger

	// Metrics records pipeline counters
	Metrics Metrics
}

// WithDefaults fills missing Logger and Metrics with no-op implementations
func (d Dependencies) WithDefaults() Dependencies {
	if d.Logger == nil {
		d.Logger = nopLogger{}
	}
	if d.Metrics == nil {
		d.Metrics = nopMetrics{}
	}
	return d
}

type nopLogger struct{}

func (nopLogger) Debug(string, map[string]interface{}) {}
func (nopLogger) Info(string, map[string]interface{})  {}
func (nopLogger) Warn(string, map[string]interface{})  {}
func (nopLogger) Error(string, map[string]interface{}) {}

type nopMetrics struct{}

func (nopMetrics) FeedPolled(string)           {}
func (nopMetrics) ArticlesIngested(int)        {}
func (nopMetrics) PollDuration(float64)        {}
func (nopMetrics) LLMCall(string, bool, error) {}
func (nopMetrics) ArxivExtracted(string, bool) {}
