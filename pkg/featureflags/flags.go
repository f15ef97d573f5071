// ABOUTME: Feature flag management for optional pipeline stages
// ABOUTME: Flags come from config with FEATURE_* environment overrides

package featureflags

import (
	"context"
	"os"
	"strings"
	"sync"
)

// FeatureFlag represents a single feature flag
type FeatureFlag string

// Defined feature flags
const (
	// ArxivExtraction enables the ArXiv full-text runner when serving
	ArxivExtraction FeatureFlag = "arxiv_extraction"

	// DeepSummaries enables deep-summary generation in the enrichment loop
	DeepSummaries FeatureFlag = "deep_summaries"

	// MetricsEnabled enables the metrics endpoint
	MetricsEnabled FeatureFlag = "metrics_enabled"

	// RateLimitEnabled enables rate limiting on the API
	RateLimitEnabled FeatureFlag = "rate_limit_enabled"
)

// All lists every known flag
var All = []FeatureFlag{ArxivExtraction, DeepSummaries, MetricsEnabled, RateLimitEnabled}

// defaults apply when neither config nor env mention a flag
var defaults = map[FeatureFlag]bool{
	ArxivExtraction:  true,
	DeepSummaries:    true,
	MetricsEnabled:   true,
	RateLimitEnabled: true,
}

// Manager defines the interface for feature flag management
type Manager interface {
	// IsEnabled checks if a feature flag is enabled
	IsEnabled(ctx context.Context, flag FeatureFlag) bool

	// SetEnabled sets a feature flag's state
	SetEnabled(flag FeatureFlag, enabled bool)

	// GetAllFlags returns the state of all flags
	GetAllFlags() map[FeatureFlag]bool
}

// EnvManager implements Manager using configured values and environment variables
type EnvManager struct {
	mu        sync.RWMutex
	overrides map[FeatureFlag]bool
	base      map[FeatureFlag]bool
	prefix    string
}

// NewEnvManager creates a manager seeded from config values (may be nil)
func NewEnvManager(prefix string, configured map[string]bool) *EnvManager {
	if prefix == "" {
		prefix = "FEATURE_"
	}
	base := make(map[FeatureFlag]bool, len(defaults))
	for k, v := range defaults {
		base[k] = v
	}
	for k, v := range configured {
		base[FeatureFlag(k)] = v
	}
	return &EnvManager{
		overrides: make(map[FeatureFlag]bool),
		base:      base,
		prefix:    prefix,
	}
}

// IsEnabled checks explicit overrides, then the environment, then configured values
func (m *EnvManager) IsEnabled(ctx context.Context, flag FeatureFlag) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if enabled, ok := m.overrides[flag]; ok {
		return enabled
	}

	envKey := m.prefix + strings.ToUpper(string(flag))
	if value := os.Getenv(envKey); value != "" {
		v := strings.ToLower(value)
		return v == "true" || v == "1" || v == "enabled"
	}

	return m.base[flag]
}

// SetEnabled sets a feature flag's state
func (m *EnvManager) SetEnabled(flag FeatureFlag, enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overrides[flag] = enabled
}

// GetAllFlags returns the state of all defined flags
func (m *EnvManager) GetAllFlags() map[FeatureFlag]bool {
	ctx := context.Background()
	flags := make(map[FeatureFlag]bool, len(All))
	for _, f := range All {
		flags[f] = m.IsEnabled(ctx, f)
	}
	return flags
}

// StaticManager implements Manager with static configuration
type StaticManager struct {
	flags map[FeatureFlag]bool
	mu    sync.RWMutex
}

// NewStaticManager creates a manager with predefined flag states
func NewStaticManager(flags map[FeatureFlag]bool) *StaticManager {
	if flags == nil {
		flags = make(map[FeatureFlag]bool)
	}
	return &StaticManager{
		flags: flags,
	}
}

// IsEnabled checks if a feature flag is enabled
func (m *StaticManager) IsEnabled(ctx context.Context, flag FeatureFlag) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.flags[flag]
}

// SetEnabled sets a feature flag's state
func (m *StaticManager) SetEnabled(flag FeatureFlag, enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flags[flag] = enabled
}

// GetAllFlags returns all flag states
func (m *StaticManager) GetAllFlags() map[FeatureFlag]bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[FeatureFlag]bool)
	for k, v := range m.flags {
		result[k] = v
	}
	return result
}
