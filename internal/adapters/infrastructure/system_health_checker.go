package infrastructure

import (
	"context"
	"sort"

	"cardbinder.app/internal/ports"
)

// SystemHealthChecker aggregates all health checks
type SystemHealthChecker struct {
	checkers       map[string]ports.HealthChecker
	configProvider ports.ConfigProvider
}

// SystemHealthCheckerConfig holds the configuration for creating a system health checker
type SystemHealthCheckerConfig struct {
	Checkers       map[string]ports.HealthChecker
	ConfigProvider ports.ConfigProvider
}

// NewSystemHealthChecker creates a new system health checker
func NewSystemHealthChecker(config SystemHealthCheckerConfig) *SystemHealthChecker {
	return &SystemHealthChecker{
		checkers:       config.Checkers,
		configProvider: config.ConfigProvider,
	}
}

// CheckAll performs health checks on all components
func (s *SystemHealthChecker) CheckAll(ctx context.Context) map[string]ports.HealthStatus {
	results := make(map[string]ports.HealthStatus, len(s.checkers)+1)

	names := make([]string, 0, len(s.checkers))
	for name := range s.checkers {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if checker := s.checkers[name]; checker != nil {
			results[name] = checker.Check(ctx)
		}
	}

	if s.configProvider != nil {
		appConfig := s.configProvider.GetAppConfig()
		cacheConfig := s.configProvider.GetCacheConfig()
		results["config"] = ports.HealthStatus{
			Component: "config",
			Status:    "healthy",
			Details: map[string]interface{}{
				"appBaseURL": appConfig.BaseURL,
				"cacheStore": cacheConfig.Store,
			},
		}
	}

	return results
}

// Healthy reports whether every component in results is healthy
func Healthy(results map[string]ports.HealthStatus) bool {
	for _, status := range results {
		if status.Status != "healthy" {
			return false
		}
	}
	return true
}
