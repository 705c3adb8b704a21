// Package health aggregates component availability checks.
package health

import "context"

// StorePinger checks vector-store availability.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure; search still answers from the
	// surviving sources.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	store     StorePinger
	textEmb   EmbeddingChecker
	visionEmb EmbeddingChecker
}

// New creates a Service. Either embedding checker can be nil.
func New(store StorePinger, textEmb, visionEmb EmbeddingChecker) *Service {
	return &Service{store: store, textEmb: textEmb, visionEmb: visionEmb}
}

// Check runs health checks against the store and both encoders.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	checks["store"] = check(s.store.Ping(ctx))
	if s.textEmb != nil {
		checks["text_encoder"] = check(s.textEmb.HealthCheck(ctx))
	}
	if s.visionEmb != nil {
		checks["vision_encoder"] = check(s.visionEmb.HealthCheck(ctx))
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}

func check(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
