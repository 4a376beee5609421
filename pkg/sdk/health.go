package casematch

import (
	"context"

	healthuc "github.com/kailas-cloud/casematch/internal/usecase/health"
)

// HealthStatus is the outcome of a health probe. The SDK checks the database and,
// with WithRecords, the case database; embedding providers belong to the caller.
type HealthStatus struct {
	Status string            // "ok", "degraded" or "error"
	Checks map[string]string // component → "ok" / "error"
}

// Healthy reports whether every checked component answered.
func (h HealthStatus) Healthy() bool { return h.Status == string(healthuc.Healthy) }

// Health probes the database and the case database, if configured.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.health.Check(ctx)
	out := HealthStatus{
		Status: string(report.Status),
		Checks: make(map[string]string, len(report.Checks)),
	}
	for name, res := range report.Checks {
		out.Checks[name] = string(res)
	}
	return out
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}
