package health

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates at least one failing component.
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

// Component names used as Report keys.
const (
	ComponentStore     = "store"
	ComponentEmbedding = "embedding"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
	// Errors holds the failure message per failing component.
	Errors map[string]string
}

// String renders one "component: result" line per check, sorted by name.
func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "status: %s\n", r.Status)
	for _, name := range slices.Sorted(maps.Keys(r.Checks)) {
		fmt.Fprintf(&b, "  %s: %s", name, r.Checks[name])
		if msg, ok := r.Errors[name]; ok {
			fmt.Fprintf(&b, " (%s)", msg)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Service coordinates health checks.
type Service struct {
	store     StorePinger
	embedding EmbeddingChecker
}

// New creates a Service. embedding can be nil.
func New(store StorePinger, embedding EmbeddingChecker) *Service {
	return &Service{store: store, embedding: embedding}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	r := Report{
		Status: Healthy,
		Checks: make(map[string]CheckResult),
		Errors: make(map[string]string),
	}

	r.record(ComponentStore, s.store.Ping(ctx))
	if s.embedding != nil {
		r.record(ComponentEmbedding, s.embedding.HealthCheck(ctx))
	}
	return r
}

func (r *Report) record(name string, err error) {
	if err == nil {
		r.Checks[name] = CheckOK
		return
	}
	r.Checks[name] = CheckError
	r.Errors[name] = err.Error()
	r.Status = Degraded
}
