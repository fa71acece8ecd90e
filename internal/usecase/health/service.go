// Package health aggregates liveness checks for the store, the embedding
// provider, and each book index.
package health

import "context"

// Status is the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure; queries may still succeed with
	// reduced coverage.
	Degraded Status = "degraded"
)

// CheckResult is one component's health check outcome.
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
	store       StorePinger
	embedding   EmbeddingChecker
	collections CollectionChecker
}

// New creates a Service. embedding and collections can be nil.
func New(store StorePinger, embedding EmbeddingChecker, collections CollectionChecker) *Service {
	return &Service{store: store, embedding: embedding, collections: collections}
}

// Check runs health checks against all components. Collection checks are
// skipped entirely when the store itself is down, since they would all fail
// for the same reason.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	storeUp := true
	if err := s.store.Ping(ctx); err != nil {
		checks["store"] = CheckError
		storeUp = false
	} else {
		checks["store"] = CheckOK
	}

	if s.embedding != nil {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			checks["embedding"] = CheckError
		} else {
			checks["embedding"] = CheckOK
		}
	}

	if s.collections != nil && storeUp {
		live, err := s.collections.Available(ctx)
		alive := make(map[string]struct{}, len(live))
		for _, coll := range live {
			alive[coll] = struct{}{}
		}
		for _, coll := range s.collections.Collections() {
			if err != nil {
				checks["index:"+coll] = CheckError
				continue
			}
			if _, ok := alive[coll]; ok {
				checks["index:"+coll] = CheckOK
			} else {
				checks["index:"+coll] = CheckError
			}
		}
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
