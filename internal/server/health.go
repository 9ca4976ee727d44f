package server

import (
	"context"

	"github.com/vanshika/referralnet/internal/graph"
)

// HealthService defines behaviour for readiness probes.
type HealthService interface {
	Probe(ctx context.Context) error
}

// HealthFunc adapts a function to HealthService.
type HealthFunc func(ctx context.Context) error

func (f HealthFunc) Probe(ctx context.Context) error { return f(ctx) }

// GraphHealthService reports the referral graph as unhealthy when Neo4j is
// unreachable.
type GraphHealthService struct {
	Client graph.Client
}

// Probe implements the HealthService interface.
func (s GraphHealthService) Probe(ctx context.Context) error {
	if s.Client == nil {
		return nil
	}
	return s.Client.VerifyConnectivity(ctx)
}
