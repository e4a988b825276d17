// Package verification decides whether an entrant really performed an
// action. The ledger records an action only when a gateway says Verified.
package verification

import (
	"context"
	"time"

	"github.com/questx-lab/giveaway/internal/entity"
	"github.com/questx-lab/giveaway/pkg/enum"
)

type Status string

var (
	Verified    = enum.New(Status("verified"))
	NotVerified = enum.New(Status("not_verified"))
	Pending     = enum.New(Status("pending"))
)

type Request struct {
	CampaignID string
	EntrantID  string
	Kind       entity.ActionKind
	Proof      string
}

type Result struct {
	Status Status

	// DedupKey identifies the upstream event, ProofRef points at the
	// evidence kept by the verifier.
	DedupKey   string
	ProofRef   string
	OccurredAt time.Time
}

type Gateway interface {
	Verify(ctx context.Context, req Request) (Result, error)
}

// Mux dispatches a request to the gateway registered for its action kind.
type Mux struct {
	gateways map[entity.ActionKind]Gateway
	fallback Gateway
}

func NewMux(fallback Gateway) *Mux {
	return &Mux{gateways: make(map[entity.ActionKind]Gateway), fallback: fallback}
}

func (m *Mux) Handle(gateway Gateway, kinds ...entity.ActionKind) *Mux {
	for _, kind := range kinds {
		m.gateways[kind] = gateway
	}

	return m
}

func (m *Mux) Verify(ctx context.Context, req Request) (Result, error) {
	if gateway, ok := m.gateways[req.Kind]; ok {
		return gateway.Verify(ctx, req)
	}

	if m.fallback != nil {
		return m.fallback.Verify(ctx, req)
	}

	return Result{Status: NotVerified}, nil
}
