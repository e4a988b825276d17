package verification

import (
	"context"

	"github.com/questx-lab/giveaway/internal/entity"
	"github.com/questx-lab/giveaway/pkg/xcontext"
)

// StaticGateway returns a fixed status per action kind. It serves manual
// moderation, where a moderator already checked the action, and tests.
type StaticGateway struct {
	statuses map[entity.ActionKind]Status
	fallback Status
}

func NewStaticGateway(fallback Status) *StaticGateway {
	return &StaticGateway{statuses: make(map[entity.ActionKind]Status), fallback: fallback}
}

func (g *StaticGateway) Set(kind entity.ActionKind, status Status) *StaticGateway {
	g.statuses[kind] = status
	return g
}

func (g *StaticGateway) Verify(ctx context.Context, req Request) (Result, error) {
	status, ok := g.statuses[req.Kind]
	if !ok {
		status = g.fallback
	}

	return Result{
		Status:     status,
		DedupKey:   req.Proof,
		ProofRef:   req.Proof,
		OccurredAt: xcontext.Now(ctx),
	}, nil
}
