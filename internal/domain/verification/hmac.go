package verification

import (
	"context"
	"time"

	"github.com/questx-lab/giveaway/pkg/enum"
	"github.com/questx-lab/giveaway/pkg/jwt"
	"github.com/questx-lab/giveaway/pkg/xcontext"
)

const proofIssuer = "giveaway-verifier"

// SignedProof is what an upstream verifier posts back once it has checked a
// social action.
type SignedProof struct {
	CampaignID string    `json:"campaign_id"`
	EntrantID  string    `json:"entrant_id"`
	Kind       string    `json:"kind"`
	Status     string    `json:"status"`
	EventID    string    `json:"event_id"`
	ProofRef   string    `json:"proof_ref"`
	OccurredAt time.Time `json:"occurred_at"`
}

// HMACGateway accepts proofs signed as HS256 tokens with the shared
// verification secret.
type HMACGateway struct {
	engine   *jwt.Engine[SignedProof]
	verifier *jwt.Verifier[SignedProof]
}

func NewHMACGateway(secret string, ttl, skew time.Duration) *HMACGateway {
	return &HMACGateway{
		engine:   jwt.NewEngine[SignedProof](proofIssuer, secret, ttl),
		verifier: jwt.NewVerifier[SignedProof](secret).WithLeeway(skew),
	}
}

// Sign is used by upstream verifiers and tests to build a proof.
func (g *HMACGateway) Sign(proof SignedProof, issuedAt time.Time) (string, error) {
	return g.engine.Generate(proof.EntrantID, proof, issuedAt)
}

func (g *HMACGateway) Verify(ctx context.Context, req Request) (Result, error) {
	claims, err := g.verifier.Verify(req.Proof, xcontext.Now(ctx))
	if err != nil {
		xcontext.Logger(ctx).Debugf("Invalid signed proof: %v", err)
		return Result{Status: NotVerified}, nil
	}

	proof := claims.Object
	if claims.Issuer != proofIssuer || proof.CampaignID != req.CampaignID || proof.EntrantID != req.EntrantID || proof.Kind != string(req.Kind) {
		return Result{Status: NotVerified}, nil
	}

	status, err := enum.ToEnum[Status](proof.Status)
	if err != nil {
		return Result{Status: NotVerified}, nil
	}

	occurredAt := proof.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = claims.IssuedAt.Time
	}

	return Result{
		Status:     status,
		DedupKey:   proof.EventID,
		ProofRef:   proof.ProofRef,
		OccurredAt: occurredAt,
	}, nil
}
