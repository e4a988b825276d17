package verification

import (
	"context"
	"time"

	"github.com/questx-lab/giveaway/internal/entity"
	"github.com/questx-lab/giveaway/pkg/crypto"
	"github.com/questx-lab/giveaway/pkg/jwt"
	"github.com/questx-lab/giveaway/pkg/xcontext"
)

const visitIssuer = "giveaway-visit"

type visitClaims struct {
	CampaignID string `json:"cid"`
}

// VisitTokenGateway verifies the tokens appended to the tracked link of a
// visit url action. A token is only valid for the entrant and campaign it
// was issued for and expires after ttl.
type VisitTokenGateway struct {
	engine   *jwt.Engine[visitClaims]
	verifier *jwt.Verifier[visitClaims]
}

func NewVisitTokenGateway(secret string, ttl, skew time.Duration) *VisitTokenGateway {
	return &VisitTokenGateway{
		engine:   jwt.NewEngine[visitClaims](visitIssuer, secret, ttl),
		verifier: jwt.NewVerifier[visitClaims](secret).WithLeeway(skew),
	}
}

func (g *VisitTokenGateway) Issue(campaignID, entrantID string, issuedAt time.Time) (string, error) {
	return g.engine.Generate(entrantID, visitClaims{CampaignID: campaignID}, issuedAt)
}

func (g *VisitTokenGateway) Verify(ctx context.Context, req Request) (Result, error) {
	if req.Kind != entity.VisitURL {
		return Result{Status: NotVerified}, nil
	}

	claims, err := g.verifier.Verify(req.Proof, xcontext.Now(ctx))
	if err != nil {
		xcontext.Logger(ctx).Debugf("Invalid visit token: %v", err)
		return Result{Status: NotVerified}, nil
	}

	if claims.Issuer != visitIssuer || claims.Subject != req.EntrantID || claims.Object.CampaignID != req.CampaignID {
		return Result{Status: NotVerified}, nil
	}

	return Result{
		Status:     Verified,
		DedupKey:   "visit:" + crypto.SHA256([]byte(req.Proof)),
		ProofRef:   "visit-token",
		OccurredAt: claims.IssuedAt.Time,
	}, nil
}
