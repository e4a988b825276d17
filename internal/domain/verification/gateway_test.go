package verification

import (
	"context"
	"testing"
	"time"

	"github.com/questx-lab/giveaway/internal/entity"
	"github.com/questx-lab/giveaway/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newContext() context.Context {
	return xcontext.WithClock(context.Background(), func() time.Time { return now })
}

func TestHMACGateway(t *testing.T) {
	ctx := newContext()
	g := NewHMACGateway("secret", time.Hour, time.Minute)

	proof, err := g.Sign(SignedProof{
		CampaignID: "c1",
		EntrantID:  "e1",
		Kind:       string(entity.FollowInstagram),
		Status:     string(Verified),
		EventID:    "ig-123",
		ProofRef:   "https://instagram.example/e1",
		OccurredAt: now,
	}, now)
	require.NoError(t, err)

	req := Request{CampaignID: "c1", EntrantID: "e1", Kind: entity.FollowInstagram, Proof: proof}
	result, err := g.Verify(ctx, req)
	require.NoError(t, err)
	require.Equal(t, Verified, result.Status)
	require.Equal(t, "ig-123", result.DedupKey)

	// The proof is bound to the entrant.
	other := req
	other.EntrantID = "e2"
	result, err = g.Verify(ctx, other)
	require.NoError(t, err)
	require.Equal(t, NotVerified, result.Status)

	// Tampered signature.
	tampered := req
	tampered.Proof = proof[:len(proof)-1] + "0"
	if tampered.Proof == proof {
		tampered.Proof = proof[:len(proof)-1] + "1"
	}
	result, err = g.Verify(ctx, tampered)
	require.NoError(t, err)
	require.Equal(t, NotVerified, result.Status)

	pending, err := g.Sign(SignedProof{CampaignID: "c1", EntrantID: "e1", Kind: string(entity.FollowInstagram), Status: string(Pending)}, now)
	require.NoError(t, err)
	result, err = g.Verify(ctx, Request{CampaignID: "c1", EntrantID: "e1", Kind: entity.FollowInstagram, Proof: pending})
	require.NoError(t, err)
	require.Equal(t, Pending, result.Status)

	expired, err := g.Sign(SignedProof{CampaignID: "c1", EntrantID: "e1", Kind: string(entity.FollowInstagram), Status: string(Verified)}, now.Add(-2*time.Hour))
	require.NoError(t, err)
	result, err = g.Verify(ctx, Request{CampaignID: "c1", EntrantID: "e1", Kind: entity.FollowInstagram, Proof: expired})
	require.NoError(t, err)
	require.Equal(t, NotVerified, result.Status)

	// Issued slightly ahead of the local clock, within the allowed skew.
	ahead, err := g.Sign(SignedProof{CampaignID: "c1", EntrantID: "e1", Kind: string(entity.FollowInstagram), Status: string(Verified)}, now.Add(30*time.Second))
	require.NoError(t, err)
	result, err = g.Verify(ctx, Request{CampaignID: "c1", EntrantID: "e1", Kind: entity.FollowInstagram, Proof: ahead})
	require.NoError(t, err)
	require.Equal(t, Verified, result.Status)
	require.True(t, now.Add(30*time.Second).Equal(result.OccurredAt))

	// A proof signed with another secret is rejected.
	forged, err := NewHMACGateway("other", time.Hour, time.Minute).Sign(SignedProof{CampaignID: "c1", EntrantID: "e1", Kind: string(entity.FollowInstagram), Status: string(Verified)}, now)
	require.NoError(t, err)
	result, err = g.Verify(ctx, Request{CampaignID: "c1", EntrantID: "e1", Kind: entity.FollowInstagram, Proof: forged})
	require.NoError(t, err)
	require.Equal(t, NotVerified, result.Status)
}

func TestVisitTokenGateway(t *testing.T) {
	ctx := newContext()
	g := NewVisitTokenGateway("secret", time.Hour, time.Minute)

	token, err := g.Issue("c1", "e1", now.Add(-10*time.Minute))
	require.NoError(t, err)
	req := Request{CampaignID: "c1", EntrantID: "e1", Kind: entity.VisitURL, Proof: token}

	result, err := g.Verify(ctx, req)
	require.NoError(t, err)
	require.Equal(t, Verified, result.Status)
	require.True(t, now.Add(-10*time.Minute).Equal(result.OccurredAt))

	expired, err := g.Issue("c1", "e1", now.Add(-2*time.Hour))
	require.NoError(t, err)
	result, err = g.Verify(ctx, Request{CampaignID: "c1", EntrantID: "e1", Kind: entity.VisitURL, Proof: expired})
	require.NoError(t, err)
	require.Equal(t, NotVerified, result.Status)

	result, err = g.Verify(ctx, Request{CampaignID: "c1", EntrantID: "e2", Kind: entity.VisitURL, Proof: token})
	require.NoError(t, err)
	require.Equal(t, NotVerified, result.Status)

	result, err = g.Verify(ctx, Request{CampaignID: "c2", EntrantID: "e1", Kind: entity.VisitURL, Proof: token})
	require.NoError(t, err)
	require.Equal(t, NotVerified, result.Status)

	result, err = g.Verify(ctx, Request{CampaignID: "c1", EntrantID: "e1", Kind: entity.ShareTwitter, Proof: token})
	require.NoError(t, err)
	require.Equal(t, NotVerified, result.Status)
}

func TestMux(t *testing.T) {
	ctx := newContext()
	mux := NewMux(NewStaticGateway(NotVerified)).
		Handle(NewStaticGateway(Pending), entity.ShareTwitter)

	result, err := mux.Verify(ctx, Request{Kind: entity.ShareTwitter})
	require.NoError(t, err)
	require.Equal(t, Pending, result.Status)

	result, err = mux.Verify(ctx, Request{Kind: entity.ShareFacebook})
	require.NoError(t, err)
	require.Equal(t, NotVerified, result.Status)
}
