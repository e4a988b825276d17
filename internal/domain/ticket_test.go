package domain

import (
	"testing"
	"time"

	"github.com/questx-lab/giveaway/internal/domain/draw"
	"github.com/questx-lab/giveaway/internal/entity"
	"github.com/questx-lab/giveaway/internal/model"
	"github.com/questx-lab/giveaway/pkg/errorx"
	"github.com/questx-lab/giveaway/pkg/testutil"
	"github.com/stretchr/testify/require"
)

// seedReferrals builds alice -> bob -> carol, where alice also referred dave.
func seedReferrals(t *testing.T, s *suite) {
	t.Helper()

	testutil.InsertCampaign(s.ctx, "c1", entity.CampaignActive, testutil.DefaultEntryConfig())
	for _, id := range []string{"alice", "bob", "carol", "dave"} {
		testutil.InsertEntrant(s.ctx, "c1", id, testutil.Now.Add(-time.Minute))
		s.record(t, ActionInput{CampaignID: "c1", EntrantID: id, Kind: entity.Signup})
	}

	for _, edge := range [][2]string{{"alice", "bob"}, {"bob", "carol"}, {"alice", "dave"}} {
		outcome := s.record(t, ActionInput{
			CampaignID:        "c1",
			EntrantID:         edge[0],
			Kind:              entity.ReferralCredit,
			ReferredEntrantID: edge[1],
		})
		require.Equal(t, RecordAccepted, outcome.Result)
	}
}

func Test_ticketDomain_GetTickets(t *testing.T) {
	s := newSuite(t)
	seedReferrals(t, s)

	resp, err := s.ticketDomain.GetTickets(s.ctx, &model.GetTicketsRequest{CampaignID: "c1", EntrantID: "alice"})
	require.NoError(t, err)
	require.Equal(t, int64(1+5+5), resp.Tickets)
	require.Equal(t, int64(2), resp.ReferralCount)

	resp, err = s.ticketDomain.GetTickets(s.ctx, &model.GetTicketsRequest{CampaignID: "c1", EntrantID: "carol"})
	require.NoError(t, err)
	require.Equal(t, int64(1), resp.Tickets)
	require.Zero(t, resp.ReferralCount)

	_, err = s.ticketDomain.GetTickets(s.ctx, &model.GetTicketsRequest{CampaignID: "c1", EntrantID: "nobody"})
	require.Equal(t, errorx.New(errorx.NotFound, "Not found entrant"), err)
}

func Test_ticketDomain_GetSnapshot(t *testing.T) {
	s := newSuite(t)
	seedReferrals(t, s)
	testutil.InsertEntrant(s.ctx, "c1", "idle", testutil.Now)

	resp, err := s.ticketDomain.GetSnapshot(s.ctx, &model.GetSnapshotRequest{CampaignID: "c1"})
	require.NoError(t, err)
	require.Equal(t, 4, resp.PoolSize)
	require.Equal(t, int64(4+15), resp.TotalTickets)
	require.Equal(t, []model.TicketEntry{
		{EntrantID: "alice", Tickets: 11},
		{EntrantID: "bob", Tickets: 6},
		{EntrantID: "carol", Tickets: 1},
		{EntrantID: "dave", Tickets: 1},
	}, resp.Entries)
	require.Equal(t, draw.Hash([]draw.Entry{
		{EntrantID: "alice", Weight: 11},
		{EntrantID: "bob", Weight: 6},
		{EntrantID: "carol", Weight: 1},
		{EntrantID: "dave", Weight: 1},
	}), resp.Hash)

	// The snapshot does not change while the ledger does not.
	again, err := s.ticketDomain.GetSnapshot(s.ctx, &model.GetSnapshotRequest{CampaignID: "c1"})
	require.NoError(t, err)
	require.Equal(t, resp.Hash, again.Hash)
	require.Equal(t, resp.Version, again.Version)

	s.record(t, ActionInput{CampaignID: "c1", EntrantID: "carol", Kind: entity.VisitURL})
	changed, err := s.ticketDomain.GetSnapshot(s.ctx, &model.GetSnapshotRequest{CampaignID: "c1"})
	require.NoError(t, err)
	require.NotEqual(t, resp.Hash, changed.Hash)
	require.Greater(t, changed.Version, resp.Version)
}

func Test_ticketDomain_VerifyTickets(t *testing.T) {
	s := newSuite(t)
	seedReferrals(t, s)

	resp, err := s.ticketDomain.VerifyTickets(s.owner(), &model.VerifyTicketsRequest{CampaignID: "c1"})
	require.NoError(t, err)
	require.True(t, resp.Consistent)
	require.Empty(t, resp.Mismatches)

	require.NoError(t, s.ticketRepo.Increase(s.ctx, "c1", "bob", 7))

	resp, err = s.ticketDomain.VerifyTickets(s.owner(), &model.VerifyTicketsRequest{CampaignID: "c1"})
	require.NoError(t, err)
	require.False(t, resp.Consistent)
	require.Equal(t, []model.TicketMismatch{{EntrantID: "bob", Cached: 13, Ledger: 6}}, resp.Mismatches)

	_, err = s.ticketDomain.VerifyTickets(
		testutil.NewMockContextWithUserID(s.ctx, testutil.Owner2),
		&model.VerifyTicketsRequest{CampaignID: "c1"},
	)
	require.Equal(t, errorx.New(errorx.PermissionDenied, "Permission denied"), err)
}

func Test_ticketDomain_GetReferrals(t *testing.T) {
	s := newSuite(t)
	seedReferrals(t, s)

	resp, err := s.ticketDomain.GetReferrals(s.ctx, &model.GetReferralsRequest{CampaignID: "c1", EntrantID: "carol"})
	require.NoError(t, err)
	require.Equal(t, "bob", resp.ReferrerID)
	require.Equal(t, []string{"bob", "alice"}, resp.Ancestors)
	require.Empty(t, resp.Children)

	resp, err = s.ticketDomain.GetReferrals(s.ctx, &model.GetReferralsRequest{CampaignID: "c1", EntrantID: "alice"})
	require.NoError(t, err)
	require.Empty(t, resp.ReferrerID)
	require.Empty(t, resp.Ancestors)
	require.ElementsMatch(t, []string{"bob", "dave"}, resp.Children)
}

func Test_ticketDomain_GetLeaderboard(t *testing.T) {
	s := newSuite(t)
	seedReferrals(t, s)

	resp, err := s.ticketDomain.GetLeaderboard(s.ctx, &model.GetLeaderboardRequest{CampaignID: "c1", Limit: 2})
	require.NoError(t, err)
	require.Equal(t, []model.TicketEntry{
		{EntrantID: "alice", Tickets: 11, Rank: 1},
		{EntrantID: "bob", Tickets: 6, Rank: 2},
	}, resp.Entries)

	_, err = s.ticketDomain.GetLeaderboard(s.ctx, &model.GetLeaderboardRequest{CampaignID: "c1", Limit: 51})
	require.Equal(t, errorx.New(errorx.BadRequest, "Exceed the maximum of limit (50)"), err)
}
