package domain

import (
	"context"
	"testing"
	"time"

	"github.com/questx-lab/giveaway/internal/common"
	"github.com/questx-lab/giveaway/internal/domain/referral"
	"github.com/questx-lab/giveaway/internal/domain/statistic"
	"github.com/questx-lab/giveaway/internal/domain/ticket"
	"github.com/questx-lab/giveaway/internal/domain/verification"
	"github.com/questx-lab/giveaway/internal/repository"
	"github.com/questx-lab/giveaway/pkg/testutil"
	"github.com/questx-lab/giveaway/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

type suite struct {
	ctx   context.Context
	clock *testutil.Clock

	campaignRepo    repository.CampaignRepository
	entrantRepo     repository.EntrantRepository
	entryActionRepo repository.EntryActionRepository
	ticketRepo      repository.TicketRepository
	referralRepo    repository.ReferralRepository
	winnerRepo      repository.WinnerRepository
	outboxRepo      repository.OutboxRepository

	gateway     *verification.StaticGateway
	redisClient *testutil.MemoryRedisClient
	accountant  ticket.Accountant

	campaignDomain *campaignDomain
	entryDomain    *entryDomain
	ticketDomain   *ticketDomain
	winnerDomain   *winnerDomain
}

func newSuite(t *testing.T) *suite {
	t.Helper()

	ctx, clock := testutil.NewMockContextWithClock()
	s := &suite{
		ctx:             ctx,
		clock:           clock,
		campaignRepo:    repository.NewCampaignRepository(),
		entrantRepo:     repository.NewEntrantRepository(),
		entryActionRepo: repository.NewEntryActionRepository(),
		ticketRepo:      repository.NewTicketRepository(),
		referralRepo:    repository.NewReferralRepository(),
		winnerRepo:      repository.NewWinnerRepository(),
		outboxRepo:      repository.NewOutboxRepository(),
		gateway:         verification.NewStaticGateway(verification.Verified),
		redisClient:     testutil.NewMemoryRedisClient(),
	}

	ownerVerifier := common.NewCampaignOwnerVerifier(s.campaignRepo)
	graph := referral.NewGraph(s.referralRepo, s.entrantRepo, s.entryActionRepo)
	s.accountant = ticket.NewAccountant(s.entryActionRepo, s.ticketRepo)
	leaderboard := statistic.New(s.ticketRepo, s.redisClient)

	s.campaignDomain = NewCampaignDomain(s.campaignRepo, ownerVerifier)
	s.entryDomain = NewEntryDomain(s.campaignRepo, s.entrantRepo, s.entryActionRepo,
		s.ticketRepo, s.outboxRepo, graph, s.gateway, ownerVerifier)
	s.ticketDomain = NewTicketDomain(s.campaignRepo, s.entrantRepo, s.accountant, graph, leaderboard, ownerVerifier)
	s.winnerDomain = NewWinnerDomain(s.campaignRepo, s.winnerRepo, s.outboxRepo, s.accountant, ownerVerifier)

	return s
}

func (s *suite) owner() context.Context {
	return testutil.NewMockContextWithUserID(s.ctx, testutil.Owner1)
}

func (s *suite) withGrace(grace time.Duration) {
	cfg := xcontext.Configs(s.ctx)
	cfg.Campaign.ReferralGraceWindow = grace
	s.ctx = xcontext.WithConfigs(s.ctx, cfg)
}

func (s *suite) tickets(t *testing.T, campaignID, entrantID string) int64 {
	t.Helper()
	w, err := s.accountant.WeightOf(s.ctx, campaignID, entrantID)
	require.NoError(t, err)
	return w
}

func (s *suite) record(t *testing.T, in ActionInput) *RecordOutcome {
	t.Helper()
	outcome, err := s.entryDomain.Record(s.ctx, in)
	require.NoError(t, err)
	return outcome
}
