package main

import (
	"github.com/questx-lab/giveaway/internal/domain/referral"
	"github.com/questx-lab/giveaway/internal/domain/statistic"
	"github.com/questx-lab/giveaway/internal/domain/ticket"
	"github.com/questx-lab/giveaway/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

// startReplay rebuilds every derived table of a campaign from the entry and
// revocation log, then drops the leaderboard so that it is reloaded.
func (s *srv) startReplay(cctx *cli.Context) error {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
	s.migrateDB()
	s.loadRedisClient()
	s.loadRepos()

	campaignID := cctx.String("campaign")
	if _, err := s.campaignRepo.GetByID(s.ctx, campaignID); err != nil {
		return err
	}

	graph := referral.NewGraph(s.referralRepo, s.entrantRepo, s.entryActionRepo)
	if err := graph.Rebuild(s.ctx, campaignID); err != nil {
		return err
	}

	accountant := ticket.NewAccountant(s.entryActionRepo, s.ticketRepo)
	if err := accountant.Rebuild(s.ctx, campaignID); err != nil {
		return err
	}

	if err := statistic.New(s.ticketRepo, s.redisClient).Reset(s.ctx, campaignID); err != nil {
		return err
	}

	mismatches, err := accountant.Verify(s.ctx, campaignID)
	if err != nil {
		return err
	}

	xcontext.Logger(s.ctx).Infof("Replayed campaign %s, %d mismatches left", campaignID, len(mismatches))
	return nil
}
