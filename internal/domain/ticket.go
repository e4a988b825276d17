package domain

import (
	"context"
	"errors"

	"github.com/questx-lab/giveaway/internal/common"
	"github.com/questx-lab/giveaway/internal/domain/referral"
	"github.com/questx-lab/giveaway/internal/domain/statistic"
	"github.com/questx-lab/giveaway/internal/domain/ticket"
	"github.com/questx-lab/giveaway/internal/entity"
	"github.com/questx-lab/giveaway/internal/model"
	"github.com/questx-lab/giveaway/internal/repository"
	"github.com/questx-lab/giveaway/pkg/errorx"
	"github.com/questx-lab/giveaway/pkg/xcontext"
	"gorm.io/gorm"
)

type TicketDomain interface {
	GetTickets(context.Context, *model.GetTicketsRequest) (*model.GetTicketsResponse, error)
	GetSnapshot(context.Context, *model.GetSnapshotRequest) (*model.GetSnapshotResponse, error)
	VerifyTickets(context.Context, *model.VerifyTicketsRequest) (*model.VerifyTicketsResponse, error)
	GetReferrals(context.Context, *model.GetReferralsRequest) (*model.GetReferralsResponse, error)
	GetLeaderboard(context.Context, *model.GetLeaderboardRequest) (*model.GetLeaderboardResponse, error)
}

type ticketDomain struct {
	campaignRepo  repository.CampaignRepository
	entrantRepo   repository.EntrantRepository
	accountant    ticket.Accountant
	referralGraph referral.Graph
	leaderboard   statistic.Leaderboard
	ownerVerifier *common.CampaignOwnerVerifier
}

func NewTicketDomain(
	campaignRepo repository.CampaignRepository,
	entrantRepo repository.EntrantRepository,
	accountant ticket.Accountant,
	referralGraph referral.Graph,
	leaderboard statistic.Leaderboard,
	ownerVerifier *common.CampaignOwnerVerifier,
) *ticketDomain {
	return &ticketDomain{
		campaignRepo:  campaignRepo,
		entrantRepo:   entrantRepo,
		accountant:    accountant,
		referralGraph: referralGraph,
		leaderboard:   leaderboard,
		ownerVerifier: ownerVerifier,
	}
}

func (d *ticketDomain) GetTickets(
	ctx context.Context, req *model.GetTicketsRequest,
) (*model.GetTicketsResponse, error) {
	if _, err := d.getEntrant(ctx, req.CampaignID, req.EntrantID); err != nil {
		return nil, err
	}

	tickets, err := d.accountant.WeightOf(ctx, req.CampaignID, req.EntrantID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get weight: %v", err)
		return nil, errorx.Unknown
	}

	count, err := d.referralGraph.DirectReferralCount(ctx, req.CampaignID, req.EntrantID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count referrals: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetTicketsResponse{Tickets: tickets, ReferralCount: count}, nil
}

func (d *ticketDomain) GetSnapshot(
	ctx context.Context, req *model.GetSnapshotRequest,
) (*model.GetSnapshotResponse, error) {
	campaign, err := getCampaign(ctx, d.campaignRepo, req.CampaignID)
	if err != nil {
		return nil, err
	}

	snapshot, err := d.accountant.Snapshot(ctx, campaign.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot compute snapshot: %v", err)
		return nil, errorx.Unknown
	}

	entries := []model.TicketEntry{}
	for _, e := range snapshot.Entries {
		entries = append(entries, model.TicketEntry{EntrantID: e.EntrantID, Tickets: e.Weight})
	}

	return &model.GetSnapshotResponse{
		Version:      snapshot.Version,
		Hash:         snapshot.Hash,
		PoolSize:     len(snapshot.Entries),
		TotalTickets: snapshot.TotalTickets,
		Entries:      entries,
	}, nil
}

func (d *ticketDomain) VerifyTickets(
	ctx context.Context, req *model.VerifyTicketsRequest,
) (*model.VerifyTicketsResponse, error) {
	campaign, err := verifyCampaignOwner(ctx, d.ownerVerifier, req.CampaignID)
	if err != nil {
		return nil, err
	}

	mismatches, err := d.accountant.Verify(ctx, campaign.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot verify tickets: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.TicketMismatch{}
	for _, m := range mismatches {
		result = append(result, model.TicketMismatch{
			EntrantID: m.EntrantID,
			Cached:    m.Cached,
			Ledger:    m.Ledger,
		})
	}

	return &model.VerifyTicketsResponse{Consistent: len(result) == 0, Mismatches: result}, nil
}

func (d *ticketDomain) GetReferrals(
	ctx context.Context, req *model.GetReferralsRequest,
) (*model.GetReferralsResponse, error) {
	entrant, err := d.getEntrant(ctx, req.CampaignID, req.EntrantID)
	if err != nil {
		return nil, err
	}

	ancestors, err := d.referralGraph.Ancestors(ctx, req.CampaignID, entrant.ID)
	if err != nil {
		if errors.Is(err, referral.ErrCycle) {
			xcontext.Logger(ctx).Errorf("Referral graph is corrupted: %v", err)
			return nil, errorx.New(errorx.Internal, "The referral graph of the campaign is corrupted")
		}

		xcontext.Logger(ctx).Errorf("Cannot get ancestors: %v", err)
		return nil, errorx.Unknown
	}

	children, err := d.referralGraph.Children(ctx, req.CampaignID, entrant.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get children: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetReferralsResponse{
		ReferrerID: entrant.ReferrerID.String,
		Ancestors:  ancestors,
		Children:   children,
	}, nil
}

func (d *ticketDomain) GetLeaderboard(
	ctx context.Context, req *model.GetLeaderboardRequest,
) (*model.GetLeaderboardResponse, error) {
	offset, limit, err := normalizePagination(ctx, req.Offset, req.Limit)
	if err != nil {
		return nil, err
	}

	campaign, err := getCampaign(ctx, d.campaignRepo, req.CampaignID)
	if err != nil {
		return nil, err
	}

	entries, err := d.leaderboard.GetLeaderboard(ctx, campaign.ID, offset, limit)
	if err != nil {
		return nil, err
	}

	return &model.GetLeaderboardResponse{Entries: entries}, nil
}

func (d *ticketDomain) getEntrant(ctx context.Context, campaignID, entrantID string) (*entity.Entrant, error) {
	entrant, err := d.entrantRepo.GetByID(ctx, campaignID, entrantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found entrant")
		}

		xcontext.Logger(ctx).Errorf("Cannot get entrant: %v", err)
		return nil, errorx.Unknown
	}

	return entrant, nil
}
