package domain

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/questx-lab/giveaway/internal/common"
	"github.com/questx-lab/giveaway/internal/domain/draw"
	"github.com/questx-lab/giveaway/internal/domain/lifecycle"
	"github.com/questx-lab/giveaway/internal/domain/ticket"
	"github.com/questx-lab/giveaway/internal/entity"
	"github.com/questx-lab/giveaway/internal/model"
	"github.com/questx-lab/giveaway/internal/repository"
	"github.com/questx-lab/giveaway/pkg/crypto"
	"github.com/questx-lab/giveaway/pkg/errorx"
	"github.com/questx-lab/giveaway/pkg/xcontext"
	"gorm.io/gorm"
)

type WinnerDomain interface {
	SelectWinners(context.Context, *model.SelectWinnersRequest) (*model.SelectWinnersResponse, error)
	RedrawWinners(context.Context, *model.RedrawWinnersRequest) (*model.RedrawWinnersResponse, error)
	GetWinners(context.Context, *model.GetWinnersRequest) (*model.GetWinnersResponse, error)
	VerifyWinners(context.Context, *model.VerifyWinnersRequest) (*model.VerifyWinnersResponse, error)
}

type winnerDomain struct {
	campaignRepo  repository.CampaignRepository
	winnerRepo    repository.WinnerRepository
	outboxRepo    repository.OutboxRepository
	accountant    ticket.Accountant
	ownerVerifier *common.CampaignOwnerVerifier
}

func NewWinnerDomain(
	campaignRepo repository.CampaignRepository,
	winnerRepo repository.WinnerRepository,
	outboxRepo repository.OutboxRepository,
	accountant ticket.Accountant,
	ownerVerifier *common.CampaignOwnerVerifier,
) *winnerDomain {
	return &winnerDomain{
		campaignRepo:  campaignRepo,
		winnerRepo:    winnerRepo,
		outboxRepo:    outboxRepo,
		accountant:    accountant,
		ownerVerifier: ownerVerifier,
	}
}

// selectableStatuses are the stored statuses a campaign may still have when
// its effective status is ended.
var selectableStatuses = []entity.CampaignStatus{
	entity.CampaignScheduled,
	entity.CampaignActive,
	entity.CampaignEnded,
}

func (d *winnerDomain) SelectWinners(
	ctx context.Context, req *model.SelectWinnersRequest,
) (*model.SelectWinnersResponse, error) {
	campaign, err := verifyCampaignOwner(ctx, d.ownerVerifier, req.CampaignID)
	if err != nil {
		return nil, err
	}

	now := xcontext.Now(ctx)
	switch lifecycle.EffectiveStatus(campaign, now) {
	case entity.CampaignWinnersSelected, entity.CampaignArchived:
		return d.existingSelection(ctx, campaign.ID)
	case entity.CampaignCancelled:
		return nil, errorx.New(errorx.CampaignClosed, "The campaign was cancelled")
	case entity.CampaignEnded:
	default:
		return nil, errorx.New(errorx.DrawNotReady, "The campaign has not ended yet")
	}

	grace := xcontext.Configs(ctx).Campaign.ReferralGraceWindow
	if opensAt := lifecycle.SelectionOpensAt(campaign, grace); now.Before(opensAt) {
		return nil, errorx.New(errorx.DrawNotReady, "Winners can be selected after %s", opensAt.Format("2006-01-02 15:04:05"))
	}

	seed, err := d.seed(req.Seed)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot generate seed: %v", err)
		return nil, errorx.Unknown
	}

	txCtx := xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(txCtx)

	err = d.campaignRepo.ClaimSelection(txCtx, campaign.ID, selectableStatuses, now)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Another caller has claimed the selection, or the campaign was
			// cancelled in the meantime.
			xcontext.WithRollbackDBTransaction(txCtx)
			return d.existingSelection(ctx, campaign.ID)
		}

		xcontext.Logger(ctx).Errorf("Cannot claim selection: %v", err)
		return nil, errorx.Unknown
	}

	snapshot, err := d.accountant.Snapshot(txCtx, campaign.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot compute snapshot: %v", err)
		return nil, errorx.Unknown
	}

	record := d.draw(ctx, campaign, snapshot, seed, 1)
	if err := d.winnerRepo.Create(txCtx, record); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create winner record: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.appendSelected(txCtx, record); err != nil {
		return nil, err
	}

	if err := xcontext.WithCommitDBTransaction(txCtx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit winner record: %v", err)
		return nil, errorx.Unknown
	}

	common.IncCounter(common.WinnerSelectionTotal, "select")
	common.SetGauge(common.DrawPoolSize, float64(record.PoolSize), campaign.ID)
	return &model.SelectWinnersResponse{Record: convertWinnerRecord(record)}, nil
}

func (d *winnerDomain) RedrawWinners(
	ctx context.Context, req *model.RedrawWinnersRequest,
) (*model.RedrawWinnersResponse, error) {
	if req.Reason == "" {
		return nil, errorx.New(errorx.BadRequest, "A redraw requires a reason")
	}

	campaign, err := verifyCampaignOwner(ctx, d.ownerVerifier, req.CampaignID)
	if err != nil {
		return nil, err
	}

	if campaign.Status != entity.CampaignWinnersSelected {
		return nil, errorx.New(errorx.InvalidTransition, "Only a campaign with selected winners can be redrawn")
	}

	previous, err := d.winnerRepo.GetLatest(ctx, campaign.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get latest winner record: %v", err)
		return nil, errorx.Unknown
	}

	seed, err := crypto.NewSeed()
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot generate seed: %v", err)
		return nil, errorx.Unknown
	}

	// Exclusions accumulate so a disqualified entrant cannot come back in a
	// later generation.
	excluded := append([]string{}, previous.Excluded...)
	excluded = append(excluded, req.ExcludedEntrantIDs...)

	txCtx := xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(txCtx)

	snapshot, err := d.accountant.Snapshot(txCtx, campaign.ID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot compute snapshot: %v", err)
		return nil, errorx.Unknown
	}

	record := d.draw(ctx, campaign, snapshot.Exclude(excluded...), seed, previous.Generation+1)
	record.SupersedesID = sql.NullString{String: previous.ID, Valid: true}
	record.Reason = req.Reason
	record.Excluded = excluded

	if err := d.winnerRepo.Create(txCtx, record); err != nil {
		xcontext.WithRollbackDBTransaction(txCtx)
		_, getErr := d.winnerRepo.GetByGeneration(ctx, campaign.ID, record.Generation)
		if getErr == nil {
			return nil, errorx.New(errorx.AlreadyExists, "Another redraw has superseded generation %d", previous.Generation)
		}

		xcontext.Logger(ctx).Errorf("Cannot create winner record: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.appendSelected(txCtx, record); err != nil {
		return nil, err
	}

	if err := xcontext.WithCommitDBTransaction(txCtx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit winner record: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.Logger(ctx).Infof("Campaign %s redrawn to generation %d: %s", campaign.ID, record.Generation, req.Reason)
	common.IncCounter(common.WinnerSelectionTotal, "redraw")
	common.SetGauge(common.DrawPoolSize, float64(record.PoolSize), campaign.ID)
	return &model.RedrawWinnersResponse{Record: convertWinnerRecord(record)}, nil
}

func (d *winnerDomain) GetWinners(
	ctx context.Context, req *model.GetWinnersRequest,
) (*model.GetWinnersResponse, error) {
	record, err := d.getRecord(ctx, req.CampaignID, req.Generation)
	if err != nil {
		return nil, err
	}

	history, err := d.winnerRepo.GetHistory(ctx, req.CampaignID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get winner history: %v", err)
		return nil, errorx.Unknown
	}

	resp := &model.GetWinnersResponse{
		Record:  convertWinnerRecord(record),
		History: []model.WinnerRecord{},
	}
	for i := range history {
		resp.History = append(resp.History, convertWinnerRecord(&history[i]))
	}

	return resp, nil
}

// VerifyWinners recomputes the snapshot at the recorded ledger version and
// re-runs the draw with the recorded seed.
func (d *winnerDomain) VerifyWinners(
	ctx context.Context, req *model.VerifyWinnersRequest,
) (*model.VerifyWinnersResponse, error) {
	record, err := d.getRecord(ctx, req.CampaignID, req.Generation)
	if err != nil {
		return nil, err
	}

	snapshot, err := d.accountant.SnapshotAt(ctx, record.CampaignID, record.SnapshotVersion)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot compute snapshot: %v", err)
		return nil, errorx.Unknown
	}
	snapshot = snapshot.Exclude(record.Excluded...)

	resp := &model.VerifyWinnersResponse{
		SnapshotHash: record.SnapshotHash,
		LedgerHash:   snapshot.Hash,
	}

	if snapshot.Hash != record.SnapshotHash {
		resp.Reason = "The ledger does not match the recorded snapshot"
		return resp, nil
	}

	expected := []draw.Result{}
	for _, w := range record.Winners {
		expected = append(expected, draw.Result{EntrantID: w.EntrantID, Rank: w.Rank, Weight: w.Tickets})
	}

	if !draw.Verify(snapshot.Entries, record.NumWinners, record.Seed, expected) {
		resp.Reason = "The recorded winners cannot be reproduced from the seed"
		return resp, nil
	}

	resp.Valid = true
	return resp, nil
}

func (d *winnerDomain) draw(
	ctx context.Context,
	campaign *entity.Campaign,
	snapshot *ticket.Snapshot,
	seed int64,
	generation int,
) *entity.WinnerRecord {
	winners := entity.Array[entity.Winner]{}
	for _, r := range draw.Draw(snapshot.Entries, campaign.NumWinners, seed) {
		winners = append(winners, entity.Winner{EntrantID: r.EntrantID, Rank: r.Rank, Tickets: r.Weight})
	}

	if len(winners) < campaign.NumWinners {
		xcontext.Logger(ctx).Warnf("Campaign %s has only %d eligible entrants for %d winners",
			campaign.ID, len(snapshot.Entries), campaign.NumWinners)
	}

	return &entity.WinnerRecord{
		ID:              uuid.NewString(),
		CampaignID:      campaign.ID,
		Generation:      generation,
		Winners:         winners,
		NumWinners:      campaign.NumWinners,
		Seed:            seed,
		SnapshotVersion: snapshot.Version,
		SnapshotHash:    snapshot.Hash,
		PoolSize:        len(snapshot.Entries),
		TotalTickets:    snapshot.TotalTickets,
		SelectedBy:      xcontext.RequestUserID(ctx),
		SelectedAt:      xcontext.Now(ctx),
		Excluded:        entity.Array[string]{},
	}
}

func (d *winnerDomain) appendSelected(ctx context.Context, record *entity.WinnerRecord) error {
	err := appendEvent(ctx, d.outboxRepo, model.LedgerEvent{
		Type:       model.EventWinnersSelected,
		CampaignID: record.CampaignID,
		RecordID:   record.ID,
		Generation: record.Generation,
		OccurredAt: record.SelectedAt,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot append outbox message: %v", err)
		return errorx.Unknown
	}

	return nil
}

func (d *winnerDomain) seed(seed *int64) (int64, error) {
	if seed != nil {
		return *seed, nil
	}

	return crypto.NewSeed()
}

func (d *winnerDomain) existingSelection(ctx context.Context, campaignID string) (*model.SelectWinnersResponse, error) {
	record, err := d.winnerRepo.GetLatest(ctx, campaignID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.CampaignClosed, "The campaign can no longer select winners")
		}

		xcontext.Logger(ctx).Errorf("Cannot get winner record: %v", err)
		return nil, errorx.Unknown
	}

	return &model.SelectWinnersResponse{Record: convertWinnerRecord(record)}, nil
}

func (d *winnerDomain) getRecord(ctx context.Context, campaignID string, generation int) (*entity.WinnerRecord, error) {
	var record *entity.WinnerRecord
	var err error
	if generation == 0 {
		record, err = d.winnerRepo.GetLatest(ctx, campaignID)
	} else {
		record, err = d.winnerRepo.GetByGeneration(ctx, campaignID, generation)
	}

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found winner record")
		}

		xcontext.Logger(ctx).Errorf("Cannot get winner record: %v", err)
		return nil, errorx.Unknown
	}

	return record, nil
}
