package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/questx-lab/giveaway/internal/common"
	"github.com/questx-lab/giveaway/internal/domain/lifecycle"
	"github.com/questx-lab/giveaway/internal/entity"
	"github.com/questx-lab/giveaway/internal/model"
	"github.com/questx-lab/giveaway/internal/repository"
	"github.com/questx-lab/giveaway/pkg/enum"
	"github.com/questx-lab/giveaway/pkg/errorx"
	"github.com/questx-lab/giveaway/pkg/xcontext"
	"gorm.io/gorm"
)

type CampaignDomain interface {
	Create(context.Context, *model.CreateCampaignRequest) (*model.CreateCampaignResponse, error)
	UpdateConfig(context.Context, *model.UpdateCampaignConfigRequest) (*model.UpdateCampaignConfigResponse, error)
	Schedule(context.Context, *model.ScheduleCampaignRequest) (*model.ScheduleCampaignResponse, error)
	Cancel(context.Context, *model.CancelCampaignRequest) (*model.CancelCampaignResponse, error)
	Archive(context.Context, *model.ArchiveCampaignRequest) (*model.ArchiveCampaignResponse, error)
	Get(context.Context, *model.GetCampaignRequest) (*model.GetCampaignResponse, error)
	GetMyCampaigns(context.Context, *model.GetMyCampaignsRequest) (*model.GetMyCampaignsResponse, error)
}

type campaignDomain struct {
	campaignRepo  repository.CampaignRepository
	ownerVerifier *common.CampaignOwnerVerifier
}

func NewCampaignDomain(
	campaignRepo repository.CampaignRepository,
	ownerVerifier *common.CampaignOwnerVerifier,
) *campaignDomain {
	return &campaignDomain{
		campaignRepo:  campaignRepo,
		ownerVerifier: ownerVerifier,
	}
}

func (d *campaignDomain) Create(
	ctx context.Context, req *model.CreateCampaignRequest,
) (*model.CreateCampaignResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return nil, errorx.New(errorx.Unauthenticated, "Need to login to create campaign")
	}

	if req.Name == "" {
		return nil, errorx.New(errorx.BadRequest, "Not allow an empty name")
	}

	plan, err := enum.ToEnum[entity.OwnerPlan](req.OwnerPlan)
	if err != nil {
		xcontext.Logger(ctx).Debugf("Invalid owner plan: %v", err)
		return nil, errorx.New(errorx.BadRequest, "Invalid owner plan")
	}

	cfg := convertEntryConfig(req.Config)
	if err := checkCapabilities(plan, cfg); err != nil {
		return nil, err
	}

	now := xcontext.Now(ctx)
	campaign := &entity.Campaign{
		Base:            entity.Base{ID: uuid.NewString(), CreatedAt: now},
		OwnerID:         userID,
		OwnerPlan:       plan,
		Name:            req.Name,
		Status:          entity.CampaignDraft,
		StatusChangedAt: now,
		ConfigVersion:   1,
		StartTime:       cfg.StartTime,
		EndTime:         cfg.EndTime,
		NumWinners:      cfg.NumWinners,
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.campaignRepo.Create(ctx, campaign); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create campaign: %v", err)
		return nil, errorx.Unknown
	}

	err = d.campaignRepo.CreateConfig(ctx, &entity.CampaignConfig{
		ID:         uuid.NewString(),
		CampaignID: campaign.ID,
		Version:    1,
		Config:     cfg,
		CreatedBy:  userID,
		CreatedAt:  now,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create campaign config: %v", err)
		return nil, errorx.Unknown
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit campaign: %v", err)
		return nil, errorx.Unknown
	}

	return &model.CreateCampaignResponse{ID: campaign.ID, Version: 1}, nil
}

func (d *campaignDomain) UpdateConfig(
	ctx context.Context, req *model.UpdateCampaignConfigRequest,
) (*model.UpdateCampaignConfigResponse, error) {
	campaign, err := verifyCampaignOwner(ctx, d.ownerVerifier, req.CampaignID)
	if err != nil {
		return nil, err
	}

	now := xcontext.Now(ctx)
	status := lifecycle.EffectiveStatus(campaign, now)
	switch status {
	case entity.CampaignDraft, entity.CampaignScheduled, entity.CampaignActive:
	default:
		return nil, errorx.New(errorx.InvalidTransition, "Cannot update config of a %s campaign", status)
	}

	cfg := convertEntryConfig(req.Config)
	if err := checkCapabilities(campaign.OwnerPlan, cfg); err != nil {
		return nil, err
	}

	// Entries already recorded rely on the campaign having started.
	if status == entity.CampaignActive &&
		!cfg.StartTime.Truncate(time.Second).Equal(campaign.StartTime.Truncate(time.Second)) {
		return nil, errorx.New(errorx.InvalidConfig, "Cannot change the start time of an active campaign")
	}

	if campaign.Status != entity.CampaignDraft {
		if msg := lifecycle.ValidateSchedule(cfg, now); msg != "" {
			return nil, errorx.New(errorx.InvalidConfig, "%s", msg)
		}
	}

	newConfig := &entity.CampaignConfig{
		ID:         uuid.NewString(),
		CampaignID: campaign.ID,
		Version:    campaign.ConfigVersion + 1,
		Config:     cfg,
		CreatedBy:  xcontext.RequestUserID(ctx),
		CreatedAt:  now,
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.campaignRepo.UpdateCurrentConfig(ctx, campaign.ID, newConfig); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.AlreadyExists, "The config has been changed by another request")
		}

		xcontext.Logger(ctx).Errorf("Cannot update current config: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.campaignRepo.CreateConfig(ctx, newConfig); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create campaign config: %v", err)
		return nil, errorx.Unknown
	}

	if err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit campaign config: %v", err)
		return nil, errorx.Unknown
	}

	return &model.UpdateCampaignConfigResponse{Version: newConfig.Version}, nil
}

func (d *campaignDomain) Schedule(
	ctx context.Context, req *model.ScheduleCampaignRequest,
) (*model.ScheduleCampaignResponse, error) {
	campaign, err := verifyCampaignOwner(ctx, d.ownerVerifier, req.CampaignID)
	if err != nil {
		return nil, err
	}

	if campaign.Status != entity.CampaignDraft {
		return nil, errorx.New(errorx.InvalidTransition, "Only a draft campaign can be scheduled")
	}

	cfg, err := d.campaignRepo.GetConfig(ctx, campaign.ID, campaign.ConfigVersion)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get current config: %v", err)
		return nil, errorx.Unknown
	}

	now := xcontext.Now(ctx)
	if msg := lifecycle.ValidateSchedule(cfg.Config, now); msg != "" {
		return nil, errorx.New(errorx.InvalidConfig, "%s", msg)
	}

	status := lifecycle.StatusAfterSchedule(cfg.Config, now)
	err = d.campaignRepo.Transition(ctx, campaign.ID, []entity.CampaignStatus{entity.CampaignDraft}, status, now)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.InvalidTransition, "The campaign is not a draft anymore")
		}

		xcontext.Logger(ctx).Errorf("Cannot schedule campaign: %v", err)
		return nil, errorx.Unknown
	}

	return &model.ScheduleCampaignResponse{Status: string(status)}, nil
}

func (d *campaignDomain) Cancel(
	ctx context.Context, req *model.CancelCampaignRequest,
) (*model.CancelCampaignResponse, error) {
	if err := d.transition(ctx, req.CampaignID, entity.CampaignCancelled); err != nil {
		return nil, err
	}

	return &model.CancelCampaignResponse{}, nil
}

func (d *campaignDomain) Archive(
	ctx context.Context, req *model.ArchiveCampaignRequest,
) (*model.ArchiveCampaignResponse, error) {
	if err := d.transition(ctx, req.CampaignID, entity.CampaignArchived); err != nil {
		return nil, err
	}

	return &model.ArchiveCampaignResponse{}, nil
}

func (d *campaignDomain) Get(
	ctx context.Context, req *model.GetCampaignRequest,
) (*model.GetCampaignResponse, error) {
	campaign, err := getCampaign(ctx, d.campaignRepo, req.CampaignID)
	if err != nil {
		return nil, err
	}

	version := req.Version
	if version == 0 {
		version = campaign.ConfigVersion
	}

	cfg, err := d.campaignRepo.GetConfig(ctx, campaign.ID, version)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found config version %d", version)
		}

		xcontext.Logger(ctx).Errorf("Cannot get campaign config: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetCampaignResponse{
		Campaign: convertCampaign(campaign, xcontext.Now(ctx)),
		Config:   convertCampaignConfig(cfg),
	}, nil
}

func (d *campaignDomain) GetMyCampaigns(
	ctx context.Context, req *model.GetMyCampaignsRequest,
) (*model.GetMyCampaignsResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return nil, errorx.New(errorx.Unauthenticated, "Need to login")
	}

	offset, limit, err := normalizePagination(ctx, req.Offset, req.Limit)
	if err != nil {
		return nil, err
	}

	campaigns, err := d.campaignRepo.GetListByOwner(ctx, userID, offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get campaigns: %v", err)
		return nil, errorx.Unknown
	}

	now := xcontext.Now(ctx)
	result := []model.Campaign{}
	for i := range campaigns {
		result = append(result, convertCampaign(&campaigns[i], now))
	}

	return &model.GetMyCampaignsResponse{Campaigns: result}, nil
}

func (d *campaignDomain) transition(ctx context.Context, campaignID string, to entity.CampaignStatus) error {
	campaign, err := verifyCampaignOwner(ctx, d.ownerVerifier, campaignID)
	if err != nil {
		return err
	}

	if !lifecycle.CanTransition(campaign.Status, to) {
		return errorx.New(errorx.InvalidTransition, "Cannot move a %s campaign to %s", campaign.Status, to)
	}

	err = d.campaignRepo.Transition(ctx, campaign.ID, lifecycle.Sources(to), to, xcontext.Now(ctx))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorx.New(errorx.InvalidTransition, "The campaign status has been changed")
		}

		xcontext.Logger(ctx).Errorf("Cannot change campaign status: %v", err)
		return errorx.Unknown
	}

	return nil
}

func checkCapabilities(plan entity.OwnerPlan, cfg entity.EntryConfig) error {
	if msg := lifecycle.ValidatePoints(cfg); msg != "" {
		return errorx.New(errorx.InvalidConfig, "%s", msg)
	}

	capabilities, err := common.CapabilitiesOf(plan)
	if err != nil {
		return errorx.New(errorx.BadRequest, "Invalid owner plan")
	}

	if err := capabilities.Check(cfg); err != nil {
		return errorx.New(errorx.PermissionDenied, "%s", err.Error())
	}

	return nil
}
