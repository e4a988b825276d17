package repository

import (
	"context"
	"time"

	"github.com/questx-lab/giveaway/internal/entity"
	"github.com/questx-lab/giveaway/pkg/xcontext"
	"gorm.io/gorm"
)

type CampaignRepository interface {
	Create(ctx context.Context, data *entity.Campaign) error
	GetByID(ctx context.Context, id string) (*entity.Campaign, error)
	GetListByOwner(ctx context.Context, ownerID string, offset, limit int) ([]entity.Campaign, error)
	GetShouldStart(ctx context.Context, now time.Time) ([]entity.Campaign, error)
	GetShouldEnd(ctx context.Context, now time.Time) ([]entity.Campaign, error)

	// Transition moves the campaign to status `to` only if its current status
	// is one of `from`. It returns gorm.ErrRecordNotFound if no row matched.
	Transition(ctx context.Context, id string, from []entity.CampaignStatus, to entity.CampaignStatus, at time.Time) error

	// ClaimSelection marks the campaign as being selected. Only one caller
	// can claim a campaign.
	ClaimSelection(ctx context.Context, id string, from []entity.CampaignStatus, at time.Time) error
	UpdateCurrentConfig(ctx context.Context, id string, cfg *entity.CampaignConfig) error

	CreateConfig(ctx context.Context, data *entity.CampaignConfig) error
	GetConfig(ctx context.Context, campaignID string, version int) (*entity.CampaignConfig, error)
	GetConfigAt(ctx context.Context, campaignID string, at time.Time) (*entity.CampaignConfig, error)
	GetConfigs(ctx context.Context, campaignID string) ([]entity.CampaignConfig, error)
}

type campaignRepository struct{}

func NewCampaignRepository() *campaignRepository {
	return &campaignRepository{}
}

func (r *campaignRepository) Create(ctx context.Context, data *entity.Campaign) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *campaignRepository) GetByID(ctx context.Context, id string) (*entity.Campaign, error) {
	var result entity.Campaign
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *campaignRepository) GetListByOwner(
	ctx context.Context, ownerID string, offset, limit int,
) ([]entity.Campaign, error) {
	var result []entity.Campaign
	err := xcontext.DB(ctx).
		Where("owner_id=?", ownerID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *campaignRepository) GetShouldStart(ctx context.Context, now time.Time) ([]entity.Campaign, error) {
	var result []entity.Campaign
	err := xcontext.DB(ctx).
		Where("status=? AND start_time<=?", entity.CampaignScheduled, now).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *campaignRepository) GetShouldEnd(ctx context.Context, now time.Time) ([]entity.Campaign, error) {
	var result []entity.Campaign
	err := xcontext.DB(ctx).
		Where("status IN (?) AND end_time<=?",
			[]entity.CampaignStatus{entity.CampaignScheduled, entity.CampaignActive}, now).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *campaignRepository) Transition(
	ctx context.Context,
	id string,
	from []entity.CampaignStatus,
	to entity.CampaignStatus,
	at time.Time,
) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Campaign{}).
		Where("id=? AND status IN (?)", id, from).
		Updates(map[string]any{
			"status":            to,
			"status_changed_at": at,
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *campaignRepository) ClaimSelection(
	ctx context.Context, id string, from []entity.CampaignStatus, at time.Time,
) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Campaign{}).
		Where("id=? AND status IN (?) AND selection_claimed_at IS NULL", id, from).
		Updates(map[string]any{
			"status":               entity.CampaignWinnersSelected,
			"status_changed_at":    at,
			"selection_claimed_at": at,
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *campaignRepository) UpdateCurrentConfig(
	ctx context.Context, id string, cfg *entity.CampaignConfig,
) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Campaign{}).
		Where("id=? AND config_version=?", id, cfg.Version-1).
		Updates(map[string]any{
			"config_version": cfg.Version,
			"start_time":     cfg.Config.StartTime,
			"end_time":       cfg.Config.EndTime,
			"num_winners":    cfg.Config.NumWinners,
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *campaignRepository) CreateConfig(ctx context.Context, data *entity.CampaignConfig) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *campaignRepository) GetConfig(
	ctx context.Context, campaignID string, version int,
) (*entity.CampaignConfig, error) {
	var result entity.CampaignConfig
	err := xcontext.DB(ctx).
		Take(&result, "campaign_id=? AND version=?", campaignID, version).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// GetConfigAt returns the config version which was in force at the given
// time.
func (r *campaignRepository) GetConfigAt(
	ctx context.Context, campaignID string, at time.Time,
) (*entity.CampaignConfig, error) {
	var result entity.CampaignConfig
	err := xcontext.DB(ctx).
		Where("campaign_id=? AND created_at<=?", campaignID, at).
		Order("version DESC").
		Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *campaignRepository) GetConfigs(ctx context.Context, campaignID string) ([]entity.CampaignConfig, error) {
	var result []entity.CampaignConfig
	err := xcontext.DB(ctx).
		Where("campaign_id=?", campaignID).
		Order("version ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
