package repository

import (
	"context"

	"github.com/questx-lab/giveaway/internal/entity"
	"github.com/questx-lab/giveaway/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type ReferralRepository interface {
	// InsertEdge inserts the edge unless the referred entrant already has a
	// referrer. It reports whether the row was inserted.
	InsertEdge(ctx context.Context, data *entity.ReferralEdge) (bool, error)
	GetEdge(ctx context.Context, campaignID, referredID string) (*entity.ReferralEdge, error)
	GetChildren(ctx context.Context, campaignID, referrerID string) ([]entity.ReferralEdge, error)
	CountChildren(ctx context.Context, campaignID, referrerID string) (int64, error)
	DeleteByCampaign(ctx context.Context, campaignID string) error
}

type referralRepository struct{}

func NewReferralRepository() *referralRepository {
	return &referralRepository{}
}

func (r *referralRepository) InsertEdge(ctx context.Context, data *entity.ReferralEdge) (bool, error) {
	tx := xcontext.DB(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(data)
	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected == 1, nil
}

func (r *referralRepository) GetEdge(
	ctx context.Context, campaignID, referredID string,
) (*entity.ReferralEdge, error) {
	var result entity.ReferralEdge
	err := xcontext.DB(ctx).Take(&result, "campaign_id=? AND referred_id=?", campaignID, referredID).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *referralRepository) GetChildren(
	ctx context.Context, campaignID, referrerID string,
) ([]entity.ReferralEdge, error) {
	var result []entity.ReferralEdge
	err := xcontext.DB(ctx).
		Where("campaign_id=? AND referrer_id=?", campaignID, referrerID).
		Order("created_at ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *referralRepository) CountChildren(
	ctx context.Context, campaignID, referrerID string,
) (int64, error) {
	var result int64
	err := xcontext.DB(ctx).
		Model(&entity.ReferralEdge{}).
		Where("campaign_id=? AND referrer_id=?", campaignID, referrerID).
		Count(&result).Error
	if err != nil {
		return 0, err
	}

	return result, nil
}

func (r *referralRepository) DeleteByCampaign(ctx context.Context, campaignID string) error {
	return xcontext.DB(ctx).Where("campaign_id=?", campaignID).Delete(&entity.ReferralEdge{}).Error
}
