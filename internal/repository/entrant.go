package repository

import (
	"context"

	"github.com/questx-lab/giveaway/internal/entity"
	"github.com/questx-lab/giveaway/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EntrantRepository interface {
	// CreateIfAbsent inserts the entrant unless one with the same email hash
	// or referral code exists in the campaign. It reports whether the row was
	// inserted.
	CreateIfAbsent(ctx context.Context, data *entity.Entrant) (bool, error)
	GetByID(ctx context.Context, campaignID, id string) (*entity.Entrant, error)
	GetByIDs(ctx context.Context, campaignID string, ids []string) ([]entity.Entrant, error)
	GetByEmailHash(ctx context.Context, campaignID, emailHash string) (*entity.Entrant, error)
	GetByReferralCode(ctx context.Context, campaignID, code string) (*entity.Entrant, error)
	GetIDsByCampaign(ctx context.Context, campaignID string) ([]string, error)
	Count(ctx context.Context, campaignID string) (int64, error)
	SetReferrer(ctx context.Context, campaignID, id, referrerID string) error
	ClearReferrers(ctx context.Context, campaignID string) error
}

type entrantRepository struct{}

func NewEntrantRepository() *entrantRepository {
	return &entrantRepository{}
}

func (r *entrantRepository) CreateIfAbsent(ctx context.Context, data *entity.Entrant) (bool, error) {
	tx := xcontext.DB(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(data)
	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected == 1, nil
}

func (r *entrantRepository) GetByID(ctx context.Context, campaignID, id string) (*entity.Entrant, error) {
	var result entity.Entrant
	if err := xcontext.DB(ctx).Take(&result, "campaign_id=? AND id=?", campaignID, id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *entrantRepository) GetByIDs(ctx context.Context, campaignID string, ids []string) ([]entity.Entrant, error) {
	var result []entity.Entrant
	err := xcontext.DB(ctx).Find(&result, "campaign_id=? AND id IN (?)", campaignID, ids).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *entrantRepository) GetByEmailHash(
	ctx context.Context, campaignID, emailHash string,
) (*entity.Entrant, error) {
	var result entity.Entrant
	err := xcontext.DB(ctx).Take(&result, "campaign_id=? AND email_hash=?", campaignID, emailHash).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *entrantRepository) GetByReferralCode(
	ctx context.Context, campaignID, code string,
) (*entity.Entrant, error) {
	var result entity.Entrant
	err := xcontext.DB(ctx).Take(&result, "campaign_id=? AND referral_code=?", campaignID, code).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *entrantRepository) GetIDsByCampaign(ctx context.Context, campaignID string) ([]string, error) {
	var result []string
	err := xcontext.DB(ctx).
		Model(&entity.Entrant{}).
		Where("campaign_id=?", campaignID).
		Order("id ASC").
		Pluck("id", &result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *entrantRepository) Count(ctx context.Context, campaignID string) (int64, error) {
	var result int64
	err := xcontext.DB(ctx).Model(&entity.Entrant{}).Where("campaign_id=?", campaignID).Count(&result).Error
	if err != nil {
		return 0, err
	}

	return result, nil
}

// SetReferrer only fills an empty referrer, an existing referrer is never
// overwritten. It returns gorm.ErrRecordNotFound if nothing was updated.
func (r *entrantRepository) SetReferrer(ctx context.Context, campaignID, id, referrerID string) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Entrant{}).
		Where("campaign_id=? AND id=? AND referrer_id IS NULL", campaignID, id).
		Update("referrer_id", referrerID)
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *entrantRepository) ClearReferrers(ctx context.Context, campaignID string) error {
	return xcontext.DB(ctx).
		Model(&entity.Entrant{}).
		Where("campaign_id=?", campaignID).
		Update("referrer_id", nil).Error
}
