package repository

import (
	"context"

	"github.com/questx-lab/giveaway/internal/entity"
	"github.com/questx-lab/giveaway/pkg/xcontext"
)

type WinnerRepository interface {
	Create(ctx context.Context, data *entity.WinnerRecord) error
	GetLatest(ctx context.Context, campaignID string) (*entity.WinnerRecord, error)
	GetByGeneration(ctx context.Context, campaignID string, generation int) (*entity.WinnerRecord, error)
	GetHistory(ctx context.Context, campaignID string) ([]entity.WinnerRecord, error)
}

type winnerRepository struct{}

func NewWinnerRepository() *winnerRepository {
	return &winnerRepository{}
}

func (r *winnerRepository) Create(ctx context.Context, data *entity.WinnerRecord) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *winnerRepository) GetLatest(ctx context.Context, campaignID string) (*entity.WinnerRecord, error) {
	var result entity.WinnerRecord
	err := xcontext.DB(ctx).
		Where("campaign_id=?", campaignID).
		Order("generation DESC").
		Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *winnerRepository) GetByGeneration(
	ctx context.Context, campaignID string, generation int,
) (*entity.WinnerRecord, error) {
	var result entity.WinnerRecord
	err := xcontext.DB(ctx).
		Take(&result, "campaign_id=? AND generation=?", campaignID, generation).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *winnerRepository) GetHistory(ctx context.Context, campaignID string) ([]entity.WinnerRecord, error) {
	var result []entity.WinnerRecord
	err := xcontext.DB(ctx).
		Where("campaign_id=?", campaignID).
		Order("generation ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
