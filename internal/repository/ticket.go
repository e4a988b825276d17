package repository

import (
	"context"
	"errors"

	"github.com/questx-lab/giveaway/internal/entity"
	"github.com/questx-lab/giveaway/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TicketRepository interface {
	// Increase adds delta (which may be negative) to the entrant's total. It
	// must run in the same transaction as the ledger row causing it.
	Increase(ctx context.Context, campaignID, entrantID string, delta int64) error
	Get(ctx context.Context, campaignID, entrantID string) (*entity.TicketTotal, error)
	GetByCampaign(ctx context.Context, campaignID string) ([]entity.TicketTotal, error)
	GetTop(ctx context.Context, campaignID string, offset, limit int) ([]entity.TicketTotal, error)
	DeleteByCampaign(ctx context.Context, campaignID string) error
}

type ticketRepository struct{}

func NewTicketRepository() *ticketRepository {
	return &ticketRepository{}
}

func (r *ticketRepository) Increase(ctx context.Context, campaignID, entrantID string, delta int64) error {
	err := xcontext.DB(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entity.TicketTotal{CampaignID: campaignID, EntrantID: entrantID}).Error
	if err != nil {
		return err
	}

	tx := xcontext.DB(ctx).
		Model(&entity.TicketTotal{}).
		Where("campaign_id=? AND entrant_id=?", campaignID, entrantID).
		Update("tickets", gorm.Expr("tickets+?", delta))
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected > 1 {
		return errors.New("the number of affected rows is invalid")
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *ticketRepository) Get(ctx context.Context, campaignID, entrantID string) (*entity.TicketTotal, error) {
	var result entity.TicketTotal
	err := xcontext.DB(ctx).Take(&result, "campaign_id=? AND entrant_id=?", campaignID, entrantID).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *ticketRepository) GetByCampaign(ctx context.Context, campaignID string) ([]entity.TicketTotal, error) {
	var result []entity.TicketTotal
	err := xcontext.DB(ctx).
		Where("campaign_id=?", campaignID).
		Order("entrant_id ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *ticketRepository) GetTop(
	ctx context.Context, campaignID string, offset, limit int,
) ([]entity.TicketTotal, error) {
	var result []entity.TicketTotal
	err := xcontext.DB(ctx).
		Where("campaign_id=? AND tickets>0", campaignID).
		Order("tickets DESC, entrant_id ASC").
		Offset(offset).
		Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *ticketRepository) DeleteByCampaign(ctx context.Context, campaignID string) error {
	return xcontext.DB(ctx).Where("campaign_id=?", campaignID).Delete(&entity.TicketTotal{}).Error
}
