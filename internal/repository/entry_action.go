package repository

import (
	"context"

	"github.com/questx-lab/giveaway/internal/entity"
	"github.com/questx-lab/giveaway/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type EntryActionFilter struct {
	EntrantID string
	Kind      entity.ActionKind
}

type EntryActionRepository interface {
	// Insert appends the action unless the same credit already exists. It
	// reports whether the row was inserted.
	Insert(ctx context.Context, data *entity.EntryAction) (bool, error)
	GetByID(ctx context.Context, campaignID, id string) (*entity.EntryAction, error)
	GetByCredit(ctx context.Context, campaignID, entrantID string, kind entity.ActionKind, creditKey string) (*entity.EntryAction, error)
	GetList(ctx context.Context, campaignID string, filter EntryActionFilter, offset, limit int) ([]entity.EntryAction, error)

	// Iterate calls fn with batches of the campaign's actions ordered by
	// sequence.
	Iterate(ctx context.Context, campaignID string, batchSize int, fn func([]entity.EntryAction) error) error

	InsertRevocation(ctx context.Context, data *entity.EntryRevocation) (bool, error)
	GetRevocationByActionID(ctx context.Context, actionID string) (*entity.EntryRevocation, error)
	GetRevocations(ctx context.Context, campaignID string) ([]entity.EntryRevocation, error)

	// MaxSequence returns the highest sequence of actions and revocations of
	// the campaign, or zero for an empty ledger.
	MaxSequence(ctx context.Context, campaignID string) (int64, error)
}

type entryActionRepository struct{}

func NewEntryActionRepository() *entryActionRepository {
	return &entryActionRepository{}
}

func (r *entryActionRepository) Insert(ctx context.Context, data *entity.EntryAction) (bool, error) {
	tx := xcontext.DB(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(data)
	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected == 1, nil
}

func (r *entryActionRepository) GetByID(ctx context.Context, campaignID, id string) (*entity.EntryAction, error) {
	var result entity.EntryAction
	if err := xcontext.DB(ctx).Take(&result, "campaign_id=? AND id=?", campaignID, id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *entryActionRepository) GetByCredit(
	ctx context.Context,
	campaignID, entrantID string,
	kind entity.ActionKind,
	creditKey string,
) (*entity.EntryAction, error) {
	var result entity.EntryAction
	err := xcontext.DB(ctx).
		Take(&result, "campaign_id=? AND entrant_id=? AND kind=? AND credit_key=?",
			campaignID, entrantID, kind, creditKey).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *entryActionRepository) GetList(
	ctx context.Context,
	campaignID string,
	filter EntryActionFilter,
	offset, limit int,
) ([]entity.EntryAction, error) {
	var result []entity.EntryAction
	tx := xcontext.DB(ctx).
		Where("campaign_id=?", campaignID).
		Order("sequence ASC").
		Offset(offset).
		Limit(limit)

	if filter.EntrantID != "" {
		tx = tx.Where("entrant_id=?", filter.EntrantID)
	}

	if filter.Kind != "" {
		tx = tx.Where("kind=?", filter.Kind)
	}

	if err := tx.Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *entryActionRepository) Iterate(
	ctx context.Context,
	campaignID string,
	batchSize int,
	fn func([]entity.EntryAction) error,
) error {
	lastSequence := int64(0)
	for {
		var batch []entity.EntryAction
		err := xcontext.DB(ctx).
			Where("campaign_id=? AND sequence>?", campaignID, lastSequence).
			Order("sequence ASC").
			Limit(batchSize).
			Find(&batch).Error
		if err != nil {
			return err
		}

		if len(batch) == 0 {
			return nil
		}

		if err := fn(batch); err != nil {
			return err
		}

		lastSequence = batch[len(batch)-1].Sequence
	}
}

func (r *entryActionRepository) InsertRevocation(
	ctx context.Context, data *entity.EntryRevocation,
) (bool, error) {
	tx := xcontext.DB(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(data)
	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected == 1, nil
}

func (r *entryActionRepository) GetRevocationByActionID(
	ctx context.Context, actionID string,
) (*entity.EntryRevocation, error) {
	var result entity.EntryRevocation
	if err := xcontext.DB(ctx).Take(&result, "action_id=?", actionID).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *entryActionRepository) GetRevocations(
	ctx context.Context, campaignID string,
) ([]entity.EntryRevocation, error) {
	var result []entity.EntryRevocation
	err := xcontext.DB(ctx).
		Where("campaign_id=?", campaignID).
		Order("sequence ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *entryActionRepository) MaxSequence(ctx context.Context, campaignID string) (int64, error) {
	var actionSeq, revocationSeq int64
	err := xcontext.DB(ctx).
		Model(&entity.EntryAction{}).
		Where("campaign_id=?", campaignID).
		Select("COALESCE(MAX(sequence), 0)").
		Scan(&actionSeq).Error
	if err != nil {
		return 0, err
	}

	err = xcontext.DB(ctx).
		Model(&entity.EntryRevocation{}).
		Where("campaign_id=?", campaignID).
		Select("COALESCE(MAX(sequence), 0)").
		Scan(&revocationSeq).Error
	if err != nil {
		return 0, err
	}

	return max(actionSeq, revocationSeq), nil
}
