package testutil

import (
	"context"
	"time"

	"github.com/questx-lab/giveaway/internal/entity"
	"github.com/questx-lab/giveaway/pkg/crypto"
	"github.com/questx-lab/giveaway/pkg/xcontext"
)

var (
	Owner1 = "owner1"
	Owner2 = "owner2"
)

// DefaultEntryConfig enables signup, visit url, instagram and referral
// entries on a campaign that started an hour before Now and ends a day after
// it.
func DefaultEntryConfig() entity.EntryConfig {
	return entity.EntryConfig{
		Signup:          entity.ActionSetting{Enabled: true, Points: 1},
		VisitURL:        entity.ActionSetting{Enabled: true, Points: 2},
		FollowInstagram: entity.ActionSetting{Enabled: true, Points: 3},
		Referral:        entity.ActionSetting{Enabled: true, Points: 5},
		NumWinners:      1,
		StartTime:       Now.Add(-time.Hour),
		EndTime:         Now.Add(24 * time.Hour),
	}
}

// InsertCampaign writes a campaign owned by Owner1 and its first config
// version directly into the database.
func InsertCampaign(
	ctx context.Context,
	id string,
	status entity.CampaignStatus,
	cfg entity.EntryConfig,
) *entity.Campaign {
	createdAt := Now.Add(-2 * time.Hour)
	campaign := &entity.Campaign{
		Base:            entity.Base{ID: id, CreatedAt: createdAt},
		OwnerID:         Owner1,
		OwnerPlan:       entity.ProPlan,
		Name:            "Campaign " + id,
		Status:          status,
		StatusChangedAt: createdAt,
		ConfigVersion:   1,
		StartTime:       cfg.StartTime,
		EndTime:         cfg.EndTime,
		NumWinners:      cfg.NumWinners,
	}

	if err := xcontext.DB(ctx).Create(campaign).Error; err != nil {
		panic(err)
	}

	err := xcontext.DB(ctx).Create(&entity.CampaignConfig{
		ID:         id + "-v1",
		CampaignID: id,
		Version:    1,
		Config:     cfg,
		CreatedBy:  Owner1,
		CreatedAt:  createdAt,
	}).Error
	if err != nil {
		panic(err)
	}

	return campaign
}

func InsertEntrant(ctx context.Context, campaignID, id string, createdAt time.Time) *entity.Entrant {
	entrant := &entity.Entrant{
		Base:         entity.Base{ID: id, CreatedAt: createdAt},
		CampaignID:   campaignID,
		Email:        id + "@example.com",
		EmailHash:    crypto.SHA256([]byte(id + "@example.com")),
		ReferralCode: "code-" + id,
	}

	if err := xcontext.DB(ctx).Create(entrant).Error; err != nil {
		panic(err)
	}

	return entrant
}
