package common

import (
	"context"
	"errors"

	"github.com/questx-lab/giveaway/internal/entity"
	"github.com/questx-lab/giveaway/internal/repository"
	"github.com/questx-lab/giveaway/pkg/xcontext"
)

// CampaignOwnerVerifier checks that the requesting user owns the campaign.
type CampaignOwnerVerifier struct {
	campaignRepo repository.CampaignRepository
}

func NewCampaignOwnerVerifier(campaignRepo repository.CampaignRepository) *CampaignOwnerVerifier {
	return &CampaignOwnerVerifier{campaignRepo: campaignRepo}
}

func (verifier *CampaignOwnerVerifier) Verify(ctx context.Context, campaignID string) (*entity.Campaign, error) {
	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return nil, errors.New("user is not authenticated")
	}

	campaign, err := verifier.campaignRepo.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}

	if campaign.OwnerID != userID {
		return nil, errors.New("user does not own the campaign")
	}

	return campaign, nil
}
