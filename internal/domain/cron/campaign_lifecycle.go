package cron

import (
	"context"
	"errors"
	"time"

	"github.com/questx-lab/giveaway/internal/entity"
	"github.com/questx-lab/giveaway/internal/repository"
	"github.com/questx-lab/giveaway/pkg/xcontext"
	"gorm.io/gorm"
)

// CampaignLifecycleCronJob persists the start and end transitions of
// campaigns. Reads never depend on it since the effective status is derived
// from the schedule.
type CampaignLifecycleCronJob struct {
	campaignRepo repository.CampaignRepository
	interval     time.Duration
}

func NewCampaignLifecycleCronJob(
	campaignRepo repository.CampaignRepository,
	interval time.Duration,
) *CampaignLifecycleCronJob {
	return &CampaignLifecycleCronJob{campaignRepo: campaignRepo, interval: interval}
}

func (job *CampaignLifecycleCronJob) Do(ctx context.Context) {
	now := xcontext.Now(ctx)

	shouldStart, err := job.campaignRepo.GetShouldStart(ctx, now)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get campaigns which should start: %v", err)
		return
	}

	for _, c := range shouldStart {
		if !now.Before(c.EndTime) {
			// It will be ended below.
			continue
		}

		job.transition(ctx, c.ID, []entity.CampaignStatus{entity.CampaignScheduled}, entity.CampaignActive, now)
	}

	shouldEnd, err := job.campaignRepo.GetShouldEnd(ctx, now)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get campaigns which should end: %v", err)
		return
	}

	for _, c := range shouldEnd {
		job.transition(ctx, c.ID,
			[]entity.CampaignStatus{entity.CampaignScheduled, entity.CampaignActive}, entity.CampaignEnded, now)
	}
}

func (job *CampaignLifecycleCronJob) transition(
	ctx context.Context,
	campaignID string,
	from []entity.CampaignStatus,
	to entity.CampaignStatus,
	now time.Time,
) {
	err := job.campaignRepo.Transition(ctx, campaignID, from, to, now)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Cancelled or moved by someone else in the meantime.
			return
		}

		xcontext.Logger(ctx).Errorf("Cannot move campaign %s to %s: %v", campaignID, to, err)
		return
	}

	xcontext.Logger(ctx).Infof("Campaign %s is %s", campaignID, to)
}

func (job *CampaignLifecycleCronJob) RunNow() bool {
	return true
}

func (job *CampaignLifecycleCronJob) Next() time.Time {
	return time.Now().Add(job.interval)
}
