package domain

import (
	"context"
	"testing"
	"time"

	"github.com/questx-lab/giveaway/internal/entity"
	"github.com/questx-lab/giveaway/internal/model"
	"github.com/questx-lab/giveaway/pkg/errorx"
	"github.com/questx-lab/giveaway/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func modelConfig(cfg entity.EntryConfig) model.EntryConfig {
	return convertModelEntryConfig(cfg)
}

func Test_campaignDomain_Create(t *testing.T) {
	freeConfig := testutil.DefaultEntryConfig()
	freeConfig.Referral.Enabled = false
	freeConfig.FollowInstagram.Enabled = false

	negativeConfig := freeConfig
	negativeConfig.VisitURL.Points = -5

	tests := []struct {
		name    string
		userID  string
		req     *model.CreateCampaignRequest
		wantErr error
	}{
		{
			name:   "happy case",
			userID: testutil.Owner1,
			req: &model.CreateCampaignRequest{
				Name:      "Summer giveaway",
				OwnerPlan: string(entity.ProPlan),
				Config:    modelConfig(testutil.DefaultEntryConfig()),
			},
		},
		{
			name:   "free plan without premium actions",
			userID: testutil.Owner1,
			req: &model.CreateCampaignRequest{
				Name:      "Free giveaway",
				OwnerPlan: string(entity.FreePlan),
				Config:    modelConfig(freeConfig),
			},
		},
		{
			name:   "free plan with social action",
			userID: testutil.Owner1,
			req: &model.CreateCampaignRequest{
				Name:      "Free giveaway",
				OwnerPlan: string(entity.FreePlan),
				Config:    modelConfig(testutil.DefaultEntryConfig()),
			},
			wantErr: errorx.New(errorx.PermissionDenied, "follow_instagram entries require a pro plan"),
		},
		{
			name:   "negative points",
			userID: testutil.Owner1,
			req: &model.CreateCampaignRequest{
				Name:      "Free giveaway",
				OwnerPlan: string(entity.FreePlan),
				Config:    modelConfig(negativeConfig),
			},
			wantErr: errorx.New(errorx.InvalidConfig, "Points of visit_url must not be negative"),
		},
		{
			name:   "invalid plan",
			userID: testutil.Owner1,
			req: &model.CreateCampaignRequest{
				Name:      "Giveaway",
				OwnerPlan: "enterprise",
				Config:    modelConfig(testutil.DefaultEntryConfig()),
			},
			wantErr: errorx.New(errorx.BadRequest, "Invalid owner plan"),
		},
		{
			name:   "empty name",
			userID: testutil.Owner1,
			req: &model.CreateCampaignRequest{
				OwnerPlan: string(entity.ProPlan),
			},
			wantErr: errorx.New(errorx.BadRequest, "Not allow an empty name"),
		},
		{
			name: "not logged in",
			req: &model.CreateCampaignRequest{
				Name:      "Giveaway",
				OwnerPlan: string(entity.ProPlan),
			},
			wantErr: errorx.New(errorx.Unauthenticated, "Need to login to create campaign"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSuite(t)
			ctx := testutil.NewMockContextWithUserID(s.ctx, tt.userID)

			got, err := s.campaignDomain.Create(ctx, tt.req)
			if tt.wantErr != nil {
				require.Equal(t, tt.wantErr, err)
				return
			}

			require.NoError(t, err)
			require.Equal(t, 1, got.Version)

			campaign, err := s.campaignRepo.GetByID(s.ctx, got.ID)
			require.NoError(t, err)
			require.Equal(t, entity.CampaignDraft, campaign.Status)
			require.Equal(t, testutil.Owner1, campaign.OwnerID)

			cfg, err := s.campaignRepo.GetConfig(s.ctx, got.ID, 1)
			require.NoError(t, err)
			require.True(t, cfg.CreatedAt.Equal(testutil.Now))
		})
	}
}

func Test_campaignDomain_Schedule(t *testing.T) {
	future := testutil.DefaultEntryConfig()
	future.StartTime = testutil.Now.Add(time.Hour)

	invalid := testutil.DefaultEntryConfig()
	invalid.EndTime = invalid.StartTime

	nothingEnabled := testutil.DefaultEntryConfig()
	nothingEnabled.Signup.Enabled = false
	nothingEnabled.VisitURL.Enabled = false
	nothingEnabled.FollowInstagram.Enabled = false
	nothingEnabled.Referral.Enabled = false

	negative := testutil.DefaultEntryConfig()
	negative.Referral.Points = -1

	tests := []struct {
		name    string
		status  entity.CampaignStatus
		cfg     entity.EntryConfig
		ctx     func(s *suite) context.Context
		want    string
		wantErr error
	}{
		{
			name:   "start in the future",
			status: entity.CampaignDraft,
			cfg:    future,
			want:   string(entity.CampaignScheduled),
		},
		{
			name:   "start in the past",
			status: entity.CampaignDraft,
			cfg:    testutil.DefaultEntryConfig(),
			want:   string(entity.CampaignActive),
		},
		{
			name:    "end before start",
			status:  entity.CampaignDraft,
			cfg:     invalid,
			wantErr: errorx.New(errorx.InvalidConfig, "End time must be after start time"),
		},
		{
			name:    "no entry action",
			status:  entity.CampaignDraft,
			cfg:     nothingEnabled,
			wantErr: errorx.New(errorx.InvalidConfig, "At least one entry action must be enabled"),
		},
		{
			name:    "negative points",
			status:  entity.CampaignDraft,
			cfg:     negative,
			wantErr: errorx.New(errorx.InvalidConfig, "Points of referral_credit must not be negative"),
		},
		{
			name:    "not a draft",
			status:  entity.CampaignActive,
			cfg:     testutil.DefaultEntryConfig(),
			wantErr: errorx.New(errorx.InvalidTransition, "Only a draft campaign can be scheduled"),
		},
		{
			name:   "not the owner",
			status: entity.CampaignDraft,
			cfg:    testutil.DefaultEntryConfig(),
			ctx: func(s *suite) context.Context {
				return testutil.NewMockContextWithUserID(s.ctx, testutil.Owner2)
			},
			wantErr: errorx.New(errorx.PermissionDenied, "Permission denied"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSuite(t)
			testutil.InsertCampaign(s.ctx, "c1", tt.status, tt.cfg)

			ctx := s.owner()
			if tt.ctx != nil {
				ctx = tt.ctx(s)
			}

			got, err := s.campaignDomain.Schedule(ctx, &model.ScheduleCampaignRequest{CampaignID: "c1"})
			if tt.wantErr != nil {
				require.Equal(t, tt.wantErr, err)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.want, got.Status)

			campaign, err := s.campaignRepo.GetByID(s.ctx, "c1")
			require.NoError(t, err)
			require.Equal(t, tt.want, string(campaign.Status))
		})
	}
}

func Test_campaignDomain_UpdateConfig(t *testing.T) {
	s := newSuite(t)
	testutil.InsertCampaign(s.ctx, "c1", entity.CampaignActive, testutil.DefaultEntryConfig())

	cfg := testutil.DefaultEntryConfig()
	cfg.VisitURL.Points = 10
	cfg.NumWinners = 3

	got, err := s.campaignDomain.UpdateConfig(s.owner(), &model.UpdateCampaignConfigRequest{
		CampaignID: "c1",
		Config:     modelConfig(cfg),
	})
	require.NoError(t, err)
	require.Equal(t, 2, got.Version)

	campaign, err := s.campaignRepo.GetByID(s.ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, 2, campaign.ConfigVersion)
	require.Equal(t, 3, campaign.NumWinners)

	resp, err := s.campaignDomain.Get(s.ctx, &model.GetCampaignRequest{CampaignID: "c1", Version: 1})
	require.NoError(t, err)
	require.Equal(t, 2, resp.Config.Config.VisitURL.Points)

	resp, err = s.campaignDomain.Get(s.ctx, &model.GetCampaignRequest{CampaignID: "c1"})
	require.NoError(t, err)
	require.Equal(t, 10, resp.Config.Config.VisitURL.Points)
	require.Equal(t, 2, resp.Campaign.ConfigVersion)

	// Once the campaign has ended, its config is frozen.
	s.clock.Advance(25 * time.Hour)
	_, err = s.campaignDomain.UpdateConfig(s.owner(), &model.UpdateCampaignConfigRequest{
		CampaignID: "c1",
		Config:     modelConfig(cfg),
	})
	require.True(t, errorx.Is(err, errorx.InvalidTransition))
}

func Test_campaignDomain_UpdateConfig_Invalid(t *testing.T) {
	s := newSuite(t)
	testutil.InsertCampaign(s.ctx, "c1", entity.CampaignActive, testutil.DefaultEntryConfig())

	negative := testutil.DefaultEntryConfig()
	negative.VisitURL.Points = -5
	_, err := s.campaignDomain.UpdateConfig(s.owner(), &model.UpdateCampaignConfigRequest{
		CampaignID: "c1",
		Config:     modelConfig(negative),
	})
	require.Equal(t, errorx.New(errorx.InvalidConfig, "Points of visit_url must not be negative"), err)

	later := testutil.DefaultEntryConfig()
	later.StartTime = testutil.Now.Add(time.Hour)
	_, err = s.campaignDomain.UpdateConfig(s.owner(), &model.UpdateCampaignConfigRequest{
		CampaignID: "c1",
		Config:     modelConfig(later),
	})
	require.Equal(t, errorx.New(errorx.InvalidConfig, "Cannot change the start time of an active campaign"), err)

	campaign, err := s.campaignRepo.GetByID(s.ctx, "c1")
	require.NoError(t, err)
	require.Equal(t, 1, campaign.ConfigVersion)

	// A scheduled campaign may still move its start.
	testutil.InsertCampaign(s.ctx, "c2", entity.CampaignScheduled, later)
	laterStill := later
	laterStill.StartTime = testutil.Now.Add(2 * time.Hour)
	got, err := s.campaignDomain.UpdateConfig(s.owner(), &model.UpdateCampaignConfigRequest{
		CampaignID: "c2",
		Config:     modelConfig(laterStill),
	})
	require.NoError(t, err)
	require.Equal(t, 2, got.Version)
}

func Test_campaignDomain_CancelAndArchive(t *testing.T) {
	s := newSuite(t)
	testutil.InsertCampaign(s.ctx, "active", entity.CampaignActive, testutil.DefaultEntryConfig())
	testutil.InsertCampaign(s.ctx, "selected", entity.CampaignWinnersSelected, testutil.DefaultEntryConfig())

	_, err := s.campaignDomain.Cancel(s.owner(), &model.CancelCampaignRequest{CampaignID: "active"})
	require.NoError(t, err)

	resp, err := s.campaignDomain.Get(s.ctx, &model.GetCampaignRequest{CampaignID: "active"})
	require.NoError(t, err)
	require.Equal(t, string(entity.CampaignCancelled), resp.Campaign.Status)

	_, err = s.campaignDomain.Cancel(s.owner(), &model.CancelCampaignRequest{CampaignID: "selected"})
	require.True(t, errorx.Is(err, errorx.InvalidTransition))

	_, err = s.campaignDomain.Archive(s.owner(), &model.ArchiveCampaignRequest{CampaignID: "active"})
	require.True(t, errorx.Is(err, errorx.InvalidTransition))

	_, err = s.campaignDomain.Archive(s.owner(), &model.ArchiveCampaignRequest{CampaignID: "selected"})
	require.NoError(t, err)

	_, err = s.campaignDomain.Cancel(s.owner(), &model.CancelCampaignRequest{CampaignID: "unknown"})
	require.Equal(t, errorx.New(errorx.NotFound, "Not found campaign"), err)
}

func Test_campaignDomain_GetMyCampaigns(t *testing.T) {
	s := newSuite(t)
	testutil.InsertCampaign(s.ctx, "c1", entity.CampaignActive, testutil.DefaultEntryConfig())
	testutil.InsertCampaign(s.ctx, "c2", entity.CampaignDraft, testutil.DefaultEntryConfig())

	resp, err := s.campaignDomain.GetMyCampaigns(s.owner(), &model.GetMyCampaignsRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Campaigns, 2)

	resp, err = s.campaignDomain.GetMyCampaigns(
		testutil.NewMockContextWithUserID(s.ctx, testutil.Owner2), &model.GetMyCampaignsRequest{})
	require.NoError(t, err)
	require.Empty(t, resp.Campaigns)

	_, err = s.campaignDomain.GetMyCampaigns(s.owner(), &model.GetMyCampaignsRequest{Limit: 1000})
	require.True(t, errorx.Is(err, errorx.BadRequest))
}
