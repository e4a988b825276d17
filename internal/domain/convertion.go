package domain

import (
	"time"

	"github.com/questx-lab/giveaway/internal/domain/lifecycle"
	"github.com/questx-lab/giveaway/internal/entity"
	"github.com/questx-lab/giveaway/internal/model"
)

func convertActionSetting(s model.ActionSetting) entity.ActionSetting {
	return entity.ActionSetting{Enabled: s.Enabled, Points: s.Points}
}

func convertEntryConfig(cfg model.EntryConfig) entity.EntryConfig {
	return entity.EntryConfig{
		Signup:          convertActionSetting(cfg.Signup),
		VisitURL:        convertActionSetting(cfg.VisitURL),
		FollowInstagram: convertActionSetting(cfg.FollowInstagram),
		FollowFacebook:  convertActionSetting(cfg.FollowFacebook),
		FollowYoutube:   convertActionSetting(cfg.FollowYoutube),
		FollowTiktok:    convertActionSetting(cfg.FollowTiktok),
		ShareFacebook:   convertActionSetting(cfg.ShareFacebook),
		ShareTwitter:    convertActionSetting(cfg.ShareTwitter),
		Referral:        convertActionSetting(cfg.Referral),
		NumWinners:      cfg.NumWinners,
		StartTime:       cfg.StartTime,
		EndTime:         cfg.EndTime,
	}
}

func convertModelActionSetting(s entity.ActionSetting) model.ActionSetting {
	return model.ActionSetting{Enabled: s.Enabled, Points: s.Points}
}

func convertModelEntryConfig(cfg entity.EntryConfig) model.EntryConfig {
	return model.EntryConfig{
		Signup:          convertModelActionSetting(cfg.Signup),
		VisitURL:        convertModelActionSetting(cfg.VisitURL),
		FollowInstagram: convertModelActionSetting(cfg.FollowInstagram),
		FollowFacebook:  convertModelActionSetting(cfg.FollowFacebook),
		FollowYoutube:   convertModelActionSetting(cfg.FollowYoutube),
		FollowTiktok:    convertModelActionSetting(cfg.FollowTiktok),
		ShareFacebook:   convertModelActionSetting(cfg.ShareFacebook),
		ShareTwitter:    convertModelActionSetting(cfg.ShareTwitter),
		Referral:        convertModelActionSetting(cfg.Referral),
		NumWinners:      cfg.NumWinners,
		StartTime:       cfg.StartTime,
		EndTime:         cfg.EndTime,
	}
}

func convertCampaign(c *entity.Campaign, now time.Time) model.Campaign {
	if c == nil {
		return model.Campaign{}
	}

	return model.Campaign{
		ID:              c.ID,
		OwnerID:         c.OwnerID,
		OwnerPlan:       string(c.OwnerPlan),
		Name:            c.Name,
		Status:          string(lifecycle.EffectiveStatus(c, now)),
		StatusChangedAt: c.StatusChangedAt,
		ConfigVersion:   c.ConfigVersion,
		StartTime:       c.StartTime,
		EndTime:         c.EndTime,
		NumWinners:      c.NumWinners,
		CreatedAt:       c.CreatedAt,
	}
}

func convertCampaignConfig(c *entity.CampaignConfig) model.CampaignConfig {
	if c == nil {
		return model.CampaignConfig{}
	}

	return model.CampaignConfig{
		Version:   c.Version,
		Config:    convertModelEntryConfig(c.Config),
		CreatedBy: c.CreatedBy,
		CreatedAt: c.CreatedAt,
	}
}

func convertEntrant(e *entity.Entrant) model.Entrant {
	if e == nil {
		return model.Entrant{}
	}

	return model.Entrant{
		ID:           e.ID,
		CampaignID:   e.CampaignID,
		ReferralCode: e.ReferralCode,
		ReferrerID:   e.ReferrerID.String,
		CreatedAt:    e.CreatedAt,
	}
}

func convertEntryAction(a *entity.EntryAction, revoked bool) model.EntryAction {
	if a == nil {
		return model.EntryAction{}
	}

	return model.EntryAction{
		ID:                a.ID,
		Sequence:          a.Sequence,
		EntrantID:         a.EntrantID,
		Kind:              string(a.Kind),
		ReferredEntrantID: a.ReferredEntrantID.String,
		ConfigVersion:     a.ConfigVersion,
		Points:            a.Points,
		ProofRef:          a.ProofRef,
		OccurredAt:        a.OccurredAt,
		Revoked:           revoked,
	}
}

func convertWinnerRecord(r *entity.WinnerRecord) model.WinnerRecord {
	if r == nil {
		return model.WinnerRecord{}
	}

	winners := []model.Winner{}
	for _, w := range r.Winners {
		winners = append(winners, model.Winner{
			EntrantID: w.EntrantID,
			Rank:      w.Rank,
			Tickets:   w.Tickets,
		})
	}

	return model.WinnerRecord{
		ID:              r.ID,
		CampaignID:      r.CampaignID,
		Generation:      r.Generation,
		Winners:         winners,
		NumWinners:      r.NumWinners,
		Seed:            r.Seed,
		SnapshotVersion: r.SnapshotVersion,
		SnapshotHash:    r.SnapshotHash,
		PoolSize:        r.PoolSize,
		TotalTickets:    r.TotalTickets,
		SelectedBy:      r.SelectedBy,
		SelectedAt:      r.SelectedAt,
		SupersedesID:    r.SupersedesID.String,
		Reason:          r.Reason,
		Excluded:        r.Excluded,
	}
}
