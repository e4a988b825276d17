// Package lifecycle holds the campaign state machine. Every function is pure
// and takes the current time as an argument.
package lifecycle

import (
	"fmt"
	"time"

	"github.com/questx-lab/giveaway/internal/entity"
	"golang.org/x/exp/slices"
)

var transitions = map[entity.CampaignStatus][]entity.CampaignStatus{
	entity.CampaignDraft:           {entity.CampaignScheduled, entity.CampaignActive, entity.CampaignCancelled},
	entity.CampaignScheduled:       {entity.CampaignActive, entity.CampaignEnded, entity.CampaignCancelled},
	entity.CampaignActive:          {entity.CampaignEnded, entity.CampaignCancelled},
	entity.CampaignEnded:           {entity.CampaignWinnersSelected, entity.CampaignCancelled},
	entity.CampaignWinnersSelected: {entity.CampaignArchived},
}

func CanTransition(from, to entity.CampaignStatus) bool {
	return slices.Contains(transitions[from], to)
}

// Sources returns every status which can move to the given status.
func Sources(to entity.CampaignStatus) []entity.CampaignStatus {
	result := []entity.CampaignStatus{}
	for _, from := range entity.CampaignStatuses() {
		if CanTransition(from, to) {
			result = append(result, from)
		}
	}

	return result
}

// EffectiveStatus derives the status from the schedule, so a campaign is
// considered started or ended as soon as its time has come even if the
// stored status has not been moved yet.
func EffectiveStatus(c *entity.Campaign, now time.Time) entity.CampaignStatus {
	switch c.Status {
	case entity.CampaignScheduled:
		if !now.Before(c.EndTime) {
			return entity.CampaignEnded
		}

		if !now.Before(c.StartTime) {
			return entity.CampaignActive
		}
	case entity.CampaignActive:
		if !now.Before(c.EndTime) {
			return entity.CampaignEnded
		}
	}

	return c.Status
}

// IsOpen reports whether the campaign accepts ledger writes of any kind at
// now, including referral credits inside the grace window.
func IsOpen(c *entity.Campaign, now time.Time, grace time.Duration) bool {
	switch EffectiveStatus(c, now) {
	case entity.CampaignActive:
		return true
	case entity.CampaignEnded:
		return InGraceWindow(c, now, grace)
	}

	return false
}

// InGraceWindow reports whether now is after the end of the campaign but
// still inside the referral grace window.
func InGraceWindow(c *entity.Campaign, now time.Time, grace time.Duration) bool {
	if grace <= 0 || now.Before(c.EndTime) {
		return false
	}

	return !now.After(c.EndTime.Add(grace))
}

// SelectionOpensAt is the earliest time winners can be selected.
func SelectionOpensAt(c *entity.Campaign, grace time.Duration) time.Time {
	if grace <= 0 {
		return c.EndTime
	}

	return c.EndTime.Add(grace)
}

// ValidatePoints rejects settings which would take tickets away when the
// action is recorded.
func ValidatePoints(cfg entity.EntryConfig) string {
	for _, kind := range entity.ActionKinds() {
		if s, _ := cfg.Setting(kind); s.Points < 0 {
			return fmt.Sprintf("Points of %s must not be negative", kind)
		}
	}

	return ""
}

// ValidateSchedule checks the configuration before a campaign leaves draft.
func ValidateSchedule(cfg entity.EntryConfig, now time.Time) string {
	if msg := ValidatePoints(cfg); msg != "" {
		return msg
	}

	if !cfg.EndTime.After(cfg.StartTime) {
		return "End time must be after start time"
	}

	if !cfg.EndTime.After(now) {
		return "End time must be in the future"
	}

	if len(cfg.EnabledKinds()) == 0 {
		return "At least one entry action must be enabled"
	}

	if cfg.NumWinners < 1 {
		return "The number of winners must be at least 1"
	}

	return ""
}

// StatusAfterSchedule returns the status a campaign gets when it is
// scheduled at now.
func StatusAfterSchedule(cfg entity.EntryConfig, now time.Time) entity.CampaignStatus {
	if cfg.StartTime.After(now) {
		return entity.CampaignScheduled
	}

	return entity.CampaignActive
}
