package entity

import (
	"database/sql"
	"time"

	"github.com/questx-lab/giveaway/pkg/enum"
)

type CampaignStatus string

var (
	CampaignDraft           = enum.New(CampaignStatus("draft"))
	CampaignScheduled       = enum.New(CampaignStatus("scheduled"))
	CampaignActive          = enum.New(CampaignStatus("active"))
	CampaignEnded           = enum.New(CampaignStatus("ended"))
	CampaignWinnersSelected = enum.New(CampaignStatus("winners_selected"))
	CampaignArchived        = enum.New(CampaignStatus("archived"))
	CampaignCancelled       = enum.New(CampaignStatus("cancelled"))
)

func CampaignStatuses() []CampaignStatus {
	return enum.Values[CampaignStatus]()
}

type OwnerPlan string

var (
	FreePlan = enum.New(OwnerPlan("free"))
	ProPlan  = enum.New(OwnerPlan("pro"))
)

type Campaign struct {
	Base

	OwnerID   string `gorm:"index;size:64"`
	OwnerPlan OwnerPlan
	Name      string

	Status          CampaignStatus `gorm:"index;size:32"`
	StatusChangedAt time.Time

	// ConfigVersion is the latest version in campaign_configs. StartTime,
	// EndTime and NumWinners mirror that version for scheduling queries.
	ConfigVersion int
	StartTime     time.Time `gorm:"index"`
	EndTime       time.Time `gorm:"index"`
	NumWinners    int

	SelectionClaimedAt sql.NullTime
}
