package entity

import "time"

// ReferralEdge links a referred entrant to its only referrer. The primary key
// on (campaign, referred) makes the first writer win.
type ReferralEdge struct {
	CampaignID string `gorm:"primaryKey;size:64"`
	ReferredID string `gorm:"primaryKey;size:64"`
	ReferrerID string `gorm:"size:64;index"`
	ActionID   string `gorm:"size:64"`
	CreatedAt  time.Time
}
