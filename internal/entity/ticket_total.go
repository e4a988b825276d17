package entity

import "time"

// TicketTotal caches the sum of valid action points of an entrant. It is
// always rebuildable from entry_actions and entry_revocations.
type TicketTotal struct {
	CampaignID string `gorm:"primaryKey;size:64"`
	EntrantID  string `gorm:"primaryKey;size:64"`
	Tickets    int64
	UpdatedAt  time.Time
}
