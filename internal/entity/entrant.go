package entity

import "database/sql"

type Entrant struct {
	Base

	CampaignID string `gorm:"size:64;uniqueIndex:idx_entrants_email,priority:1;uniqueIndex:idx_entrants_code,priority:1"`

	// Email is normalized. EmailHash is the sha256 of the normalized email
	// and is what uniqueness is enforced on.
	Email     string
	EmailHash string `gorm:"size:64;uniqueIndex:idx_entrants_email,priority:2"`

	ReferralCode string         `gorm:"size:32;uniqueIndex:idx_entrants_code,priority:2"`
	ReferrerID   sql.NullString `gorm:"size:64;index"`
}
