package entity

import (
	"database/sql"
	"time"

	"github.com/questx-lab/giveaway/pkg/enum"
)

type ActionKind string

var (
	Signup          = enum.New(ActionKind("signup"))
	VisitURL        = enum.New(ActionKind("visit_url"))
	FollowInstagram = enum.New(ActionKind("follow_instagram"))
	FollowFacebook  = enum.New(ActionKind("follow_facebook"))
	FollowYoutube   = enum.New(ActionKind("follow_youtube"))
	FollowTiktok    = enum.New(ActionKind("follow_tiktok"))
	ShareFacebook   = enum.New(ActionKind("share_facebook"))
	ShareTwitter    = enum.New(ActionKind("share_twitter"))
	ReferralCredit  = enum.New(ActionKind("referral_credit"))
)

func ActionKinds() []ActionKind {
	return enum.Values[ActionKind]()
}

func (k ActionKind) IsReferral() bool {
	return k == ReferralCredit
}

// IsSocial reports whether the action needs a social platform capability.
func (k ActionKind) IsSocial() bool {
	switch k {
	case FollowInstagram, FollowFacebook, FollowYoutube, FollowTiktok, ShareFacebook, ShareTwitter:
		return true
	}

	return false
}

// SingleCreditKey is the credit key of every non-referral action. It makes
// the unique index allow one credit per (entrant, kind).
const SingleCreditKey = "-"

// EntryAction is an append-only ledger row. Rows are never updated or
// deleted; see EntryRevocation.
type EntryAction struct {
	ID       string `gorm:"primaryKey;size:64"`
	Sequence int64  `gorm:"uniqueIndex"`

	CampaignID string     `gorm:"size:64;uniqueIndex:idx_entry_actions_credit,priority:1;index:idx_entry_actions_campaign"`
	EntrantID  string     `gorm:"size:64;uniqueIndex:idx_entry_actions_credit,priority:2"`
	Kind       ActionKind `gorm:"size:32;uniqueIndex:idx_entry_actions_credit,priority:3"`
	CreditKey  string     `gorm:"size:64;uniqueIndex:idx_entry_actions_credit,priority:4"`

	DedupKey          string         `gorm:"size:128;index"`
	ReferredEntrantID sql.NullString `gorm:"size:64"`

	ConfigVersion int
	Points        int
	ProofRef      string
	OccurredAt    time.Time
	CreatedAt     time.Time
}

type EntryRevocation struct {
	ID       string `gorm:"primaryKey;size:64"`
	Sequence int64  `gorm:"uniqueIndex"`

	CampaignID string `gorm:"size:64;index"`
	ActionID   string `gorm:"size:64;uniqueIndex"`
	EntrantID  string `gorm:"size:64"`
	Points     int
	Reason     string
	RevokedBy  string
	CreatedAt  time.Time
}
