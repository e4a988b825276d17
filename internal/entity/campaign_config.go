package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type ActionSetting struct {
	Enabled bool `json:"enabled"`
	Points  int  `json:"points"`
}

// EntryConfig is the typed configuration document of a campaign. Every
// entry action has its own named field.
type EntryConfig struct {
	Signup          ActionSetting `json:"signup"`
	VisitURL        ActionSetting `json:"visit_url"`
	FollowInstagram ActionSetting `json:"follow_instagram"`
	FollowFacebook  ActionSetting `json:"follow_facebook"`
	FollowYoutube   ActionSetting `json:"follow_youtube"`
	FollowTiktok    ActionSetting `json:"follow_tiktok"`
	ShareFacebook   ActionSetting `json:"share_facebook"`
	ShareTwitter    ActionSetting `json:"share_twitter"`
	Referral        ActionSetting `json:"referral"`

	NumWinners int       `json:"num_winners"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
}

// Setting returns the setting of the given action kind.
func (c EntryConfig) Setting(kind ActionKind) (ActionSetting, bool) {
	switch kind {
	case Signup:
		return c.Signup, true
	case VisitURL:
		return c.VisitURL, true
	case FollowInstagram:
		return c.FollowInstagram, true
	case FollowFacebook:
		return c.FollowFacebook, true
	case FollowYoutube:
		return c.FollowYoutube, true
	case FollowTiktok:
		return c.FollowTiktok, true
	case ShareFacebook:
		return c.ShareFacebook, true
	case ShareTwitter:
		return c.ShareTwitter, true
	case ReferralCredit:
		return c.Referral, true
	}

	return ActionSetting{}, false
}

func (c EntryConfig) EnabledKinds() []ActionKind {
	kinds := []ActionKind{}
	for _, kind := range ActionKinds() {
		if s, _ := c.Setting(kind); s.Enabled {
			kinds = append(kinds, kind)
		}
	}

	return kinds
}

func (c *EntryConfig) Scan(obj any) error {
	switch t := obj.(type) {
	case string:
		return json.Unmarshal([]byte(t), c)
	case []byte:
		return json.Unmarshal(t, c)
	}

	return fmt.Errorf("cannot scan invalid data type %T", obj)
}

func (c EntryConfig) Value() (driver.Value, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}

	return string(b), nil
}

// CampaignConfig is one immutable version of a campaign configuration.
type CampaignConfig struct {
	ID         string      `gorm:"primaryKey;size:64"`
	CampaignID string      `gorm:"size:64;uniqueIndex:idx_campaign_configs_version,priority:1"`
	Version    int         `gorm:"uniqueIndex:idx_campaign_configs_version,priority:2"`
	Config     EntryConfig `gorm:"type:text"`
	CreatedBy  string
	CreatedAt  time.Time
}
