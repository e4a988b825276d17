package model

import "time"

const (
	EventActionRecorded  = "entry_action.recorded"
	EventActionRevoked   = "entry_action.revoked"
	EventWinnersSelected = "winners.selected"
)

// LedgerEvent is the payload of every outbox message.
type LedgerEvent struct {
	Type       string    `json:"type"`
	CampaignID string    `json:"campaign_id"`
	EntrantID  string    `json:"entrant_id,omitempty"`
	ActionID   string    `json:"action_id,omitempty"`
	Kind       string    `json:"kind,omitempty"`
	Delta      int64     `json:"delta,omitempty"`
	Sequence   int64     `json:"sequence,omitempty"`
	RecordID   string    `json:"record_id,omitempty"`
	Generation int       `json:"generation,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
