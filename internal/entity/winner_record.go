package entity

import (
	"database/sql"
	"time"
)

type Winner struct {
	EntrantID string `json:"entrant_id"`
	Rank      int    `json:"rank"`
	Tickets   int64  `json:"tickets"`
}

// WinnerRecord is the immutable output of a draw. Generation 1 is the
// regular selection; higher generations come from administrative redraws and
// reference the record they supersede.
type WinnerRecord struct {
	ID         string `gorm:"primaryKey;size:64"`
	CampaignID string `gorm:"size:64;uniqueIndex:idx_winner_records_generation,priority:1"`
	Generation int    `gorm:"uniqueIndex:idx_winner_records_generation,priority:2"`

	Winners    Array[Winner] `gorm:"type:text"`
	NumWinners int
	Seed       int64

	SnapshotVersion int64
	SnapshotHash    string
	PoolSize        int
	TotalTickets    int64

	SelectedBy string
	SelectedAt time.Time

	SupersedesID sql.NullString `gorm:"size:64"`
	Reason       string
	Excluded     Array[string] `gorm:"type:text"`
}
