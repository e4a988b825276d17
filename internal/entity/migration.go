package entity

import "time"

type Migration struct {
	Version   string `gorm:"primaryKey;size:16"`
	AppliedAt time.Time
}
