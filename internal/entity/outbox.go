package entity

import (
	"database/sql"
	"time"

	"github.com/questx-lab/giveaway/pkg/enum"
)

type OutboxStatus string

var (
	OutboxPending   = enum.New(OutboxStatus("pending"))
	OutboxPublished = enum.New(OutboxStatus("published"))
)

type OutboxMessage struct {
	ID          string       `gorm:"primaryKey;size:64"`
	Topic       string       `gorm:"size:128"`
	Key         string       `gorm:"size:64"`
	Payload     []byte
	Status      OutboxStatus `gorm:"size:16;index"`
	CreatedAt   time.Time    `gorm:"index"`
	PublishedAt sql.NullTime
}
