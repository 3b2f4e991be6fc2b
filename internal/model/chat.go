package model

import "time"

// Chat is a Telegram chat that has talked to the bot. Rows are created on
// first contact and never expire, so scheduled digests keep reaching their
// recipients across restarts.
type Chat struct {
	ID        uint  `gorm:"primaryKey"`
	ChatID    int64 `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
}
