package model

import "time"

// refresh tokenは平文を保存しない（sha256 hashのみ）
type RefreshToken struct {
	ID        string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID    int64      `gorm:"not null;index" json:"user_id"`
	TokenHash string     `gorm:"type:varchar(64);not null;uniqueIndex" json:"-"`
	UserAgent string     `gorm:"type:varchar(255)" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	UsedAt    *time.Time `json:"-"`
	CreatedAt time.Time  `gorm:"not null;autoCreateTime" json:"created_at"`
}
