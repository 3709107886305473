package model

import "time"

// 処理済みwebhookイベントの台帳。
// session_idのunique制約で同じイベントの再配達を弾く。
type PaymentEvent struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID       string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"session_id"`
	EventType       string    `gorm:"type:varchar(100);not null" json:"event_type"`
	PaymentIntentID string    `gorm:"type:varchar(255)" json:"payment_intent_id"`
	ProcessedAt     time.Time `gorm:"not null;autoCreateTime" json:"processed_at"`
}
