package model

import "time"

// 配送先住所
type Address struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      int64  `gorm:"not null;index" json:"user_id"`
	AddressLine string `gorm:"type:varchar(255);not null" json:"address_line"`
	City        string `gorm:"type:varchar(255);not null" json:"city"`
	State       string `gorm:"type:varchar(255)" json:"state"`
	Pincode     string `gorm:"type:varchar(20);not null" json:"pincode"`
	Country     string `gorm:"type:varchar(100);not null" json:"country"`
	Mobile      string `gorm:"type:varchar(30)" json:"mobile"`

	//削除の代わりに無効化する
	Status bool `gorm:"not null;default:true" json:"status"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
