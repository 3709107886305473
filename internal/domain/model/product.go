package model

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int64          `gorm:"primaryKey;autoIncrement" json:"id"`
	CategoryID  int64          `gorm:"not null;index" json:"category_id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Image       pq.StringArray `gorm:"type:text[]" json:"image"`
	Description string         `gorm:"type:text" json:"description"`
	Unit        string         `gorm:"type:varchar(50)" json:"unit"`

	//価格は主要通貨単位（小数あり）
	Price decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`

	//割引率（0〜100のパーセント）
	Discount int64 `gorm:"not null;default:0" json:"discount"`

	IsPublished bool      `gorm:"not null;default:true" json:"is_published"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
