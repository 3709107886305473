package model

import "time"

// カート明細（user×productで1行）
type CartProduct struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64 `gorm:"not null;index:idx_cart_user_product,unique" json:"user_id"`
	ProductID int64 `gorm:"not null;index:idx_cart_user_product,unique" json:"product_id"`

	//quantityは必ず1以上
	Quantity int64 `gorm:"not null" json:"quantity"`

	Product   Product   `gorm:"foreignKey:ProductID" json:"product"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
