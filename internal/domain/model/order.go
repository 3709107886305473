package model

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

const PaymentStatusCashOnDelivery = "CASH ON DELIVERY"

// 注文は商品1行＝1レコードのフラットなモデル。
// 親Orderと明細を分けない（複数商品の決済は複数行になる）。
type Order struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"not null;index" json:"user_id"`

	//公開用の注文ID（ORD-<uuid>）
	OrderID string `gorm:"type:varchar(40);not null;uniqueIndex" json:"order_id"`

	ProductID int64 `gorm:"not null;index" json:"product_id"`

	//注文時点のスナップショット（後から商品が編集されても変わらない）
	ProductName  string         `gorm:"type:varchar(255);not null" json:"product_name"`
	ProductImage pq.StringArray `gorm:"type:text[]" json:"product_image"`

	//CODは空文字、カード決済はpayment intentのID
	PaymentID     string `gorm:"type:varchar(255);not null;default:''" json:"payment_id"`
	PaymentStatus string `gorm:"type:varchar(50);not null" json:"payment_status"`

	DeliveryAddressID int64   `gorm:"not null" json:"delivery_address_id"`
	DeliveryAddress   Address `gorm:"foreignKey:DeliveryAddressID" json:"delivery_address"`

	SubTotalAmount decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"sub_total_amount"`
	TotalAmount    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total_amount"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
}
