package usecase

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// DiscountedPrice は割引後の単価を返す。
// 割引額は ceil(price * discountPercent / 100)。
// 入力は呼び出し側が正の価格と0〜100の割引率を渡す約束。
func DiscountedPrice(price decimal.Decimal, discountPercent int64) decimal.Decimal {
	discountAmount := price.Mul(decimal.NewFromInt(discountPercent)).Div(hundred).Ceil()
	return price.Sub(discountAmount)
}
