package repository

import (
	"context"

	"app/internal/domain/model"
)

type CartProductRepository interface {
	//同一商品は数量を加算する
	UpsertAddQuantity(ctx context.Context, userID int64, productID int64, quantity int64) error
	ListByUserID(ctx context.Context, userID int64) ([]model.CartProduct, error)
	FindByID(ctx context.Context, cartProductID int64) (model.CartProduct, error)
	UpdateQuantity(ctx context.Context, cartProductID int64, userID int64, quantity int64) error
	DeleteByID(ctx context.Context, cartProductID int64, userID int64) error
	DeleteByUserID(ctx context.Context, userID int64) error
}
