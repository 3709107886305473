package repository

import (
	"context"

	"app/internal/domain/model"
)

type OrderRepository interface {
	CreateBulk(ctx context.Context, orders []model.Order) error
	//新しい順（created_at desc, id desc）で住所も展開して返す
	ListByUserID(ctx context.Context, userID int64) ([]model.Order, error)
	CountByUserID(ctx context.Context, userID int64) (int64, error)
}
