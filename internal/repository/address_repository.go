package repository

import (
	"context"

	"app/internal/domain/model"
)

type AddressRepository interface {
	Create(ctx context.Context, addr model.Address) (int64, error)
	FindByID(ctx context.Context, addressID int64) (model.Address, error)
	ListByUserID(ctx context.Context, userID int64) ([]model.Address, error)
	Update(ctx context.Context, addr model.Address) error
	//物理削除はしない（status=falseにする）
	Disable(ctx context.Context, addressID int64, userID int64) error
}
