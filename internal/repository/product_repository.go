package repository

import (
	"context"

	"app/internal/domain/model"
)

type ProductListQuery struct {
	Page       int
	Limit      int
	CategoryID *int64
	Q          string
}

type ProductRepository interface {
	FindByID(ctx context.Context, productID int64) (model.Product, error)
	FindByIDs(ctx context.Context, productIDs []int64) ([]model.Product, error)
	ListPublished(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
}
