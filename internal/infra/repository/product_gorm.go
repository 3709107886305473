package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

func (r *ProductGormRepository) FindByID(ctx context.Context, productID int64) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where("id = ?", productID).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

func (r *ProductGormRepository) FindByIDs(ctx context.Context, productIDs []int64) ([]model.Product, error) {
	var items []model.Product
	if len(productIDs) == 0 {
		return []model.Product{}, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", productIDs).Find(&items).Error
	if err != nil {
		return []model.Product{}, err
	}
	return items, nil
}

func (r *ProductGormRepository) ListPublished(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Product{}).Where("is_published = ?", true)

	//category絞り込み
	if q.CategoryID != nil {
		query = query.Where("category_id = ?", *q.CategoryID)
	}

	//名前の部分一致検索
	if q.Q != "" {
		query = query.Where("name ILIKE ?", "%"+q.Q+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return []model.Product{}, 0, err
	}

	var items []model.Product
	offset := (q.Page - 1) * q.Limit
	if err := query.Order("id desc").Limit(q.Limit).Offset(offset).Find(&items).Error; err != nil {
		return []model.Product{}, 0, err
	}

	return items, total, nil
}
