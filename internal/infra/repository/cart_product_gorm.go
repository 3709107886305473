package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartProductGormRepository struct {
	db *gorm.DB
}

func NewCartProductGormRepository(db *gorm.DB) *CartProductGormRepository {
	return &CartProductGormRepository{db: db}
}

func (r *CartProductGormRepository) UpsertAddQuantity(ctx context.Context, userID int64, productID int64, quantity int64) error {
	item := model.CartProduct{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	}

	//user×productのunique制約に当たったら数量を加算する
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity": gorm.Expr("cart_products.quantity + ?", quantity),
		}),
	}).Create(&item).Error
}

func (r *CartProductGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.CartProduct, error) {
	var items []model.CartProduct
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return []model.CartProduct{}, err
	}
	return items, nil
}

func (r *CartProductGormRepository) FindByID(ctx context.Context, cartProductID int64) (model.CartProduct, error) {
	var item model.CartProduct
	err := r.db.WithContext(ctx).Where("id = ?", cartProductID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.CartProduct{}, repo.ErrNotFound
	}
	if err != nil {
		return model.CartProduct{}, err
	}
	return item, nil
}

func (r *CartProductGormRepository) UpdateQuantity(ctx context.Context, cartProductID int64, userID int64, quantity int64) error {
	res := r.db.WithContext(ctx).Model(&model.CartProduct{}).
		Where("id = ? AND user_id = ?", cartProductID, userID).
		Update("quantity", quantity)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CartProductGormRepository) DeleteByID(ctx context.Context, cartProductID int64, userID int64) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", cartProductID, userID).
		Delete(&model.CartProduct{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *CartProductGormRepository) DeleteByUserID(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.CartProduct{}).Error
}
