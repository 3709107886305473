package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type AddressGormRepository struct {
	db *gorm.DB
}

func NewAddressGormRepository(db *gorm.DB) *AddressGormRepository {
	return &AddressGormRepository{db: db}
}

func (r *AddressGormRepository) Create(ctx context.Context, addr model.Address) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&addr).Error; err != nil {
		return 0, err
	}
	return addr.ID, nil
}

func (r *AddressGormRepository) FindByID(ctx context.Context, addressID int64) (model.Address, error) {
	var a model.Address
	err := r.db.WithContext(ctx).Where("id = ?", addressID).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Address{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Address{}, err
	}
	return a, nil
}

func (r *AddressGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.Address, error) {
	var items []model.Address
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, true).
		Order("id desc").
		Find(&items).Error
	if err != nil {
		return []model.Address{}, err
	}
	return items, nil
}

func (r *AddressGormRepository) Update(ctx context.Context, addr model.Address) error {
	res := r.db.WithContext(ctx).Model(&model.Address{}).
		Where("id = ? AND user_id = ?", addr.ID, addr.UserID).
		Updates(map[string]interface{}{
			"address_line": addr.AddressLine,
			"city":         addr.City,
			"state":        addr.State,
			"pincode":      addr.Pincode,
			"country":      addr.Country,
			"mobile":       addr.Mobile,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *AddressGormRepository) Disable(ctx context.Context, addressID int64, userID int64) error {
	res := r.db.WithContext(ctx).Model(&model.Address{}).
		Where("id = ? AND user_id = ?", addressID, userID).
		Update("status", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
