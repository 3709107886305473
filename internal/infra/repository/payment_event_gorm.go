package repository

import (
	"context"

	"app/internal/domain/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentEventGormRepository struct {
	db *gorm.DB
}

func NewPaymentEventGormRepository(db *gorm.DB) *PaymentEventGormRepository {
	return &PaymentEventGormRepository{db: db}
}

// session_idのunique制約で重複配達を検知する。
// DB制約なのでhandlerが並行に走っても二重処理にならない。
func (r *PaymentEventGormRepository) CreateIfAbsent(ctx context.Context, event model.PaymentEvent) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoNothing: true,
	}).Create(&event)

	if res.Error != nil {
		return false, res.Error
	}

	//RowsAffected==0なら既に処理済み
	return res.RowsAffected > 0, nil
}
