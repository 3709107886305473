package repository

import (
	"context"

	repo "app/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	orders        repo.OrderRepository
	paymentEvents repo.PaymentEventRepository
	cartProducts  repo.CartProductRepository
}

func (r *txReposGorm) Orders() repo.OrderRepository               { return r.orders }
func (r *txReposGorm) PaymentEvents() repo.PaymentEventRepository { return r.paymentEvents }
func (r *txReposGorm) CartProducts() repo.CartProductRepository   { return r.cartProducts }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			orders:        NewOrderGormRepository(tx),
			paymentEvents: NewPaymentEventGormRepository(tx),
			cartProducts:  NewCartProductGormRepository(tx),
		}
		return fn(r)
	})
}
