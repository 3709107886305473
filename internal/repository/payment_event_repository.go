package repository

import (
	"context"

	"app/internal/domain/model"
)

type PaymentEventRepository interface {
	//ON CONFLICT DO NOTHINGで挿入する。
	//既に同じsession_idがあればfalse（＝重複配達）。
	CreateIfAbsent(ctx context.Context, event model.PaymentEvent) (bool, error)
}
