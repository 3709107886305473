package usecase

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/payment"
	repo "app/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type OrderUsecase struct {
	cfg       config.Config
	tx        repo.TransactionManager
	users     repo.UserRepository
	addresses repo.AddressRepository
	products  repo.ProductRepository
	orders    repo.OrderRepository
	gateway   payment.Gateway
}

func NewOrderUsecase(
	cfg config.Config,
	tx repo.TransactionManager,
	users repo.UserRepository,
	addresses repo.AddressRepository,
	products repo.ProductRepository,
	orders repo.OrderRepository,
	gateway payment.Gateway,
) *OrderUsecase {
	return &OrderUsecase{
		cfg:       cfg,
		tx:        tx,
		users:     users,
		addresses: addresses,
		products:  products,
		orders:    orders,
		gateway:   gateway,
	}
}

type OrderLineItemInput struct {
	ProductID int64
	Quantity  int64
}

type CashOnDeliveryInput struct {
	Items          []OrderLineItemInput
	AddressID      int64
	TotalAmount    decimal.Decimal
	SubTotalAmount decimal.Decimal
}

type CheckoutInput struct {
	Items     []OrderLineItemInput
	AddressID int64
}

// 注文レコード生成に使う1行分の確定値。
// 金額は呼び出し側で確定させる（COD=クライアント申告、カード=amount_total/100）。
type orderLine struct {
	ProductID int64
	Name      string
	Image     []string
	SubTotal  decimal.Decimal
	Total     decimal.Decimal
}

// 公開用注文ID
func newOrderID() string {
	return fmt.Sprintf("ORD-%s", uuid.NewString())
}

// buildOrderRecords は明細1行につき1つのOrderを作る。
// 入力と同じ順・同じ件数で返す。orderIDは行ごとに採番する。
func buildOrderRecords(userID int64, addressID int64, paymentID string, paymentStatus string, lines []orderLine) []model.Order {
	records := make([]model.Order, 0, len(lines))
	for _, ln := range lines {
		records = append(records, model.Order{
			UserID:            userID,
			OrderID:           newOrderID(),
			ProductID:         ln.ProductID,
			ProductName:       ln.Name,
			ProductImage:      ln.Image,
			PaymentID:         paymentID,
			PaymentStatus:     paymentStatus,
			DeliveryAddressID: addressID,
			SubTotalAmount:    ln.SubTotal,
			TotalAmount:       ln.Total,
		})
	}
	return records
}

// 明細のproductをまとめて解決してID→Productのmapにする
func (u *OrderUsecase) resolveProducts(ctx context.Context, items []OrderLineItemInput) (map[int64]model.Product, error) {
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ProductID)
	}

	products, err := u.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	byID := make(map[int64]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	for _, it := range items {
		if _, ok := byID[it.ProductID]; !ok {
			return nil, NewHTTPError(http.StatusBadRequest, "invalid product")
		}
	}

	return byID, nil
}

// 住所の存在＋所有チェック
func (u *OrderUsecase) checkAddress(ctx context.Context, userID int64, addressID int64) error {
	addr, err := u.addresses.FindByID(ctx, addressID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusBadRequest, "invalid address")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if addr.UserID != userID {
		return NewHTTPError(http.StatusForbidden, "forbidden")
	}
	return nil
}

func validateLineItems(items []OrderLineItemInput) error {
	if len(items) == 0 {
		return NewHTTPError(http.StatusBadRequest, "cart empty")
	}
	for _, it := range items {
		if it.ProductID <= 0 {
			return NewHTTPError(http.StatusBadRequest, "invalid product_id")
		}
		if it.Quantity < 1 {
			return NewHTTPError(http.StatusBadRequest, "invalid quantity")
		}
	}
	return nil
}

// CashOnDelivery は決済プロバイダを通さず注文を確定する。
// 金額はクライアント申告のまま保存する（カタログ価格で再計算しない）。
func (u *OrderUsecase) CashOnDelivery(ctx context.Context, userID int64, in CashOnDeliveryInput) ([]model.Order, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := validateLineItems(in.Items); err != nil {
		return nil, err
	}
	if in.AddressID <= 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid address_id")
	}
	if err := u.checkAddress(ctx, userID, in.AddressID); err != nil {
		return nil, err
	}

	byID, err := u.resolveProducts(ctx, in.Items)
	if err != nil {
		return nil, err
	}

	lines := make([]orderLine, 0, len(in.Items))
	for _, it := range in.Items {
		p := byID[it.ProductID]
		lines = append(lines, orderLine{
			ProductID: p.ID,
			Name:      p.Name,
			Image:     p.Image,
			SubTotal:  in.SubTotalAmount,
			Total:     in.TotalAmount,
		})
	}

	records := buildOrderRecords(userID, in.AddressID, "", model.PaymentStatusCashOnDelivery, lines)

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Orders().CreateBulk(ctx, records); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		//注文できたらカートを空にする
		if err := r.CartProducts().DeleteByUserID(ctx, userID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Int64("user_id", userID).Int("orders", len(records)).Msg("order: cash on delivery order created")

	return records, nil
}

// Checkout はhosted checkoutセッションを作ってリダイレクトURLを返す。
// ローカルには何も保存しない（注文はwebhookの完了イベントで作る）。
func (u *OrderUsecase) Checkout(ctx context.Context, userID int64, in CheckoutInput) (string, error) {
	if userID <= 0 {
		return "", NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := validateLineItems(in.Items); err != nil {
		return "", err
	}
	if in.AddressID <= 0 {
		return "", NewHTTPError(http.StatusBadRequest, "invalid address_id")
	}

	user, err := u.users.FindByID(ctx, userID)
	if err != nil || user == nil {
		return "", NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if user.Email == "" {
		return "", NewHTTPError(http.StatusBadRequest, "user email required")
	}

	if err := u.checkAddress(ctx, userID, in.AddressID); err != nil {
		return "", err
	}

	byID, err := u.resolveProducts(ctx, in.Items)
	if err != nil {
		return "", err
	}

	checkoutItems := make([]payment.CheckoutItem, 0, len(in.Items))
	for _, it := range in.Items {
		p := byID[it.ProductID]

		//単価は割引後価格を最小通貨単位にする
		unitAmount := DiscountedPrice(p.Price, p.Discount).Mul(hundred).IntPart()

		checkoutItems = append(checkoutItems, payment.CheckoutItem{
			ProductID:  p.ID,
			Name:       p.Name,
			Images:     p.Image,
			UnitAmount: unitAmount,
			Quantity:   it.Quantity,
		})
	}

	url, err := u.gateway.CreateCheckoutSession(ctx, payment.CheckoutSessionInput{
		CustomerEmail: user.Email,
		//完了イベントでuser/addressを特定するためのmetadata
		Metadata: map[string]string{
			"userId":    strconv.FormatInt(userID, 10),
			"addressId": strconv.FormatInt(in.AddressID, 10),
		},
		Items:      checkoutItems,
		SuccessURL: u.cfg.FrontendURL + "/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:  u.cfg.FrontendURL + "/cancel",
	})
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("order: create checkout session failed")
		return "", NewHTTPError(http.StatusBadGateway, "payment provider error")
	}

	return url, nil
}

// HandlePaymentEvent はwebhook配達を検証して注文に反映する。
// 配達はat-least-onceなので、session_idの台帳で重複を弾く。
func (u *OrderUsecase) HandlePaymentEvent(ctx context.Context, payload []byte, signature string) error {
	event, err := u.gateway.VerifyEvent(payload, signature)
	if err != nil {
		log.Warn().Err(err).Msg("order: webhook signature verification failed")
		return NewHTTPError(http.StatusBadRequest, "invalid signature")
	}

	//対象外のイベントは受領だけ返す（no-op）
	if event.Type != payment.EventTypeCheckoutSessionCompleted || event.Session == nil {
		log.Info().Str("event_type", event.Type).Msg("order: ignoring webhook event")
		return nil
	}

	sess := event.Session

	userID, err1 := strconv.ParseInt(sess.Metadata["userId"], 10, 64)
	addressID, err2 := strconv.ParseInt(sess.Metadata["addressId"], 10, 64)
	if err1 != nil || err2 != nil || userID <= 0 || addressID <= 0 {
		log.Warn().Str("session_id", sess.ID).Msg("order: webhook session missing metadata")
		return NewHTTPError(http.StatusBadRequest, "missing metadata")
	}

	//完了イベント本体に明細は入っていないので取りに行く
	items, err := u.gateway.SessionLineItems(ctx, sess.ID)
	if err != nil {
		log.Error().Err(err).Str("session_id", sess.ID).Msg("order: fetch session line items failed")
		return NewHTTPError(http.StatusBadGateway, "payment provider error")
	}

	lines := make([]orderLine, 0, len(items))
	for _, it := range items {
		//amount_totalは最小通貨単位なので100で割る
		amount := decimal.NewFromInt(it.AmountTotal).Div(hundred)
		lines = append(lines, orderLine{
			ProductID: it.ProductID,
			Name:      it.Name,
			Image:     it.Images,
			SubTotal:  amount,
			Total:     amount,
		})
	}

	records := buildOrderRecords(userID, addressID, sess.PaymentIntentID, sess.PaymentStatus, lines)

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//台帳への挿入が弾かれたら同じイベントの再配達
		inserted, err := r.PaymentEvents().CreateIfAbsent(ctx, model.PaymentEvent{
			SessionID:       sess.ID,
			EventType:       event.Type,
			PaymentIntentID: sess.PaymentIntentID,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !inserted {
			log.Info().Str("session_id", sess.ID).Msg("order: duplicate webhook delivery ignored")
			return nil
		}

		if err := r.Orders().CreateBulk(ctx, records); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err := r.CartProducts().DeleteByUserID(ctx, userID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		log.Info().
			Str("session_id", sess.ID).
			Int64("user_id", userID).
			Int("orders", len(records)).
			Msg("order: payment event reconciled")
		return nil
	})

	return err
}

// ListMyOrders は自分の注文を新しい順に返す（住所展開付き）。
func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64) ([]model.Order, error) {
	if userID <= 0 {
		return nil, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	orders, err := u.orders.ListByUserID(ctx, userID)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return orders, nil
}
