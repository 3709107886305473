package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/payment"
	repo "app/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	Repos repo.TxRepos
	Calls int
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.Calls++
	return fn(m.Repos)
}

type TxReposMock struct {
	orders        repo.OrderRepository
	paymentEvents repo.PaymentEventRepository
	cartProducts  repo.CartProductRepository
}

func (r *TxReposMock) Orders() repo.OrderRepository               { return r.orders }
func (r *TxReposMock) PaymentEvents() repo.PaymentEventRepository { return r.paymentEvents }
func (r *TxReposMock) CartProducts() repo.CartProductRepository   { return r.cartProducts }

// =====================
// Repository mocks
// =====================

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) CreateBulk(ctx context.Context, orders []model.Order) error {
	args := m.Called(ctx, orders)
	return args.Error(0)
}

func (m *OrderRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.Order, error) {
	args := m.Called(ctx, userID)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Error(1)
}

func (m *OrderRepoMock) CountByUserID(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type PaymentEventRepoMock struct{ mock.Mock }

func (m *PaymentEventRepoMock) CreateIfAbsent(ctx context.Context, event model.PaymentEvent) (bool, error) {
	args := m.Called(ctx, event)
	return args.Bool(0), args.Error(1)
}

type CartProductRepoMock struct{ mock.Mock }

func (m *CartProductRepoMock) UpsertAddQuantity(ctx context.Context, userID int64, productID int64, quantity int64) error {
	args := m.Called(ctx, userID, productID, quantity)
	return args.Error(0)
}

func (m *CartProductRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.CartProduct, error) {
	args := m.Called(ctx, userID)
	items, _ := args.Get(0).([]model.CartProduct)
	return items, args.Error(1)
}

func (m *CartProductRepoMock) FindByID(ctx context.Context, cartProductID int64) (model.CartProduct, error) {
	args := m.Called(ctx, cartProductID)
	cp, _ := args.Get(0).(model.CartProduct)
	return cp, args.Error(1)
}

func (m *CartProductRepoMock) UpdateQuantity(ctx context.Context, cartProductID int64, userID int64, quantity int64) error {
	args := m.Called(ctx, cartProductID, userID, quantity)
	return args.Error(0)
}

func (m *CartProductRepoMock) DeleteByID(ctx context.Context, cartProductID int64, userID int64) error {
	args := m.Called(ctx, cartProductID, userID)
	return args.Error(0)
}

func (m *CartProductRepoMock) DeleteByUserID(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) FindByID(ctx context.Context, productID int64) (model.Product, error) {
	args := m.Called(ctx, productID)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) FindByIDs(ctx context.Context, productIDs []int64) ([]model.Product, error) {
	args := m.Called(ctx, productIDs)
	products, _ := args.Get(0).([]model.Product)
	return products, args.Error(1)
}

func (m *ProductRepoMock) ListPublished(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	products, _ := args.Get(0).([]model.Product)
	return products, args.Get(1).(int64), args.Error(2)
}

type AddressRepoMock struct{ mock.Mock }

func (m *AddressRepoMock) Create(ctx context.Context, addr model.Address) (int64, error) {
	args := m.Called(ctx, addr)
	return args.Get(0).(int64), args.Error(1)
}

func (m *AddressRepoMock) FindByID(ctx context.Context, addressID int64) (model.Address, error) {
	args := m.Called(ctx, addressID)
	a, _ := args.Get(0).(model.Address)
	return a, args.Error(1)
}

func (m *AddressRepoMock) ListByUserID(ctx context.Context, userID int64) ([]model.Address, error) {
	args := m.Called(ctx, userID)
	addrs, _ := args.Get(0).([]model.Address)
	return addrs, args.Error(1)
}

func (m *AddressRepoMock) Update(ctx context.Context, addr model.Address) error {
	args := m.Called(ctx, addr)
	return args.Error(0)
}

func (m *AddressRepoMock) Disable(ctx context.Context, addressID int64, userID int64) error {
	args := m.Called(ctx, addressID, userID)
	return args.Error(0)
}

type UserRepoMock struct{ mock.Mock }

func (m *UserRepoMock) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepoMock) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *UserRepoMock) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// =====================
// 決済Gateway mock
// =====================

type GatewayMock struct{ mock.Mock }

func (m *GatewayMock) CreateCheckoutSession(ctx context.Context, in payment.CheckoutSessionInput) (string, error) {
	args := m.Called(ctx, in)
	return args.String(0), args.Error(1)
}

func (m *GatewayMock) SessionLineItems(ctx context.Context, sessionID string) ([]payment.PurchasedItem, error) {
	args := m.Called(ctx, sessionID)
	items, _ := args.Get(0).([]payment.PurchasedItem)
	return items, args.Error(1)
}

func (m *GatewayMock) VerifyEvent(payload []byte, signature string) (payment.Event, error) {
	args := m.Called(payload, signature)
	ev, _ := args.Get(0).(payment.Event)
	return ev, args.Error(1)
}

// =====================
// helpers
// =====================

type orderTestDeps struct {
	tx       *TxManagerMock
	users    *UserRepoMock
	addrs    *AddressRepoMock
	products *ProductRepoMock
	orders   *OrderRepoMock
	events   *PaymentEventRepoMock
	carts    *CartProductRepoMock
	gateway  *GatewayMock
}

func newOrderUsecaseForTest() (*OrderUsecase, *orderTestDeps) {
	d := &orderTestDeps{
		users:    &UserRepoMock{},
		addrs:    &AddressRepoMock{},
		products: &ProductRepoMock{},
		orders:   &OrderRepoMock{},
		events:   &PaymentEventRepoMock{},
		carts:    &CartProductRepoMock{},
		gateway:  &GatewayMock{},
	}
	d.tx = &TxManagerMock{Repos: &TxReposMock{
		orders:        d.orders,
		paymentEvents: d.events,
		cartProducts:  d.carts,
	}}

	cfg := config.Config{
		JWTSecret:   "test-secret",
		FrontendURL: "http://localhost:3000",
	}

	uc := NewOrderUsecase(cfg, d.tx, d.users, d.addrs, d.products, d.orders, d.gateway)
	return uc, d
}

func assertHTTPStatus(t *testing.T, err error, status int) {
	t.Helper()
	he, ok := AsHTTPError(err)
	assert.True(t, ok, "expected HTTPError, got %v", err)
	if ok {
		assert.Equal(t, status, he.Status)
	}
}

// =====================
// buildOrderRecords
// =====================

func TestBuildOrderRecords(t *testing.T) {
	lines := []orderLine{
		{ProductID: 10, Name: "apple", Image: []string{"a.jpg"}, SubTotal: decimal.RequireFromString("90.00"), Total: decimal.RequireFromString("100.00")},
		{ProductID: 20, Name: "banana", Image: []string{"b.jpg"}, SubTotal: decimal.RequireFromString("40.00"), Total: decimal.RequireFromString("40.00")},
	}

	records := buildOrderRecords(7, 3, "pi_123", "paid", lines)

	//入力と同じ件数・同じ順
	assert.Len(t, records, 2)
	assert.Equal(t, int64(10), records[0].ProductID)
	assert.Equal(t, int64(20), records[1].ProductID)

	for i, r := range records {
		assert.Equal(t, int64(7), r.UserID)
		assert.Equal(t, int64(3), r.DeliveryAddressID)
		assert.Equal(t, "pi_123", r.PaymentID)
		assert.Equal(t, "paid", r.PaymentStatus)
		assert.True(t, strings.HasPrefix(r.OrderID, "ORD-"), "records[%d].OrderID=%s", i, r.OrderID)
		assert.Equal(t, lines[i].Name, r.ProductName)
		assert.True(t, lines[i].SubTotal.Equal(r.SubTotalAmount))
		assert.True(t, lines[i].Total.Equal(r.TotalAmount))
	}

	//orderIDは行ごとに採番
	assert.NotEqual(t, records[0].OrderID, records[1].OrderID)
}

// =====================
// CashOnDelivery
// =====================

func TestCashOnDelivery_CreatesOrdersAndClearsCart(t *testing.T) {
	uc, d := newOrderUsecaseForTest()
	ctx := context.Background()

	d.addrs.On("FindByID", ctx, int64(5)).Return(model.Address{ID: 5, UserID: 1}, nil)
	d.products.On("FindByIDs", ctx, []int64{10, 20}).Return([]model.Product{
		{ID: 10, Name: "apple", Image: []string{"a.jpg"}},
		{ID: 20, Name: "banana"},
	}, nil)
	d.orders.On("CreateBulk", ctx, mock.AnythingOfType("[]model.Order")).Return(nil)
	d.carts.On("DeleteByUserID", ctx, int64(1)).Return(nil)

	records, err := uc.CashOnDelivery(ctx, 1, CashOnDeliveryInput{
		Items: []OrderLineItemInput{
			{ProductID: 10, Quantity: 2},
			{ProductID: 20, Quantity: 1},
		},
		AddressID:      5,
		TotalAmount:    decimal.RequireFromString("240.00"),
		SubTotalAmount: decimal.RequireFromString("220.00"),
	})

	assert.NoError(t, err)
	assert.Len(t, records, 2)
	for _, r := range records {
		assert.Equal(t, model.PaymentStatusCashOnDelivery, r.PaymentStatus)
		assert.Equal(t, "", r.PaymentID)
		assert.True(t, decimal.RequireFromString("240.00").Equal(r.TotalAmount))
		assert.True(t, decimal.RequireFromString("220.00").Equal(r.SubTotalAmount))
	}

	assert.Equal(t, 1, d.tx.Calls)
	d.orders.AssertExpectations(t)
	d.carts.AssertExpectations(t)
}

func TestCashOnDelivery_EmptyItems(t *testing.T) {
	uc, d := newOrderUsecaseForTest()

	_, err := uc.CashOnDelivery(context.Background(), 1, CashOnDeliveryInput{AddressID: 5})

	assertHTTPStatus(t, err, http.StatusBadRequest)
	assert.Equal(t, 0, d.tx.Calls)
}

func TestCashOnDelivery_AddressNotOwned(t *testing.T) {
	uc, d := newOrderUsecaseForTest()
	ctx := context.Background()

	//他人の住所
	d.addrs.On("FindByID", ctx, int64(5)).Return(model.Address{ID: 5, UserID: 99}, nil)

	_, err := uc.CashOnDelivery(ctx, 1, CashOnDeliveryInput{
		Items:     []OrderLineItemInput{{ProductID: 10, Quantity: 1}},
		AddressID: 5,
	})

	assertHTTPStatus(t, err, http.StatusForbidden)
	assert.Equal(t, 0, d.tx.Calls)
}

func TestCashOnDelivery_UnknownProduct(t *testing.T) {
	uc, d := newOrderUsecaseForTest()
	ctx := context.Background()

	d.addrs.On("FindByID", ctx, int64(5)).Return(model.Address{ID: 5, UserID: 1}, nil)
	//id=20が解決できない
	d.products.On("FindByIDs", ctx, []int64{10, 20}).Return([]model.Product{{ID: 10}}, nil)

	_, err := uc.CashOnDelivery(ctx, 1, CashOnDeliveryInput{
		Items: []OrderLineItemInput{
			{ProductID: 10, Quantity: 1},
			{ProductID: 20, Quantity: 1},
		},
		AddressID: 5,
	})

	assertHTTPStatus(t, err, http.StatusBadRequest)
	assert.Equal(t, 0, d.tx.Calls)
}

// =====================
// Checkout
// =====================

func TestCheckout_BuildsSessionFromDiscountedPrice(t *testing.T) {
	uc, d := newOrderUsecaseForTest()
	ctx := context.Background()

	d.users.On("FindByID", ctx, int64(1)).Return(&model.User{ID: 1, Email: "u@example.com", IsActive: true}, nil)
	d.addrs.On("FindByID", ctx, int64(5)).Return(model.Address{ID: 5, UserID: 1}, nil)
	d.products.On("FindByIDs", ctx, []int64{10}).Return([]model.Product{
		{ID: 10, Name: "apple", Price: decimal.RequireFromString("100.00"), Discount: 10},
	}, nil)

	d.gateway.On("CreateCheckoutSession", ctx, mock.MatchedBy(func(in payment.CheckoutSessionInput) bool {
		if in.CustomerEmail != "u@example.com" {
			return false
		}
		if in.Metadata["userId"] != "1" || in.Metadata["addressId"] != "5" {
			return false
		}
		if len(in.Items) != 1 {
			return false
		}
		//割引後価格90.00 → 最小通貨単位9000
		return in.Items[0].UnitAmount == 9000 && in.Items[0].Quantity == 2
	})).Return("https://pay.example.com/s/abc", nil)

	url, err := uc.Checkout(ctx, 1, CheckoutInput{
		Items:     []OrderLineItemInput{{ProductID: 10, Quantity: 2}},
		AddressID: 5,
	})

	assert.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/s/abc", url)
	d.gateway.AssertExpectations(t)
}

func TestCheckout_GatewayError(t *testing.T) {
	uc, d := newOrderUsecaseForTest()
	ctx := context.Background()

	d.users.On("FindByID", ctx, int64(1)).Return(&model.User{ID: 1, Email: "u@example.com", IsActive: true}, nil)
	d.addrs.On("FindByID", ctx, int64(5)).Return(model.Address{ID: 5, UserID: 1}, nil)
	d.products.On("FindByIDs", ctx, []int64{10}).Return([]model.Product{
		{ID: 10, Price: decimal.RequireFromString("10.00")},
	}, nil)
	d.gateway.On("CreateCheckoutSession", ctx, mock.Anything).Return("", errors.New("provider down"))

	_, err := uc.Checkout(ctx, 1, CheckoutInput{
		Items:     []OrderLineItemInput{{ProductID: 10, Quantity: 1}},
		AddressID: 5,
	})

	assertHTTPStatus(t, err, http.StatusBadGateway)
}

// =====================
// HandlePaymentEvent
// =====================

func completedEvent(sessionID string, userID string, addressID string) payment.Event {
	return payment.Event{
		Type: payment.EventTypeCheckoutSessionCompleted,
		Session: &payment.CompletedSession{
			ID:              sessionID,
			PaymentIntentID: "pi_123",
			PaymentStatus:   "paid",
			Metadata:        map[string]string{"userId": userID, "addressId": addressID},
		},
	}
}

func TestHandlePaymentEvent_InvalidSignature(t *testing.T) {
	uc, d := newOrderUsecaseForTest()

	d.gateway.On("VerifyEvent", []byte("payload"), "bad-sig").Return(payment.Event{}, errors.New("signature mismatch"))

	err := uc.HandlePaymentEvent(context.Background(), []byte("payload"), "bad-sig")

	assertHTTPStatus(t, err, http.StatusBadRequest)
	assert.Equal(t, 0, d.tx.Calls)
}

func TestHandlePaymentEvent_IgnoresOtherEventTypes(t *testing.T) {
	uc, d := newOrderUsecaseForTest()

	d.gateway.On("VerifyEvent", []byte("payload"), "sig").Return(payment.Event{Type: "payment_intent.created"}, nil)

	err := uc.HandlePaymentEvent(context.Background(), []byte("payload"), "sig")

	//受領だけ返す
	assert.NoError(t, err)
	assert.Equal(t, 0, d.tx.Calls)
}

func TestHandlePaymentEvent_MissingMetadata(t *testing.T) {
	uc, d := newOrderUsecaseForTest()

	ev := payment.Event{
		Type:    payment.EventTypeCheckoutSessionCompleted,
		Session: &payment.CompletedSession{ID: "cs_1", Metadata: map[string]string{}},
	}
	d.gateway.On("VerifyEvent", []byte("payload"), "sig").Return(ev, nil)

	err := uc.HandlePaymentEvent(context.Background(), []byte("payload"), "sig")

	assertHTTPStatus(t, err, http.StatusBadRequest)
	assert.Equal(t, 0, d.tx.Calls)
}

func TestHandlePaymentEvent_CreatesOrders(t *testing.T) {
	uc, d := newOrderUsecaseForTest()
	ctx := context.Background()

	d.gateway.On("VerifyEvent", []byte("payload"), "sig").Return(completedEvent("cs_1", "1", "5"), nil)
	d.gateway.On("SessionLineItems", ctx, "cs_1").Return([]payment.PurchasedItem{
		{ProductID: 10, Name: "apple", Images: []string{"a.jpg"}, AmountTotal: 18000},
		{ProductID: 20, Name: "banana", AmountTotal: 4000},
	}, nil)

	d.events.On("CreateIfAbsent", ctx, mock.MatchedBy(func(ev model.PaymentEvent) bool {
		return ev.SessionID == "cs_1" && ev.PaymentIntentID == "pi_123"
	})).Return(true, nil)

	var created []model.Order
	d.orders.On("CreateBulk", ctx, mock.AnythingOfType("[]model.Order")).Run(func(args mock.Arguments) {
		created = args.Get(1).([]model.Order)
	}).Return(nil)
	d.carts.On("DeleteByUserID", ctx, int64(1)).Return(nil)

	err := uc.HandlePaymentEvent(ctx, []byte("payload"), "sig")

	assert.NoError(t, err)
	assert.Len(t, created, 2)

	//amount_totalは最小通貨単位→100で割った額が保存される
	assert.True(t, decimal.RequireFromString("180.00").Equal(created[0].TotalAmount))
	assert.True(t, decimal.RequireFromString("40.00").Equal(created[1].TotalAmount))
	assert.Equal(t, "pi_123", created[0].PaymentID)
	assert.Equal(t, "paid", created[0].PaymentStatus)
	assert.Equal(t, int64(1), created[0].UserID)
	assert.Equal(t, int64(5), created[0].DeliveryAddressID)

	d.carts.AssertExpectations(t)
}

func TestHandlePaymentEvent_DuplicateDeliveryIsNoop(t *testing.T) {
	uc, d := newOrderUsecaseForTest()
	ctx := context.Background()

	d.gateway.On("VerifyEvent", []byte("payload"), "sig").Return(completedEvent("cs_1", "1", "5"), nil)
	d.gateway.On("SessionLineItems", ctx, "cs_1").Return([]payment.PurchasedItem{
		{ProductID: 10, AmountTotal: 1000},
	}, nil)

	//台帳に既にある＝再配達
	d.events.On("CreateIfAbsent", ctx, mock.Anything).Return(false, nil)

	//CreateBulk / DeleteByUserID には期待を仕込まない：呼ばれたらpanicで落ちる

	err := uc.HandlePaymentEvent(ctx, []byte("payload"), "sig")

	assert.NoError(t, err)
	assert.Equal(t, 1, d.tx.Calls)
	d.events.AssertExpectations(t)
}
