package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"app/internal/config"
	"app/internal/payment"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

// webhook経路の確認用。VerifyEventだけ差し替える。
type gatewayStub struct {
	verifyEvent func(payload []byte, signature string) (payment.Event, error)
}

func (g *gatewayStub) CreateCheckoutSession(ctx context.Context, in payment.CheckoutSessionInput) (string, error) {
	panic("not used in webhook tests")
}

func (g *gatewayStub) SessionLineItems(ctx context.Context, sessionID string) ([]payment.PurchasedItem, error) {
	panic("not used in webhook tests")
}

func (g *gatewayStub) VerifyEvent(payload []byte, signature string) (payment.Event, error) {
	return g.verifyEvent(payload, signature)
}

func newWebhookHandler(gw payment.Gateway) *OrderHandler {
	uc := usecase.NewOrderUsecase(config.Config{}, nil, nil, nil, nil, nil, gw)
	return NewOrderHandler(uc)
}

func postWebhook(t *testing.T, h *OrderHandler, body string, signature string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/order/webhook", strings.NewReader(body))
	req.Header.Set("Stripe-Signature", signature)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	assert.NoError(t, h.webhook(c))
	return rec
}

func TestWebhook_AcknowledgesIgnoredEventType(t *testing.T) {
	h := newWebhookHandler(&gatewayStub{
		verifyEvent: func(payload []byte, signature string) (payment.Event, error) {
			return payment.Event{Type: "payment_intent.created"}, nil
		},
	})

	rec := postWebhook(t, h, `{"id":"evt_1"}`, "sig")

	//対象外イベントも受領は200で返す
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"received":true}`, rec.Body.String())
}

func TestWebhook_InvalidSignature(t *testing.T) {
	h := newWebhookHandler(&gatewayStub{
		verifyEvent: func(payload []byte, signature string) (payment.Event, error) {
			return payment.Event{}, errors.New("signature mismatch")
		},
	})

	rec := postWebhook(t, h, `{"id":"evt_1"}`, "bad-sig")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid signature")
}

func TestWebhook_PassesRawBodyAndSignature(t *testing.T) {
	var gotPayload string
	var gotSignature string

	h := newWebhookHandler(&gatewayStub{
		verifyEvent: func(payload []byte, signature string) (payment.Event, error) {
			gotPayload = string(payload)
			gotSignature = signature
			return payment.Event{Type: "payment_intent.created"}, nil
		},
	})

	postWebhook(t, h, `{"id":"evt_raw"}`, "t=1,v1=abc")

	//署名検証はraw bodyそのまま
	assert.Equal(t, `{"id":"evt_raw"}`, gotPayload)
	assert.Equal(t, "t=1,v1=abc", gotSignature)
}
