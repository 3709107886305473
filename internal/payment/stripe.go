package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"app/internal/config"

	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"
)

// 通貨は固定
const currency = "inr"

type StripeGateway struct {
	api           *client.API
	webhookSecret string
}

func NewStripeGateway(cfg config.Config) *StripeGateway {
	api := &client.API{}
	api.Init(cfg.StripeAPIKey, nil)

	return &StripeGateway{
		api:           api,
		webhookSecret: cfg.StripeWebhookSecret,
	}
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, in CheckoutSessionInput) (string, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(in.Items))
	for _, item := range in.Items {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(currency),
				UnitAmount: stripe.Int64(item.UnitAmount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:   stripe.String(item.Name),
					Images: stripe.StringSlice(item.Images),
					//webhook側でローカル商品に引き直すためのID
					Metadata: map[string]string{
						"productId": strconv.FormatInt(item.ProductID, 10),
					},
				},
			},
			AdjustableQuantity: &stripe.CheckoutSessionLineItemAdjustableQuantityParams{
				Enabled: stripe.Bool(true),
				Minimum: stripe.Int64(1),
			},
			Quantity: stripe.Int64(item.Quantity),
		})
	}

	params := &stripe.CheckoutSessionParams{
		SubmitType:         stripe.String(string(stripe.CheckoutSessionSubmitTypePay)),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		CustomerEmail:      stripe.String(in.CustomerEmail),
		LineItems:          lineItems,
		SuccessURL:         stripe.String(in.SuccessURL),
		CancelURL:          stripe.String(in.CancelURL),
	}
	params.Context = ctx
	for k, v := range in.Metadata {
		params.AddMetadata(k, v)
	}

	sess, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}

	return sess.URL, nil
}

func (g *StripeGateway) SessionLineItems(ctx context.Context, sessionID string) ([]PurchasedItem, error) {
	params := &stripe.CheckoutSessionListLineItemsParams{
		Session: stripe.String(sessionID),
	}
	params.Context = ctx
	params.AddExpand("data.price.product")

	var items []PurchasedItem

	iter := g.api.CheckoutSessions.ListLineItems(params)
	for iter.Next() {
		li := iter.LineItem()
		if li.Price == nil || li.Price.Product == nil {
			return nil, fmt.Errorf("line item without expanded product in session %s", sessionID)
		}

		product := li.Price.Product

		productID, err := strconv.ParseInt(product.Metadata["productId"], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid productId metadata on product %s: %w", product.ID, err)
		}

		items = append(items, PurchasedItem{
			ProductID:   productID,
			Name:        product.Name,
			Images:      product.Images,
			AmountTotal: li.AmountTotal,
		})
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list session line items: %w", err)
	}

	return items, nil
}

func (g *StripeGateway) VerifyEvent(payload []byte, signature string) (Event, error) {
	ev, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		return Event{}, fmt.Errorf("verify webhook signature: %w", err)
	}

	out := Event{Type: string(ev.Type)}

	if out.Type == EventTypeCheckoutSessionCompleted {
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(ev.Data.Raw, &sess); err != nil {
			return Event{}, fmt.Errorf("decode checkout session: %w", err)
		}

		completed := &CompletedSession{
			ID:            sess.ID,
			PaymentStatus: string(sess.PaymentStatus),
			Metadata:      sess.Metadata,
		}
		if sess.PaymentIntent != nil {
			completed.PaymentIntentID = sess.PaymentIntent.ID
		}

		out.Session = completed
		log.Info().Str("session_id", sess.ID).Msg("payment: checkout session completed event verified")
	}

	return out, nil
}
