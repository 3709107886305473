package handler

import (
	"io"
	"net/http"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type OrderHandler struct {
	uc *usecase.OrderUsecase
}

func NewOrderHandler(uc *usecase.OrderUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

type orderLineItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type cashOnDeliveryRequest struct {
	ListItems   []orderLineItemRequest `json:"list_items"`
	TotalAmt    decimal.Decimal        `json:"totalAmt"`
	SubTotalAmt decimal.Decimal        `json:"subTotalAmt"`
	AddressID   int64                  `json:"addressId"`
}

type checkoutRequest struct {
	ListItems []orderLineItemRequest `json:"list_items"`
	AddressID int64                  `json:"addressId"`
}

func (h *OrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/api/order")

	//webhookはプロバイダ署名で認証する（JWTは付かない）
	g.POST("/webhook", h.webhook)

	auth := g.Group("", middleware.AuthJWT(cfg))
	auth.POST("/cash-on-delivery", h.cashOnDelivery)
	auth.POST("/checkout", h.checkout)
	auth.GET("/order-list", h.orderList)
}

func toLineItemInputs(items []orderLineItemRequest) []usecase.OrderLineItemInput {
	out := make([]usecase.OrderLineItemInput, 0, len(items))
	for _, it := range items {
		out = append(out, usecase.OrderLineItemInput{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		})
	}
	return out
}

func (h *OrderHandler) cashOnDelivery(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, APIResponse{Message: "unauthorized", Error: true})
	}

	var req cashOnDeliveryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, APIResponse{Message: "invalid body", Error: true})
	}

	orders, err := h.uc.CashOnDelivery(c.Request().Context(), userID, usecase.CashOnDeliveryInput{
		Items:          toLineItemInputs(req.ListItems),
		AddressID:      req.AddressID,
		TotalAmount:    req.TotalAmt,
		SubTotalAmount: req.SubTotalAmt,
	})
	if err != nil {
		return writeError(c, err)
	}

	return respondOK(c, "Order successfully", orders)
}

func (h *OrderHandler) checkout(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, APIResponse{Message: "unauthorized", Error: true})
	}

	var req checkoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, APIResponse{Message: "invalid body", Error: true})
	}

	url, err := h.uc.Checkout(c.Request().Context(), userID, usecase.CheckoutInput{
		Items:     toLineItemInputs(req.ListItems),
		AddressID: req.AddressID,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"url": url})
}

func (h *OrderHandler) orderList(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, APIResponse{Message: "unauthorized", Error: true})
	}

	orders, err := h.uc.ListMyOrders(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}

	return respondOK(c, "order list", orders)
}

// 署名検証はraw bodyに対して行うのでBindは使わない。
func (h *OrderHandler) webhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, APIResponse{Message: "invalid body", Error: true})
	}

	signature := c.Request().Header.Get("Stripe-Signature")

	if err := h.uc.HandlePaymentEvent(c.Request().Context(), body, signature); err != nil {
		//non-2xxを返すとプロバイダが再配達する
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]bool{"received": true})
}
