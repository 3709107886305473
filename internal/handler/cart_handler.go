package handler

import (
	"net/http"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /api/cartのHTTP
type CartHandler struct {
	uc *usecase.CartUsecase
}

func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

type addCartRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type updateCartQtyRequest struct {
	ID       int64 `json:"_id"`
	Quantity int64 `json:"qty"`
}

type deleteCartItemRequest struct {
	ID int64 `json:"_id"`
}

func (h *CartHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/api/cart", middleware.AuthJWT(cfg))

	g.POST("/create", h.addToCart)
	g.GET("/get", h.getCart)
	g.PUT("/update-qty", h.updateQty)
	g.DELETE("/delete-cart-item", h.deleteItem)
}

func (h *CartHandler) getCart(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, APIResponse{Message: "unauthorized", Error: true})
	}

	out, err := h.uc.GetCart(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return respondOK(c, "cart items", out)
}

func (h *CartHandler) addToCart(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, APIResponse{Message: "unauthorized", Error: true})
	}

	var req addCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, APIResponse{Message: "invalid body", Error: true})
	}

	out, err := h.uc.AddToCart(c.Request().Context(), userID, req.ProductID, req.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return respondOK(c, "Item added successfully", out)
}

func (h *CartHandler) updateQty(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, APIResponse{Message: "unauthorized", Error: true})
	}

	var req updateCartQtyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, APIResponse{Message: "invalid body", Error: true})
	}

	out, err := h.uc.UpdateQuantity(c.Request().Context(), userID, req.ID, req.Quantity)
	if err != nil {
		return writeError(c, err)
	}
	return respondOK(c, "Cart updated", out)
}

func (h *CartHandler) deleteItem(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, APIResponse{Message: "unauthorized", Error: true})
	}

	var req deleteCartItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, APIResponse{Message: "invalid body", Error: true})
	}

	out, err := h.uc.DeleteItem(c.Request().Context(), userID, req.ID)
	if err != nil {
		return writeError(c, err)
	}
	return respondOK(c, "Item removed", out)
}
