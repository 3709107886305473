package handler

import (
	"net/http"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AddressHandler struct {
	uc *usecase.AddressUsecase
}

func NewAddressHandler(uc *usecase.AddressUsecase) *AddressHandler {
	return &AddressHandler{uc: uc}
}

type addressRequest struct {
	ID          int64  `json:"_id"`
	AddressLine string `json:"address_line"`
	City        string `json:"city"`
	State       string `json:"state"`
	Pincode     string `json:"pincode"`
	Country     string `json:"country"`
	Mobile      string `json:"mobile"`
}

func (h *AddressHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/api/address", middleware.AuthJWT(cfg))

	g.POST("/create", h.create)
	g.GET("/get", h.list)
	g.PUT("/update", h.update)
	g.DELETE("/disable", h.disable)
}

func toAddressInput(req addressRequest) usecase.AddressInput {
	return usecase.AddressInput{
		AddressLine: req.AddressLine,
		City:        req.City,
		State:       req.State,
		Pincode:     req.Pincode,
		Country:     req.Country,
		Mobile:      req.Mobile,
	}
}

func (h *AddressHandler) create(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, APIResponse{Message: "unauthorized", Error: true})
	}

	var req addressRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, APIResponse{Message: "invalid body", Error: true})
	}

	addr, err := h.uc.Create(c.Request().Context(), userID, toAddressInput(req))
	if err != nil {
		return writeError(c, err)
	}
	return respondOK(c, "Address created successfully", addr)
}

func (h *AddressHandler) list(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, APIResponse{Message: "unauthorized", Error: true})
	}

	items, err := h.uc.List(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return respondOK(c, "address list", items)
}

func (h *AddressHandler) update(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, APIResponse{Message: "unauthorized", Error: true})
	}

	var req addressRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, APIResponse{Message: "invalid body", Error: true})
	}

	if err := h.uc.Update(c.Request().Context(), userID, req.ID, toAddressInput(req)); err != nil {
		return writeError(c, err)
	}
	return respondOK(c, "Address updated", nil)
}

func (h *AddressHandler) disable(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, APIResponse{Message: "unauthorized", Error: true})
	}

	var req deleteCartItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, APIResponse{Message: "invalid body", Error: true})
	}

	if err := h.uc.Disable(c.Request().Context(), userID, req.ID); err != nil {
		return writeError(c, err)
	}
	return respondOK(c, "Address removed", nil)
}
