package handler

import (
	"net/http"

	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /api/*共通のレスポンス封筒
type APIResponse struct {
	Message string      `json:"message"`
	Error   bool        `json:"error"`
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

func respondOK(c echo.Context, message string, data interface{}) error {
	return c.JSON(http.StatusOK, APIResponse{
		Message: message,
		Error:   false,
		Success: true,
		Data:    data,
	})
}

func writeError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}
	if he, ok := usecase.AsHTTPError(err); ok {
		return c.JSON(he.Status, APIResponse{Message: he.Message, Error: true, Success: false})
	}

	//500
	return c.JSON(http.StatusInternalServerError, APIResponse{Message: "internal error", Error: true, Success: false})
}

// middleware.AuthJWT が c.Set("user_id", int64) した値を取り出す
func getUserIDFromContext(c echo.Context) (int64, bool) {
	v := c.Get("user_id")
	if v == nil {
		return 0, false
	}

	id, ok := v.(int64)
	if !ok {
		return 0, false
	}

	return id, true
}
