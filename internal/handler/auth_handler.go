package handler

import (
	"net/http"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	uc *usecase.AuthUsecase
}

func NewAuthHandler(uc *usecase.AuthUsecase) *AuthHandler {
	return &AuthHandler{uc: uc}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (h *AuthHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/api/user")

	g.POST("/register", h.register)
	g.POST("/login", h.login)
	g.POST("/refresh-token", h.refresh)
	g.POST("/logout", h.logout)

	auth := g.Group("", middleware.AuthJWT(cfg))
	auth.GET("/user-details", h.userDetails)
}

func (h *AuthHandler) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, APIResponse{Message: "invalid body", Error: true})
	}

	user, err := h.uc.Register(c.Request().Context(), usecase.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return writeError(c, err)
	}

	return respondOK(c, "User registered successfully", user)
}

func (h *AuthHandler) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, APIResponse{Message: "invalid body", Error: true})
	}

	//refresh tokenをUser-Agentに紐付ける
	userAgent := c.Request().Header.Get("User-Agent")

	out, err := h.uc.Login(c.Request().Context(), usecase.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		UserAgent: userAgent,
	})
	if err != nil {
		return writeError(c, err)
	}

	return respondOK(c, "Login successfully", out)
}

func (h *AuthHandler) refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, APIResponse{Message: "invalid body", Error: true})
	}

	userAgent := c.Request().Header.Get("User-Agent")

	out, err := h.uc.Refresh(c.Request().Context(), req.RefreshToken, userAgent)
	if err != nil {
		return writeError(c, err)
	}

	return respondOK(c, "New access token", out)
}

func (h *AuthHandler) logout(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, APIResponse{Message: "invalid body", Error: true})
	}

	if err := h.uc.Logout(c.Request().Context(), req.RefreshToken); err != nil {
		return writeError(c, err)
	}

	return respondOK(c, "Logout successfully", nil)
}

func (h *AuthHandler) userDetails(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, APIResponse{Message: "unauthorized", Error: true})
	}

	user, err := h.uc.Me(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}

	return respondOK(c, "user details", user)
}
