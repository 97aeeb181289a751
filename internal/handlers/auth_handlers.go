package handlers

import (
	"github.com/labstack/echo/v4"

	"foamworks/internal/common"
	"foamworks/internal/services"
)

type AuthHandlers struct {
	authService services.AuthService
}

func NewAuthHandlers(authService services.AuthService) *AuthHandlers {
	return &AuthHandlers{authService: authService}
}

type signupRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	CompanyName string `json:"companyName"`
	Email       string `json:"email"`
}

func (h *AuthHandlers) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return common.Fail(c, common.Invalidf("invalid request body"))
	}
	session, err := h.authService.Signup(c.Request().Context(), req.Username, req.Password, req.CompanyName, req.Email)
	if err != nil {
		return common.Fail(c, err)
	}
	return common.OK(c, session)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandlers) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return common.Fail(c, common.Invalidf("invalid request body"))
	}
	session, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return common.Fail(c, err)
	}
	return common.OK(c, session)
}

type crewLoginRequest struct {
	Username string `json:"username"`
	PIN      string `json:"pin"`
}

func (h *AuthHandlers) CrewLogin(c echo.Context) error {
	var req crewLoginRequest
	if err := c.Bind(&req); err != nil {
		return common.Fail(c, common.Invalidf("invalid request body"))
	}
	session, err := h.authService.CrewLogin(c.Request().Context(), req.Username, req.PIN, c.RealIP())
	if err != nil {
		return common.Fail(c, err)
	}
	return common.OK(c, session)
}
