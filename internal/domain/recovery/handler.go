package recovery

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/medrec/portal/internal/domain/account"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the recovery endpoints. All are unauthenticated by
// design; the caller is expected to wrap g with the rate limiter.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/reset_password_request", h.RequestLink)
	g.GET("/reset_password/:token", h.CheckLink)
	g.POST("/reset_password/:token", h.RedeemLink)
	g.POST("/send_reset_code", h.SendCode)
	g.POST("/verify_reset_code", h.VerifyCode)
	g.POST("/reset_password_with_code", h.ConsumeCode)
}

type emailRequest struct {
	Email string `json:"email"`
}

func (h *Handler) RequestLink(c echo.Context) error {
	var in emailRequest
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if _, err := h.svc.IssueLinkToken(c.Request().Context(), in.Email); err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "email address not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "could not issue reset link")
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status": "check your email for instructions to reset your password",
	})
}

// CheckLink verifies a link token without consuming it, so the reset form can
// reject dead links before asking for a new password.
func (h *Handler) CheckLink(c echo.Context) error {
	if _, err := h.svc.tokens.Redeem(c.Param("token")); err != nil {
		return tokenError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "token valid"})
}

type redeemLinkRequest struct {
	Password string `json:"password"`
}

func (h *Handler) RedeemLink(c echo.Context) error {
	var in redeemLinkRequest
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	err := h.svc.RedeemLinkToken(c.Request().Context(), c.Param("token"), in.Password)
	if err != nil {
		if errors.Is(err, ErrTokenInvalid) || errors.Is(err, ErrTokenExpired) {
			return tokenError(err)
		}
		if errors.Is(err, account.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "email address not found")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "your password has been reset"})
}

func (h *Handler) SendCode(c echo.Context) error {
	var in emailRequest
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if _, err := h.svc.IssueCode(c.Request().Context(), in.Email); err != nil {
		if errors.Is(err, account.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "email address not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "could not issue reset code")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "reset code sent"})
}

type verifyCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (h *Handler) VerifyCode(c echo.Context) error {
	var in verifyCodeRequest
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.VerifyCode(c.Request().Context(), in.Email, in.Code); err != nil {
		return codeError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "code valid"})
}

type consumeCodeRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

func (h *Handler) ConsumeCode(c echo.Context) error {
	var in consumeCodeRequest
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.ConsumeCode(c.Request().Context(), in.Email, in.Code, in.NewPassword); err != nil {
		return codeError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "your password has been reset"})
}

func tokenError(err error) error {
	if errors.Is(err, ErrTokenExpired) {
		return echo.NewHTTPError(http.StatusBadRequest, "the password reset link has expired")
	}
	return echo.NewHTTPError(http.StatusBadRequest, "the password reset link is invalid")
}

func codeError(err error) error {
	switch {
	case errors.Is(err, account.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "email address not found")
	case errors.Is(err, ErrCodeNotRequested):
		return echo.NewHTTPError(http.StatusBadRequest, "no reset code requested")
	case errors.Is(err, ErrCodeExpired):
		return echo.NewHTTPError(http.StatusBadRequest, "reset code expired")
	case errors.Is(err, ErrCodeMismatch):
		return echo.NewHTTPError(http.StatusBadRequest, "reset code mismatch")
	default:
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
}
