package notification

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/medrec/portal/internal/platform/auth"
	"github.com/medrec/portal/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(g *echo.Group) {
	n := g.Group("/notifications", auth.RequireSession())
	n.GET("", h.List)
	n.GET("/unread_count", h.UnreadCount, auth.RequireRole(auth.RolePatient))
	n.POST("", h.Send, auth.RequireRole(auth.RoleDoctor, auth.RoleAdmin))
}

type sendRequest struct {
	PatientID uuid.UUID `json:"patient_id"`
	Message   string    `json:"message"`
}

func (h *Handler) Send(c echo.Context) error {
	var in sendRequest
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	n, err := h.svc.Send(c.Request().Context(), in.PatientID, in.Message)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotAPatient),
			errors.Is(err, ErrEmptyMessage),
			errors.Is(err, ErrMessageTooLong):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "could not send notification")
		}
	}
	return c.JSON(http.StatusCreated, n)
}

// List is the inbox view. For patients it also marks everything read, so a
// second GET reports the same items with is_read set.
func (h *Handler) List(c echo.Context) error {
	ident := auth.IdentityFromContext(c.Request().Context())
	p := pagination.FromContext(c)

	var (
		list  []*Notification
		total int
		err   error
	)
	if ident.Role == auth.RolePatient {
		list, total, err = h.svc.ViewFor(c.Request().Context(), ident.AccountID, p.Limit, p.Offset)
	} else {
		list, total, err = h.svc.ListFor(c.Request().Context(), ident, p.Limit, p.Offset)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not list notifications")
	}
	if list == nil {
		list = []*Notification{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(list, total, p.Limit, p.Offset))
}

func (h *Handler) UnreadCount(c echo.Context) error {
	ident := auth.IdentityFromContext(c.Request().Context())
	count, err := h.svc.UnreadCount(c.Request().Context(), ident.AccountID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not count notifications")
	}
	return c.JSON(http.StatusOK, map[string]int{"unread": count})
}
