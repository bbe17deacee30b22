package record

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
	r := g.Group("/records", auth.RequireRole(auth.RolePatient))
	r.POST("", h.Create)
	r.GET("", h.ListOwn)

	g.GET("/patients/:id/records", h.ListForPatient,
		auth.RequireRole(auth.RoleDoctor, auth.RoleAdmin))
}

func (h *Handler) Create(c echo.Context) error {
	ident := auth.IdentityFromContext(c.Request().Context())

	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	o, err := h.svc.Create(c.Request().Context(), ident.AccountID, in)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return c.JSON(http.StatusUnprocessableEntity, map[string]interface{}{
				"error":  "validation failed",
				"fields": verr.Fields,
			})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "could not save record")
	}
	return c.JSON(http.StatusCreated, o)
}

func (h *Handler) ListOwn(c echo.Context) error {
	ident := auth.IdentityFromContext(c.Request().Context())
	return h.list(c, ident.AccountID)
}

func (h *Handler) ListForPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	return h.list(c, patientID)
}

func (h *Handler) list(c echo.Context, patientID uuid.UUID) error {
	p := pagination.FromContext(c)
	list, total, err := h.svc.ListByPatient(c.Request().Context(), patientID, p.Limit, p.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not list records")
	}
	if list == nil {
		list = []*Observation{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(list, total, p.Limit, p.Offset))
}
