package settings

import (
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"

	"github.com/prg-dinamics/dynedu/internal/presentation/http/response"
	service "github.com/prg-dinamics/dynedu/internal/service/settings"
	"github.com/prg-dinamics/dynedu/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/prg-dinamics/dynedu/transport/http/settings")

// Handler exposes settings endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a settings Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/settings")
	g.GET("/general", h.getGeneral)
	g.PUT("/general", h.saveGeneral)
}

func (h *Handler) getGeneral(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "settings.getGeneral")
	defer span.End()

	doc, err := h.svc.General(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(doc).Build()
}

func (h *Handler) saveGeneral(c echo.Context) error {
	b := response.New(c)

	var doc service.General
	if err := c.Bind(&doc); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "settings.saveGeneral")
	defer span.End()

	saved, err := h.svc.SaveGeneral(ctx, doc)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(saved).Build()
}
