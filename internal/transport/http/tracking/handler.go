package tracking

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/prg-dinamics/dynedu/internal/dto"
	"github.com/prg-dinamics/dynedu/internal/presentation/http/response"
	trackingrepo "github.com/prg-dinamics/dynedu/internal/repository/tracking"
	service "github.com/prg-dinamics/dynedu/internal/service/tracking"
	"github.com/prg-dinamics/dynedu/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/prg-dinamics/dynedu/transport/http/tracking")

// Handler exposes tracking read endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a tracking Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	e.GET("/tracking", h.summaries)
	e.GET("/pedidos/:id/tracking", h.timeline)
}

func (h *Handler) summaries(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "tracking.summaries")
	defer span.End()

	rows, err := h.svc.Summaries(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}

	out := make([]dto.OrderTrackingSummaryResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, toSummaryDTO(row))
	}
	return b.WithData(out).WithMeta("total", len(out)).Build()
}

func (h *Handler) timeline(c echo.Context) error {
	b := response.New(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return b.WithError(errorbank.BadRequest("invalid id", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "tracking.timeline", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	events, err := h.svc.Timeline(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}

	out := make([]dto.TrackingEventResponse, 0, len(events))
	for _, event := range events {
		out = append(out, dto.TrackingEventResponse{
			ID:         event.ID,
			PedidoID:   event.PedidoID,
			TipoEvento: event.TipoEvento,
			Detalle:    event.Detalle,
			CreatedAt:  event.CreatedAt,
		})
	}
	return b.WithData(out).Build()
}

func toSummaryDTO(row trackingrepo.OrderSummary) dto.OrderTrackingSummaryResponse {
	return dto.OrderTrackingSummaryResponse{
		ID:                row.ID,
		Codigo:            row.Codigo,
		ProveedorNombre:   row.ProveedorNombre,
		DocRef:            row.DocRef,
		Estado:            row.Estado,
		UltimoEvento:      row.UltimoEvento,
		UltimoEventoFecha: row.UltimoEventoFecha,
	}
}
