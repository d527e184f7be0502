package stock

import (
	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"

	"github.com/prg-dinamics/dynedu/internal/dto"
	"github.com/prg-dinamics/dynedu/internal/presentation/http/response"
	stockrepo "github.com/prg-dinamics/dynedu/internal/repository/stock"
	service "github.com/prg-dinamics/dynedu/internal/service/inventory"
)

var httpTracer = otel.Tracer("github.com/prg-dinamics/dynedu/transport/http/stock")

// Handler exposes stock read endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a stock Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	e.GET("/inventario/stock", h.list)
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "inventario.stock.list")
	defer span.End()

	rows, err := h.svc.List(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}

	out := make([]dto.StockResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDTO(row))
	}
	return b.WithData(out).WithMeta("total", len(out)).Build()
}

func toDTO(row stockrepo.Row) dto.StockResponse {
	return dto.StockResponse{
		ID:             row.ID,
		ProductoID:     row.ProductoID,
		InternalID:     row.InternalID,
		Descripcion:    row.Descripcion,
		Editorial:      row.Editorial,
		StockFisico:    row.StockFisico,
		StockReservado: row.StockReservado,
		Disponible:     row.StockFisico - row.StockReservado,
		UpdatedAt:      row.UpdatedAt,
		UpdatedBy:      row.UpdatedBy,
	}
}
