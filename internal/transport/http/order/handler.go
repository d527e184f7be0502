package order

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/prg-dinamics/dynedu/internal/dto"
	"github.com/prg-dinamics/dynedu/internal/entity"
	"github.com/prg-dinamics/dynedu/internal/presentation/http/response"
	service "github.com/prg-dinamics/dynedu/internal/service/order"
	"github.com/prg-dinamics/dynedu/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/prg-dinamics/dynedu/transport/http/order")

const fechaLayout = "2006-01-02"

// Handler exposes order lifecycle endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs an order Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/pedidos")
	g.GET("", h.list)
	g.GET("/:id", h.getByID)
	g.POST("", h.create)
	g.PUT("/:id", h.updateHeader)
	g.PUT("/:id/lineas", h.replaceLines)
	g.POST("/:id/recepciones", h.recordReceipts)
	g.POST("/:id/comentarios", h.comment)
	g.DELETE("/:id", h.delete)
}

type linePayload struct {
	ProductoID int64 `json:"producto_id"`
	Cantidad   int   `json:"cantidad"`
}

type createPayload struct {
	ProveedorID  int64         `json:"proveedor_id"`
	DocRef       *string       `json:"doc_ref"`
	Estado       string        `json:"estado"`
	FechaEntrega *string       `json:"fecha_entrega"`
	Lineas       []linePayload `json:"lineas"`
}

type updateHeaderPayload struct {
	ProveedorID  int64   `json:"proveedor_id"`
	DocRef       *string `json:"doc_ref"`
	Estado       string  `json:"estado"`
	FechaEntrega *string `json:"fecha_entrega"`
}

type receiptsPayload struct {
	Finalizar bool `json:"finalizar"`
	Items     []struct {
		ItemID   int64 `json:"item_id"`
		Recibida int   `json:"recibida"`
	} `json:"items"`
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "pedidos.list")
	defer span.End()

	orders, err := h.svc.List(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}

	out := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, toDTO(&orders[i]))
	}
	return b.WithData(out).WithMeta("total", len(out)).Build()
}

func (h *Handler) getByID(c echo.Context) error {
	b := response.New(c)

	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "pedidos.getByID", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	header, items, err := h.svc.Detail(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(toDetailDTO(header, items)).Build()
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	var payload createPayload
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if payload.ProveedorID == 0 {
		return b.WithError(errorbank.BadRequest("proveedor_id is required")).Build()
	}

	fecha, err := parseFecha(payload.FechaEntrega)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "pedidos.create", trace.WithAttributes(attribute.Int64("supplier.id", payload.ProveedorID)))
	defer span.End()

	order, err := h.svc.Create(ctx, service.CreateInput{
		ProveedorID:  payload.ProveedorID,
		DocRef:       payload.DocRef,
		Estado:       payload.Estado,
		FechaEntrega: fecha,
		Lineas:       toLineInputs(payload.Lineas),
	})
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(toDTO(order)).Build()
}

func (h *Handler) updateHeader(c echo.Context) error {
	b := response.New(c)

	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	var payload updateHeaderPayload
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}
	if payload.ProveedorID == 0 {
		return b.WithError(errorbank.BadRequest("proveedor_id is required")).Build()
	}

	input := service.UpdateHeaderInput{
		ProveedorID: payload.ProveedorID,
		DocRef:      payload.DocRef,
		Estado:      payload.Estado,
	}
	// An absent fecha_entrega leaves the stored date alone; an explicit empty
	// string clears it.
	if payload.FechaEntrega != nil {
		input.SetFechaEntrega = true
		if *payload.FechaEntrega != "" {
			fecha, err := parseFecha(payload.FechaEntrega)
			if err != nil {
				return b.WithError(err).Build()
			}
			input.FechaEntrega = fecha
		}
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "pedidos.updateHeader", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order, err := h.svc.UpdateHeader(ctx, id, input)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(toDTO(order)).Build()
}

func (h *Handler) replaceLines(c echo.Context) error {
	b := response.New(c)

	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	var payload struct {
		Lineas []linePayload `json:"lineas"`
	}
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "pedidos.replaceLines", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	order, err := h.svc.ReplaceLines(ctx, id, toLineInputs(payload.Lineas))
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(toDTO(order)).Build()
}

func (h *Handler) recordReceipts(c echo.Context) error {
	b := response.New(c)

	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	var payload receiptsPayload
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	receipts := make([]service.ReceiptInput, 0, len(payload.Items))
	for _, item := range payload.Items {
		receipts = append(receipts, service.ReceiptInput{ItemID: item.ItemID, Recibida: item.Recibida})
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "pedidos.recordReceipts", trace.WithAttributes(
		attribute.Int64("order.id", id),
		attribute.Bool("order.finalize", payload.Finalizar),
	))
	defer span.End()

	order, err := h.svc.RecordReceipts(ctx, id, receipts, payload.Finalizar)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(toDTO(order)).Build()
}

func (h *Handler) comment(c echo.Context) error {
	b := response.New(c)

	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	var payload struct {
		Detalle string `json:"detalle"`
	}
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "pedidos.comment", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	event, err := h.svc.Comment(ctx, id, payload.Detalle)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(toEventDTO(event)).Build()
}

func (h *Handler) delete(c echo.Context) error {
	b := response.New(c)

	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "pedidos.delete", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	if err := h.svc.Delete(ctx, id); err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusNoContent).Build()
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, errorbank.BadRequest("invalid id", errorbank.WithCause(err))
	}
	return id, nil
}

func parseFecha(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	fecha, err := time.Parse(fechaLayout, *raw)
	if err != nil {
		return nil, errorbank.BadRequest("fecha_entrega must be YYYY-MM-DD", errorbank.WithCause(err))
	}
	return &fecha, nil
}

func toLineInputs(lineas []linePayload) []service.LineInput {
	out := make([]service.LineInput, 0, len(lineas))
	for _, l := range lineas {
		out = append(out, service.LineInput{ProductoID: l.ProductoID, Cantidad: l.Cantidad})
	}
	return out
}

func toDTO(order *entity.Order) dto.OrderResponse {
	return dto.OrderResponse{
		ID:                  order.ID,
		Codigo:              order.Codigo,
		ProveedorID:         order.ProveedorID,
		ProveedorNombre:     order.ProveedorNombre,
		FechaRegistro:       order.FechaRegistro,
		FechaEntrega:        order.FechaEntrega,
		Estado:              order.Estado,
		UnidadesSolicitadas: order.UnidadesSolicitadas,
		UnidadesRecibidas:   order.UnidadesRecibidas,
		DocRef:              order.DocRef,
		CreatedAt:           order.CreatedAt,
		UpdatedAt:           order.UpdatedAt,
	}
}

func toDetailDTO(order *entity.Order, items []entity.OrderItem) dto.OrderDetailResponse {
	detail := dto.OrderDetailResponse{OrderResponse: toDTO(order)}
	detail.Items = make([]dto.OrderItemResponse, 0, len(items))
	for _, item := range items {
		faltante := item.CantidadSolicitada - item.CantidadRecibida
		if faltante < 0 {
			faltante = 0
		}
		excedente := item.CantidadRecibida - item.CantidadSolicitada
		if excedente < 0 {
			excedente = 0
		}
		detail.Items = append(detail.Items, dto.OrderItemResponse{
			ID:                  item.ID,
			ProductoID:          item.ProductoID,
			ProductoDescripcion: item.ProductoDescripcion,
			CantidadSolicitada:  item.CantidadSolicitada,
			CantidadRecibida:    item.CantidadRecibida,
			Faltante:            faltante,
			Excedente:           excedente,
		})
	}
	return detail
}

func toEventDTO(event *entity.TrackingEvent) dto.TrackingEventResponse {
	return dto.TrackingEventResponse{
		ID:         event.ID,
		PedidoID:   event.PedidoID,
		TipoEvento: event.TipoEvento,
		Detalle:    event.Detalle,
		CreatedAt:  event.CreatedAt,
	}
}
