package supplier

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/prg-dinamics/dynedu/internal/dto"
	"github.com/prg-dinamics/dynedu/internal/entity"
	"github.com/prg-dinamics/dynedu/internal/presentation/http/response"
	service "github.com/prg-dinamics/dynedu/internal/service/catalog"
	"github.com/prg-dinamics/dynedu/pkg/errorbank"
)

var httpTracer = otel.Tracer("github.com/prg-dinamics/dynedu/transport/http/supplier")

// Handler exposes supplier catalog endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a supplier Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/proveedores")
	g.GET("", h.list)
	g.GET("/:id", h.getByID)
	g.POST("", h.create)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

type supplierPayload struct {
	RazonSocial     string  `json:"razon_social"`
	RUC             string  `json:"ruc"`
	ContactoNombre  string  `json:"contacto_nombre"`
	ContactoCelular string  `json:"contacto_celular"`
	ContactoCorreo  *string `json:"contacto_correo"`
}

func (p supplierPayload) toInput() service.SupplierInput {
	return service.SupplierInput{
		RazonSocial:     p.RazonSocial,
		RUC:             p.RUC,
		ContactoNombre:  p.ContactoNombre,
		ContactoCelular: p.ContactoCelular,
		ContactoCorreo:  p.ContactoCorreo,
	}
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "proveedores.list")
	defer span.End()

	suppliers, err := h.svc.ListSuppliers(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}

	out := make([]dto.SupplierResponse, 0, len(suppliers))
	for i := range suppliers {
		out = append(out, toDTO(&suppliers[i]))
	}
	return b.WithData(out).WithMeta("total", len(out)).Build()
}

func (h *Handler) getByID(c echo.Context) error {
	b := response.New(c)

	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "proveedores.getByID", trace.WithAttributes(attribute.Int64("supplier.id", id)))
	defer span.End()

	supplier, err := h.svc.GetSupplier(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(toDTO(supplier)).Build()
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	var payload supplierPayload
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "proveedores.create")
	defer span.End()

	supplier, err := h.svc.CreateSupplier(ctx, payload.toInput())
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(toDTO(supplier)).Build()
}

func (h *Handler) update(c echo.Context) error {
	b := response.New(c)

	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	var payload supplierPayload
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "proveedores.update", trace.WithAttributes(attribute.Int64("supplier.id", id)))
	defer span.End()

	supplier, err := h.svc.UpdateSupplier(ctx, id, payload.toInput())
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(toDTO(supplier)).Build()
}

func (h *Handler) delete(c echo.Context) error {
	b := response.New(c)

	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "proveedores.delete", trace.WithAttributes(attribute.Int64("supplier.id", id)))
	defer span.End()

	if err := h.svc.DeleteSupplier(ctx, id); err != nil {
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

func toDTO(supplier *entity.Supplier) dto.SupplierResponse {
	return dto.SupplierResponse{
		ID:              supplier.ID,
		InternalID:      supplier.InternalID,
		RazonSocial:     supplier.RazonSocial,
		RUC:             supplier.RUC,
		ContactoNombre:  supplier.ContactoNombre,
		ContactoCelular: supplier.ContactoCelular,
		ContactoCorreo:  supplier.ContactoCorreo,
		CreatedAt:       supplier.CreatedAt,
		UpdatedAt:       supplier.UpdatedAt,
	}
}
