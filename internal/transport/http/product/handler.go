package product

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

var httpTracer = otel.Tracer("github.com/prg-dinamics/dynedu/transport/http/product")

// Handler exposes product catalog endpoints over HTTP.
type Handler struct {
	svc *service.Service
}

// NewHandler constructs a product Handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// Register routes with provided Echo instance.
func Register(e *echo.Echo, h *Handler) {
	g := e.Group("/productos")
	g.GET("", h.list)
	g.GET("/:id", h.getByID)
	g.POST("", h.create)
	g.PUT("/:id", h.update)
	g.DELETE("/:id", h.delete)
}

type productPayload struct {
	Descripcion     string  `json:"descripcion"`
	Editorial       *string `json:"editorial"`
	NroSerie        *string `json:"nro_serie"`
	Autor           *string `json:"autor"`
	AnioPublicacion *int    `json:"anio_publicacion"`
	Stock           int     `json:"stock"`
}

func (p productPayload) toInput() service.ProductInput {
	return service.ProductInput{
		Descripcion:     p.Descripcion,
		Editorial:       p.Editorial,
		NroSerie:        p.NroSerie,
		Autor:           p.Autor,
		AnioPublicacion: p.AnioPublicacion,
		Stock:           p.Stock,
	}
}

func (h *Handler) list(c echo.Context) error {
	b := response.New(c)

	ctx, span := httpTracer.Start(c.Request().Context(), "productos.list")
	defer span.End()

	products, err := h.svc.ListProducts(ctx)
	if err != nil {
		return b.WithError(err).Build()
	}

	out := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, toDTO(&products[i]))
	}
	return b.WithData(out).WithMeta("total", len(out)).Build()
}

func (h *Handler) getByID(c echo.Context) error {
	b := response.New(c)

	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "productos.getByID", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	product, err := h.svc.GetProduct(ctx, id)
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(toDTO(product)).Build()
}

func (h *Handler) create(c echo.Context) error {
	b := response.New(c)

	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "productos.create")
	defer span.End()

	product, err := h.svc.CreateProduct(ctx, payload.toInput())
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithStatus(http.StatusCreated).WithData(toDTO(product)).Build()
}

func (h *Handler) update(c echo.Context) error {
	b := response.New(c)

	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return b.WithError(errorbank.BadRequest("invalid payload", errorbank.WithCause(err))).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "productos.update", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	product, err := h.svc.UpdateProduct(ctx, id, payload.toInput())
	if err != nil {
		return b.WithError(err).Build()
	}
	return b.WithData(toDTO(product)).Build()
}

func (h *Handler) delete(c echo.Context) error {
	b := response.New(c)

	id, err := parseID(c)
	if err != nil {
		return b.WithError(err).Build()
	}

	ctx, span := httpTracer.Start(c.Request().Context(), "productos.delete", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	if err := h.svc.DeleteProduct(ctx, id); err != nil {
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

func toDTO(product *entity.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:              product.ID,
		InternalID:      product.InternalID,
		Descripcion:     product.Descripcion,
		Editorial:       product.Editorial,
		NroSerie:        product.NroSerie,
		Autor:           product.Autor,
		AnioPublicacion: product.AnioPublicacion,
		Stock:           product.Stock,
		CreatedAt:       product.CreatedAt,
		UpdatedAt:       product.UpdatedAt,
	}
}
