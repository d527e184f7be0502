package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/prg-dinamics/dynedu/internal/cache"
	"github.com/prg-dinamics/dynedu/internal/config"
	"github.com/prg-dinamics/dynedu/internal/entity"
	repo "github.com/prg-dinamics/dynedu/internal/repository/catalog"
	"github.com/prg-dinamics/dynedu/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/prg-dinamics/dynedu/service/catalog")

const productListCacheKey = "productos:list"

// Service manages the supplier and product catalogs.
type Service struct {
	catalog  repo.Store
	cache    cache.Store
	cacheTTL time.Duration
	logger   *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Catalog repo.Store
	Cache   cache.Store
	Config  config.Config
	Logger  *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		catalog:  p.Catalog,
		cache:    p.Cache,
		cacheTTL: p.Config.Cache.DefaultTTL,
		logger:   p.Logger,
	}
}

// SupplierInput carries the editable supplier fields.
type SupplierInput struct {
	RazonSocial     string
	RUC             string
	ContactoNombre  string
	ContactoCelular string
	ContactoCorreo  *string
}

// ProductInput carries the editable product fields. NroSerie is the ISBN.
type ProductInput struct {
	Descripcion     string
	Editorial       *string
	NroSerie        *string
	Autor           *string
	AnioPublicacion *int
	Stock           int
}

// ListSuppliers returns all suppliers in sequence-code order.
func (s *Service) ListSuppliers(ctx context.Context) ([]entity.Supplier, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.ListSuppliers")
	defer span.End()

	suppliers, err := s.catalog.ListSuppliers(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list suppliers", errorbank.WithCause(err))
	}
	return suppliers, nil
}

// GetSupplier fetches one supplier by id.
func (s *Service) GetSupplier(ctx context.Context, id int64) (*entity.Supplier, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.GetSupplier", trace.WithAttributes(attribute.Int64("supplier.id", id)))
	defer span.End()

	supplier, err := s.catalog.GetSupplier(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("supplier not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load supplier", errorbank.WithCause(err))
	}
	return supplier, nil
}

// CreateSupplier validates and inserts a supplier. The PRV sequence code is
// allocated by the repository.
func (s *Service) CreateSupplier(ctx context.Context, input SupplierInput) (*entity.Supplier, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.CreateSupplier")
	defer span.End()

	if err := validateSupplier(input); err != nil {
		return nil, err
	}

	supplier := &entity.Supplier{
		RazonSocial:     strings.TrimSpace(input.RazonSocial),
		RUC:             strings.TrimSpace(input.RUC),
		ContactoNombre:  strings.TrimSpace(input.ContactoNombre),
		ContactoCelular: strings.TrimSpace(input.ContactoCelular),
		ContactoCorreo:  input.ContactoCorreo,
	}
	if err := s.catalog.CreateSupplier(ctx, supplier); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to create supplier", errorbank.WithCause(err))
	}
	return supplier, nil
}

// UpdateSupplier rewrites the editable fields of one supplier.
func (s *Service) UpdateSupplier(ctx context.Context, id int64, input SupplierInput) (*entity.Supplier, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.UpdateSupplier", trace.WithAttributes(attribute.Int64("supplier.id", id)))
	defer span.End()

	if err := validateSupplier(input); err != nil {
		return nil, err
	}

	supplier, err := s.catalog.GetSupplier(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("supplier not found")
		}
		return nil, errorbank.Internal("failed to load supplier", errorbank.WithCause(err))
	}

	supplier.RazonSocial = strings.TrimSpace(input.RazonSocial)
	supplier.RUC = strings.TrimSpace(input.RUC)
	supplier.ContactoNombre = strings.TrimSpace(input.ContactoNombre)
	supplier.ContactoCelular = strings.TrimSpace(input.ContactoCelular)
	supplier.ContactoCorreo = input.ContactoCorreo

	if err := s.catalog.UpdateSupplier(ctx, supplier); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("supplier not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to update supplier", errorbank.WithCause(err))
	}
	return supplier, nil
}

// DeleteSupplier removes a supplier. Orders keep their snapshotted supplier
// name, so history is unaffected.
func (s *Service) DeleteSupplier(ctx context.Context, id int64) error {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.DeleteSupplier", trace.WithAttributes(attribute.Int64("supplier.id", id)))
	defer span.End()

	if err := s.catalog.DeleteSupplier(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return errorbank.NotFound("supplier not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("failed to delete supplier", errorbank.WithCause(err))
	}
	return nil
}

// ListProducts returns all products, consulting cache when available.
func (s *Service) ListProducts(ctx context.Context) ([]entity.Product, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.ListProducts")
	defer span.End()

	if products, err := s.productsFromCache(ctx); err == nil {
		return products, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.Warn("products cache read failed", zap.Error(err))
	}

	products, err := s.catalog.ListProducts(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list products", errorbank.WithCause(err))
	}

	if err := s.storeProductsInCache(ctx, products); err != nil {
		s.logger.Warn("products cache write failed", zap.Error(err))
	}
	return products, nil
}

// GetProduct fetches one product by id.
func (s *Service) GetProduct(ctx context.Context, id int64) (*entity.Product, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.GetProduct", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	product, err := s.catalog.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("product not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load product", errorbank.WithCause(err))
	}
	return product, nil
}

// CreateProduct validates and inserts a product. The PRO sequence code is
// allocated by the repository.
func (s *Service) CreateProduct(ctx context.Context, input ProductInput) (*entity.Product, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.CreateProduct")
	defer span.End()

	if err := validateProduct(input); err != nil {
		return nil, err
	}

	product := &entity.Product{
		Descripcion:     strings.TrimSpace(input.Descripcion),
		Editorial:       input.Editorial,
		NroSerie:        input.NroSerie,
		Autor:           input.Autor,
		AnioPublicacion: input.AnioPublicacion,
		Stock:           input.Stock,
	}
	if err := s.catalog.CreateProduct(ctx, product); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to create product", errorbank.WithCause(err))
	}

	s.invalidateProductCache(ctx)
	return product, nil
}

// UpdateProduct rewrites the editable fields of one product. Existing order
// lines keep their snapshotted description.
func (s *Service) UpdateProduct(ctx context.Context, id int64, input ProductInput) (*entity.Product, error) {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.UpdateProduct", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	if err := validateProduct(input); err != nil {
		return nil, err
	}

	product, err := s.catalog.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("product not found")
		}
		return nil, errorbank.Internal("failed to load product", errorbank.WithCause(err))
	}

	product.Descripcion = strings.TrimSpace(input.Descripcion)
	product.Editorial = input.Editorial
	product.NroSerie = input.NroSerie
	product.Autor = input.Autor
	product.AnioPublicacion = input.AnioPublicacion
	product.Stock = input.Stock

	if err := s.catalog.UpdateProduct(ctx, product); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("product not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to update product", errorbank.WithCause(err))
	}

	s.invalidateProductCache(ctx)
	return product, nil
}

// DeleteProduct removes a product.
func (s *Service) DeleteProduct(ctx context.Context, id int64) error {
	ctx, span := serviceTracer.Start(ctx, "CatalogService.DeleteProduct", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	if err := s.catalog.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return errorbank.NotFound("product not found")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return errorbank.Internal("failed to delete product", errorbank.WithCause(err))
	}

	s.invalidateProductCache(ctx)
	return nil
}

func validateSupplier(input SupplierInput) error {
	if strings.TrimSpace(input.RazonSocial) == "" {
		return errorbank.Validation("razon social is required")
	}
	if strings.TrimSpace(input.RUC) == "" {
		return errorbank.Validation("ruc is required")
	}
	return nil
}

func validateProduct(input ProductInput) error {
	if strings.TrimSpace(input.Descripcion) == "" {
		return errorbank.Validation("descripcion is required")
	}
	if input.Stock < 0 {
		return errorbank.Validation("stock cannot be negative")
	}
	return nil
}

func (s *Service) productsFromCache(ctx context.Context) ([]entity.Product, error) {
	if s.cache == nil {
		return nil, cache.ErrCacheMiss
	}
	bytes, err := s.cache.Get(ctx, productListCacheKey)
	if err != nil {
		return nil, err
	}
	var products []entity.Product
	if err := json.Unmarshal(bytes, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (s *Service) storeProductsInCache(ctx context.Context, products []entity.Product) error {
	if s.cache == nil {
		return nil
	}
	bytes, err := json.Marshal(products)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, productListCacheKey, bytes, s.cacheTTL)
}

func (s *Service) invalidateProductCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, productListCacheKey); err != nil {
		s.logger.Warn("products cache delete failed", zap.Error(err))
	}
}
