package inventory

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/prg-dinamics/dynedu/internal/entity"
	repo "github.com/prg-dinamics/dynedu/internal/repository/stock"
	"github.com/prg-dinamics/dynedu/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/prg-dinamics/dynedu/service/inventory")

// Service exposes read access to accumulated stock. Stock only ever grows
// through order finalization; there is no write path here.
type Service struct {
	stock  repo.Store
	logger *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Stock  repo.Store
	Logger *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		stock:  p.Stock,
		logger: p.Logger,
	}
}

// List returns every stock record joined with its product.
func (s *Service) List(ctx context.Context) ([]repo.Row, error) {
	ctx, span := serviceTracer.Start(ctx, "InventoryService.List")
	defer span.End()

	rows, err := s.stock.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list stock", errorbank.WithCause(err))
	}
	return rows, nil
}

// GetByProduct returns the stock record for one product.
func (s *Service) GetByProduct(ctx context.Context, productID int64) (*entity.StockRecord, error) {
	ctx, span := serviceTracer.Start(ctx, "InventoryService.GetByProduct", trace.WithAttributes(attribute.Int64("product.id", productID)))
	defer span.End()

	record, err := s.stock.GetByProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, errorbank.NotFound("no stock record for product")
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load stock record", errorbank.WithCause(err))
	}
	return record, nil
}
