package tracking

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
	orderrepo "github.com/prg-dinamics/dynedu/internal/repository/order"
	repo "github.com/prg-dinamics/dynedu/internal/repository/tracking"
	"github.com/prg-dinamics/dynedu/pkg/errorbank"
)

var serviceTracer = otel.Tracer("github.com/prg-dinamics/dynedu/service/tracking")

// Service exposes read access to the order tracking ledger.
type Service struct {
	tracking repo.Store
	orders   orderrepo.Store
	logger   *zap.Logger
}

// Params defines dependencies for constructing Service.
type Params struct {
	fx.In

	Tracking repo.Store
	Orders   orderrepo.Store
	Logger   *zap.Logger
}

// NewService wires a new Service instance.
func NewService(p Params) *Service {
	return &Service{
		tracking: p.Tracking,
		orders:   p.Orders,
		logger:   p.Logger,
	}
}

// Summaries lists every order joined with its latest ledger event, for the
// tracking overview board.
func (s *Service) Summaries(ctx context.Context) ([]repo.OrderSummary, error) {
	ctx, span := serviceTracer.Start(ctx, "TrackingService.Summaries")
	defer span.End()

	rows, err := s.tracking.Summaries(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to list tracking summaries", errorbank.WithCause(err))
	}
	return rows, nil
}

// Timeline returns the full ledger for one order, newest event first.
func (s *Service) Timeline(ctx context.Context, orderID int64) ([]entity.TrackingEvent, error) {
	ctx, span := serviceTracer.Start(ctx, "TrackingService.Timeline", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	if _, err := s.orders.GetByID(ctx, orderID); err != nil {
		if errors.Is(err, orderrepo.ErrNotFound) {
			return nil, errorbank.NotFound("order not found")
		}
		return nil, errorbank.Internal("failed to load order", errorbank.WithCause(err))
	}

	events, err := s.tracking.Timeline(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "repository error")
		return nil, errorbank.Internal("failed to load order timeline", errorbank.WithCause(err))
	}
	return events, nil
}
