package order

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/prg-dinamics/dynedu/internal/config"
	"github.com/prg-dinamics/dynedu/internal/messaging"
	ordersvc "github.com/prg-dinamics/dynedu/internal/service/order"
	"github.com/prg-dinamics/dynedu/internal/worker"
)

var workerTracer = otel.Tracer("github.com/prg-dinamics/dynedu/worker/order")

// Module registers order lifecycle worker handlers.
var Module = fx.Module("worker_order",
	fx.Provide(
		fx.Annotate(
			NewLifecycleHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
	),
)

// NewLifecycleHandler sets up a worker handler that consumes order lifecycle
// events from the pedidos topic and logs them for downstream visibility.
func NewLifecycleHandler(logger *zap.Logger, cfg config.Config) worker.HandlerRegistration {
	handler := func(ctx context.Context, msg messaging.Message) error {
		ctx, span := workerTracer.Start(ctx, "worker.pedidos.process", trace.WithAttributes(
			attribute.String("messaging.topic", msg.Topic),
		))
		defer span.End()

		var envelope ordersvc.Envelope
		if err := json.Unmarshal(msg.Value, &envelope); err != nil {
			logger.Error("failed to decode order event envelope", zap.Error(err))

			span.RecordError(err)
			span.SetStatus(codes.Error, "decode error")
			return err
		}
		span.SetAttributes(attribute.String("event.kind", envelope.Kind))

		switch envelope.Kind {
		case ordersvc.EventKindCreated:
			var event ordersvc.CreatedEvent
			if err := json.Unmarshal(envelope.Data, &event); err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "decode error")
				return err
			}
			logger.Info("order created event processed",
				zap.Int64("id", event.ID),
				zap.String("codigo", event.Codigo),
				zap.String("proveedor", event.ProveedorNombre),
				zap.Int("unidades_solicitadas", event.Unidades),
			)
		case ordersvc.EventKindFinalized:
			var event ordersvc.FinalizedEvent
			if err := json.Unmarshal(envelope.Data, &event); err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "decode error")
				return err
			}
			logger.Info("order finalized event processed",
				zap.Int64("id", event.ID),
				zap.String("codigo", event.Codigo),
				zap.String("estado", event.Estado),
				zap.Int("total_faltante", event.TotalFaltante),
				zap.Int("total_excedente", event.TotalExcedente),
			)
		default:
			logger.Warn("unknown order event kind", zap.String("kind", envelope.Kind))
		}

		return nil
	}

	return worker.HandlerRegistration{
		Topic:   cfg.Messaging.Kafka.Topic,
		Handler: handler,
	}
}
