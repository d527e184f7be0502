package tracking

import (
	"context"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/prg-dinamics/dynedu/internal/database"
	"github.com/prg-dinamics/dynedu/internal/entity"
)

var repoTracer = otel.Tracer("github.com/prg-dinamics/dynedu/repository/tracking")

// OrderSummary is one row of the tracking overview: an order plus its most
// recent ledger event.
type OrderSummary struct {
	ID                int64      `bun:"id"`
	Codigo            string     `bun:"codigo"`
	ProveedorNombre   string     `bun:"proveedor_nombre"`
	DocRef            *string    `bun:"doc_ref"`
	Estado            string     `bun:"estado"`
	UltimoEvento      *string    `bun:"ultimo_evento"`
	UltimoEventoFecha *time.Time `bun:"ultimo_evento_fecha"`
}

// Store exposes the append-only tracking ledger. No update or delete
// operations exist on events.
type Store interface {
	Append(ctx context.Context, event *entity.TrackingEvent) error
	Timeline(ctx context.Context, orderID int64) ([]entity.TrackingEvent, error)
	Summaries(ctx context.Context) ([]OrderSummary, error)
	HasFinalEvent(ctx context.Context, orderID int64) (bool, error)
}

// Repository is the bun-backed tracking store.
type Repository struct {
	writer *bun.DB
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{
		writer: conns.Writer,
		reader: conns.Reader,
	}
}

var _ Store = (*Repository)(nil)

// Append inserts one event into the ledger.
func (r *Repository) Append(ctx context.Context, event *entity.TrackingEvent) error {
	ctx, span := repoTracer.Start(ctx, "TrackingRepository.Append", trace.WithAttributes(
		attribute.Int64("order.id", event.PedidoID),
		attribute.String("event.kind", event.TipoEvento),
	))
	defer span.End()

	if err := AppendTx(ctx, r.writer, event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return err
	}
	return nil
}

// AppendTx inserts one event using the supplied connection, so callers can
// append inside their own transaction.
func AppendTx(ctx context.Context, db bun.IDB, event *entity.TrackingEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	_, err := db.NewInsert().Model(event).Exec(ctx)
	return err
}

// HasFinalEventTx reports whether a FINALIZADO or FINALIZADO_CON_FALTANTES
// event already exists for the order. Used as the defensive delete guard,
// independent of the header status.
func HasFinalEventTx(ctx context.Context, db bun.IDB, orderID int64) (bool, error) {
	return db.NewSelect().Model((*entity.TrackingEvent)(nil)).
		Where("pedido_id = ?", orderID).
		Where("tipo_evento IN (?)", bun.In([]string{entity.EventoFinalizado, entity.EventoFinalizadoFaltante})).
		Exists(ctx)
}

// HasFinalEvent reports whether the order's ledger already records a
// finalization.
func (r *Repository) HasFinalEvent(ctx context.Context, orderID int64) (bool, error) {
	return HasFinalEventTx(ctx, r.reader, orderID)
}

// Timeline returns an order's full ledger, newest first for display. Audit
// replay reads it in reverse.
func (r *Repository) Timeline(ctx context.Context, orderID int64) ([]entity.TrackingEvent, error) {
	ctx, span := repoTracer.Start(ctx, "TrackingRepository.Timeline", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	var events []entity.TrackingEvent
	err := r.reader.NewSelect().Model(&events).
		Where("pedido_id = ?", orderID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return events, nil
}

// Summaries lists every order with its latest ledger event, most recently
// active orders first. Backed by the v_pedidos_tracking_resumen view.
func (r *Repository) Summaries(ctx context.Context) ([]OrderSummary, error) {
	ctx, span := repoTracer.Start(ctx, "TrackingRepository.Summaries")
	defer span.End()

	var rows []OrderSummary
	err := r.reader.NewSelect().
		TableExpr("v_pedidos_tracking_resumen").
		Column("id", "codigo", "proveedor_nombre", "doc_ref", "estado", "ultimo_evento", "ultimo_evento_fecha").
		OrderExpr("ultimo_evento_fecha DESC NULLS LAST").
		Scan(ctx, &rows)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return rows, nil
}
