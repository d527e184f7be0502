package order

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/prg-dinamics/dynedu/internal/database"
	"github.com/prg-dinamics/dynedu/internal/entity"
	"github.com/prg-dinamics/dynedu/internal/repository/stock"
	"github.com/prg-dinamics/dynedu/internal/repository/tracking"
	"github.com/prg-dinamics/dynedu/internal/sequence"
)

var repoTracer = otel.Tracer("github.com/prg-dinamics/dynedu/repository/order")

// CodePrefix is the sequence-code prefix for orders.
const CodePrefix = "PED"

var (
	// ErrNotFound is returned when an order is missing.
	ErrNotFound = errors.New("order not found")
	// ErrClosed is returned when a mutation reaches an order that is
	// already PARCIAL or COMPLETO.
	ErrClosed = errors.New("order is closed")
	// ErrFinalized is returned when a delete reaches an order that already
	// has a finalization event in its tracking ledger.
	ErrFinalized = errors.New("order has a finalization event")
)

// HeaderChanges carries the caller-editable header fields.
type HeaderChanges struct {
	ProveedorID     int64
	ProveedorNombre string
	DocRef          *string
	Estado          string
	// FechaEntrega is applied only when SetFechaEntrega is true; a nil
	// value then clears the date.
	FechaEntrega    *time.Time
	SetFechaEntrega bool
}

// ItemReceipt records the received quantity for one existing order line.
type ItemReceipt struct {
	ItemID   int64
	Recibida int
}

// ReceiptApplication is the full set of writes for one recordReceipts call.
// The repository applies it atomically: guard re-check, line updates, header
// totals/status, and — when finalizing — the tracking event followed by the
// stock accrual.
type ReceiptApplication struct {
	OrderID           int64
	Receipts          []ItemReceipt
	Estado            string
	UnidadesRecibidas int
	Finalize          bool
	Event             *entity.TrackingEvent
	Accruals          []stock.Accrual
	Actor             string
	Now               time.Time
}

// Store encapsulates order header and line persistence. Headers own their
// lines; the repository keeps the two consistent.
type Store interface {
	Create(ctx context.Context, header *entity.Order, items []entity.OrderItem) error
	GetByID(ctx context.Context, id int64) (*entity.Order, error)
	GetDetail(ctx context.Context, id int64) (*entity.Order, []entity.OrderItem, error)
	List(ctx context.Context) ([]entity.Order, error)
	ReplaceLines(ctx context.Context, orderID int64, items []entity.OrderItem) (*entity.Order, error)
	UpdateHeader(ctx context.Context, orderID int64, changes HeaderChanges) (prev, updated *entity.Order, err error)
	ApplyReceipts(ctx context.Context, app ReceiptApplication) (*entity.Order, error)
	Delete(ctx context.Context, orderID int64) error
}

// Repository is the bun-backed order store.
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

// Create allocates the next PED code and inserts the header together with
// its lines. unidades_solicitadas is recomputed from the batch. Everything
// runs in one transaction; the unique constraint on codigo backstops the
// code generator against concurrent creates.
func (r *Repository) Create(ctx context.Context, header *entity.Order, items []entity.OrderItem) error {
	if header == nil {
		return errors.New("nil order")
	}
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Create", trace.WithAttributes(attribute.Int("order.lines", len(items))))
	defer span.End()

	err := r.writer.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var max string
		err := tx.NewSelect().Model((*entity.Order)(nil)).
			Column("codigo").
			OrderExpr("codigo DESC").
			Limit(1).
			For("UPDATE").
			Scan(ctx, &max)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		header.Codigo = sequence.Next(CodePrefix, max)
		header.UnidadesSolicitadas = totalSolicitada(items)
		header.UnidadesRecibidas = 0
		header.CreatedAt = time.Now().UTC()

		if _, err := tx.NewInsert().Model(header).Exec(ctx); err != nil {
			return err
		}

		for i := range items {
			items[i].PedidoID = header.ID
		}
		if len(items) > 0 {
			if _, err := tx.NewInsert().Model(&items).Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// GetByID fetches an order header by primary key.
func (r *Repository) GetByID(ctx context.Context, id int64) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.GetByID", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	header := new(entity.Order)
	err := r.reader.NewSelect().Model(header).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return header, nil
}

// GetDetail fetches the header and its lines.
func (r *Repository) GetDetail(ctx context.Context, id int64) (*entity.Order, []entity.OrderItem, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.GetDetail", trace.WithAttributes(attribute.Int64("order.id", id)))
	defer span.End()

	header, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	var items []entity.OrderItem
	err = r.reader.NewSelect().Model(&items).
		Where("pedido_id = ?", id).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, nil, err
	}
	return header, items, nil
}

// List returns all orders, oldest first.
func (r *Repository) List(ctx context.Context) ([]entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.List")
	defer span.End()

	var orders []entity.Order
	err := r.reader.NewSelect().Model(&orders).Order("id ASC").Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return orders, nil
}

// ReplaceLines swaps the order's line set for the supplied batch and
// recomputes unidades_solicitadas, all in one transaction. Saving lines
// twice therefore replaces rather than appends.
func (r *Repository) ReplaceLines(ctx context.Context, orderID int64, items []entity.OrderItem) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.ReplaceLines", trace.WithAttributes(
		attribute.Int64("order.id", orderID),
		attribute.Int("order.lines", len(items)),
	))
	defer span.End()

	var header *entity.Order
	err := r.writer.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		locked, err := lockHeader(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if locked.Closed() {
			return ErrClosed
		}

		if _, err := tx.NewDelete().Model((*entity.OrderItem)(nil)).Where("pedido_id = ?", orderID).Exec(ctx); err != nil {
			return err
		}

		for i := range items {
			items[i].PedidoID = orderID
		}
		if len(items) > 0 {
			if _, err := tx.NewInsert().Model(&items).Exec(ctx); err != nil {
				return err
			}
		}

		locked.UnidadesSolicitadas = totalSolicitada(items)
		locked.UpdatedAt = time.Now().UTC()
		if _, err := tx.NewUpdate().Model(locked).
			Column("unidades_solicitadas", "updated_at").
			WherePK().
			Exec(ctx); err != nil {
			return err
		}
		header = locked
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrClosed) && !errors.Is(err, ErrNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "replace failed")
		}
		return nil, err
	}
	return header, nil
}

// UpdateHeader applies header edits while the order is still open. The guard
// and the write share one transaction, so a concurrent finalization cannot
// slip between check and update. Both the previous and the updated header
// are returned so the caller can diff them for the ledger.
func (r *Repository) UpdateHeader(ctx context.Context, orderID int64, changes HeaderChanges) (*entity.Order, *entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.UpdateHeader", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	var prev, updated *entity.Order
	err := r.writer.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		locked, err := lockHeader(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if locked.Closed() {
			return ErrClosed
		}

		before := *locked
		prev = &before

		locked.ProveedorID = changes.ProveedorID
		locked.ProveedorNombre = changes.ProveedorNombre
		locked.DocRef = changes.DocRef
		locked.Estado = changes.Estado
		columns := []string{"proveedor_id", "proveedor_nombre", "doc_ref", "estado", "updated_at"}
		if changes.SetFechaEntrega {
			locked.FechaEntrega = changes.FechaEntrega
			columns = append(columns, "fecha_entrega")
		}
		locked.UpdatedAt = time.Now().UTC()

		if _, err := tx.NewUpdate().Model(locked).Column(columns...).WherePK().Exec(ctx); err != nil {
			return err
		}
		updated = locked
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrClosed) && !errors.Is(err, ErrNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "update failed")
		}
		return nil, nil, err
	}
	return prev, updated, nil
}

// ApplyReceipts writes one recordReceipts outcome atomically. When
// finalizing, the tracking event is inserted before the stock accrual so the
// ledger always reflects what was applied, and the closed-order guard inside
// the same transaction makes the accrual at-most-once: a retried finalize
// hits ErrClosed instead of double-counting.
func (r *Repository) ApplyReceipts(ctx context.Context, app ReceiptApplication) (*entity.Order, error) {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.ApplyReceipts", trace.WithAttributes(
		attribute.Int64("order.id", app.OrderID),
		attribute.Bool("order.finalize", app.Finalize),
	))
	defer span.End()

	var header *entity.Order
	err := r.writer.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		locked, err := lockHeader(ctx, tx, app.OrderID)
		if err != nil {
			return err
		}

		// A provisional PARCIAL/COMPLETO from an earlier non-finalized
		// receipt stays open; only a recorded finalization closes the
		// order to further receipts. The row lock serializes two
		// concurrent finalize calls, so the loser sees the winner's
		// event here and cannot accrue stock a second time.
		finalized, err := tracking.HasFinalEventTx(ctx, tx, app.OrderID)
		if err != nil {
			return err
		}
		if finalized {
			return ErrClosed
		}

		for _, receipt := range app.Receipts {
			_, err := tx.NewUpdate().Model((*entity.OrderItem)(nil)).
				Set("cantidad_recibida = ?", receipt.Recibida).
				Where("id = ?", receipt.ItemID).
				Where("pedido_id = ?", app.OrderID).
				Exec(ctx)
			if err != nil {
				return err
			}
		}

		locked.UnidadesRecibidas = app.UnidadesRecibidas
		locked.Estado = app.Estado
		locked.UpdatedAt = app.Now
		columns := []string{"unidades_recibidas", "estado", "updated_at"}

		// First finalization stamps the delivery date; it is never
		// overwritten afterwards.
		if app.Finalize && locked.FechaEntrega == nil {
			now := app.Now
			locked.FechaEntrega = &now
			columns = append(columns, "fecha_entrega")
		}

		if _, err := tx.NewUpdate().Model(locked).Column(columns...).WherePK().Exec(ctx); err != nil {
			return err
		}

		if app.Finalize {
			if app.Event != nil {
				if err := tracking.AppendTx(ctx, tx, app.Event); err != nil {
					return err
				}
			}
			if err := stock.AccrueTx(ctx, tx, app.Accruals, app.Actor, app.Now); err != nil {
				return err
			}
		}

		header = locked
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrClosed) && !errors.Is(err, ErrNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "apply failed")
		}
		return nil, err
	}
	return header, nil
}

// Delete removes an open order and its lines. It refuses closed orders and,
// as a defensive double-check independent of the status, any order whose
// ledger already holds a finalization event. Lines go first to satisfy
// referential integrity.
func (r *Repository) Delete(ctx context.Context, orderID int64) error {
	ctx, span := repoTracer.Start(ctx, "OrderRepository.Delete", trace.WithAttributes(attribute.Int64("order.id", orderID)))
	defer span.End()

	err := r.writer.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		locked, err := lockHeader(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if locked.Closed() {
			return ErrClosed
		}

		finalized, err := tracking.HasFinalEventTx(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if finalized {
			return ErrFinalized
		}

		if _, err := tx.NewDelete().Model((*entity.OrderItem)(nil)).Where("pedido_id = ?", orderID).Exec(ctx); err != nil {
			return err
		}
		_, err = tx.NewDelete().Model((*entity.Order)(nil)).Where("id = ?", orderID).Exec(ctx)
		return err
	})
	if err != nil {
		if !errors.Is(err, ErrClosed) && !errors.Is(err, ErrFinalized) && !errors.Is(err, ErrNotFound) {
			span.RecordError(err)
			span.SetStatus(codes.Error, "delete failed")
		}
		return err
	}
	return nil
}

// lockHeader reads the header FOR UPDATE so guard and transition are atomic.
func lockHeader(ctx context.Context, tx bun.Tx, orderID int64) (*entity.Order, error) {
	header := new(entity.Order)
	err := tx.NewSelect().Model(header).
		Where("id = ?", orderID).
		For("UPDATE").
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return header, nil
}

func totalSolicitada(items []entity.OrderItem) int {
	total := 0
	for _, item := range items {
		total += item.CantidadSolicitada
	}
	return total
}
