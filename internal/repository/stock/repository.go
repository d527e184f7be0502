package stock

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
)

var repoTracer = otel.Tracer("github.com/prg-dinamics/dynedu/repository/stock")

// ErrNotFound is returned when no stock record exists for a product.
var ErrNotFound = errors.New("stock record not found")

// Accrual is one additive stock increment for a product.
type Accrual struct {
	ProductoID int64
	Cantidad   int
}

// Row is a stock record joined with its product for display.
type Row struct {
	ID             int64      `bun:"id"`
	ProductoID     int64      `bun:"producto_id"`
	StockFisico    int        `bun:"stock_fisico"`
	StockReservado int        `bun:"stock_reservado"`
	UpdatedAt      *time.Time `bun:"updated_at"`
	UpdatedBy      *string    `bun:"updated_by"`
	InternalID     string     `bun:"internal_id"`
	Descripcion    string     `bun:"descripcion"`
	Editorial      *string    `bun:"editorial"`
}

// Store exposes stock reads. Writes happen only through AccrueTx as part of
// an order finalization transaction.
type Store interface {
	List(ctx context.Context) ([]Row, error)
	GetByProduct(ctx context.Context, productID int64) (*entity.StockRecord, error)
}

// Repository is the bun-backed stock store.
type Repository struct {
	reader *bun.DB
}

// NewRepository wires a repository backed by configured database connections.
func NewRepository(conns *database.Connections) *Repository {
	return &Repository{reader: conns.Reader}
}

var _ Store = (*Repository)(nil)

// List returns every stock record joined with product info, ordered by
// product id.
func (r *Repository) List(ctx context.Context) ([]Row, error) {
	ctx, span := repoTracer.Start(ctx, "StockRepository.List")
	defer span.End()

	var rows []Row
	err := r.reader.NewSelect().
		TableExpr("stock_actual AS s").
		ColumnExpr("s.id, s.producto_id, s.stock_fisico, s.stock_reservado, s.updated_at, s.updated_by").
		ColumnExpr("p.internal_id, p.descripcion, p.editorial").
		Join("JOIN productos AS p ON p.id = s.producto_id").
		OrderExpr("s.producto_id ASC").
		Scan(ctx, &rows)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return rows, nil
}

// GetByProduct fetches the stock record for one product.
func (r *Repository) GetByProduct(ctx context.Context, productID int64) (*entity.StockRecord, error) {
	ctx, span := repoTracer.Start(ctx, "StockRepository.GetByProduct", trace.WithAttributes(attribute.Int64("product.id", productID)))
	defer span.End()

	record := new(entity.StockRecord)
	err := r.reader.NewSelect().Model(record).Where("producto_id = ?", productID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return record, nil
}

// AccrueTx adds each accrual to the product's physical stock using the
// supplied connection, creating the record on first accrual. The unique
// constraint on producto_id lets the insert-or-add run as a single upsert,
// so two finalizations racing on the same product cannot lose an increment.
//
// At-most-once invocation per order is the caller's contract: the order
// repository invokes AccrueTx inside the finalization transaction only.
func AccrueTx(ctx context.Context, db bun.IDB, accruals []Accrual, actor string, now time.Time) error {
	for _, a := range accruals {
		if a.ProductoID == 0 || a.Cantidad <= 0 {
			continue
		}
		record := &entity.StockRecord{
			ProductoID:  a.ProductoID,
			StockFisico: a.Cantidad,
			UpdatedAt:   now,
			UpdatedBy:   actor,
		}
		_, err := db.NewInsert().Model(record).
			On("CONFLICT (producto_id) DO UPDATE").
			Set("stock_fisico = stock_actual.stock_fisico + EXCLUDED.stock_fisico").
			Set("updated_at = EXCLUDED.updated_at").
			Set("updated_by = EXCLUDED.updated_by").
			Exec(ctx)
		if err != nil {
			return err
		}
	}
	return nil
}
