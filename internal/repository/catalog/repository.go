package catalog

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
	"github.com/prg-dinamics/dynedu/internal/sequence"
)

var repoTracer = otel.Tracer("github.com/prg-dinamics/dynedu/repository/catalog")

// Sequence-code prefixes for catalog entities.
const (
	SupplierPrefix = "PRV"
	ProductPrefix  = "PRO"
)

// ErrNotFound is returned when a supplier or product is missing.
var ErrNotFound = errors.New("catalog entry not found")

// Store exposes supplier and product persistence.
type Store interface {
	ListSuppliers(ctx context.Context) ([]entity.Supplier, error)
	GetSupplier(ctx context.Context, id int64) (*entity.Supplier, error)
	CreateSupplier(ctx context.Context, supplier *entity.Supplier) error
	UpdateSupplier(ctx context.Context, supplier *entity.Supplier) error
	DeleteSupplier(ctx context.Context, id int64) error

	ListProducts(ctx context.Context) ([]entity.Product, error)
	GetProduct(ctx context.Context, id int64) (*entity.Product, error)
	ProductsByIDs(ctx context.Context, ids []int64) ([]entity.Product, error)
	CreateProduct(ctx context.Context, product *entity.Product) error
	UpdateProduct(ctx context.Context, product *entity.Product) error
	DeleteProduct(ctx context.Context, id int64) error
}

// Repository is the bun-backed catalog store.
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

// ListSuppliers returns all suppliers ordered by sequence code for display
// stability.
func (r *Repository) ListSuppliers(ctx context.Context) ([]entity.Supplier, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.ListSuppliers")
	defer span.End()

	var suppliers []entity.Supplier
	err := r.reader.NewSelect().Model(&suppliers).Order("internal_id ASC").Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return suppliers, nil
}

// GetSupplier fetches one supplier by primary key.
func (r *Repository) GetSupplier(ctx context.Context, id int64) (*entity.Supplier, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.GetSupplier", trace.WithAttributes(attribute.Int64("supplier.id", id)))
	defer span.End()

	supplier := new(entity.Supplier)
	err := r.reader.NewSelect().Model(supplier).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return supplier, nil
}

// CreateSupplier allocates the next PRV code and inserts the supplier.
// Code allocation and insert share one transaction so concurrent creates
// serialize on the greatest-code row; the unique constraint on internal_id
// backstops the generator.
func (r *Repository) CreateSupplier(ctx context.Context, supplier *entity.Supplier) error {
	if supplier == nil {
		return errors.New("nil supplier")
	}
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.CreateSupplier")
	defer span.End()

	err := r.writer.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		max, err := maxCode(ctx, tx, (*entity.Supplier)(nil), "internal_id")
		if err != nil {
			return err
		}
		supplier.InternalID = sequence.Next(SupplierPrefix, max)
		supplier.CreatedAt = time.Now().UTC()
		_, err = tx.NewInsert().Model(supplier).Exec(ctx)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// UpdateSupplier rewrites the mutable supplier fields. The sequence code is
// never touched.
func (r *Repository) UpdateSupplier(ctx context.Context, supplier *entity.Supplier) error {
	if supplier == nil {
		return errors.New("nil supplier")
	}
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.UpdateSupplier", trace.WithAttributes(attribute.Int64("supplier.id", supplier.ID)))
	defer span.End()

	supplier.UpdatedAt = time.Now().UTC()
	res, err := r.writer.NewUpdate().Model(supplier).
		Column("razon_social", "ruc", "contacto_nombre", "contacto_celular", "contacto_correo", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return err
	}
	return requireAffected(res)
}

// DeleteSupplier removes a supplier row.
func (r *Repository) DeleteSupplier(ctx context.Context, id int64) error {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.DeleteSupplier", trace.WithAttributes(attribute.Int64("supplier.id", id)))
	defer span.End()

	res, err := r.writer.NewDelete().Model((*entity.Supplier)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		return err
	}
	return requireAffected(res)
}

// ListProducts returns all products ordered by sequence code.
func (r *Repository) ListProducts(ctx context.Context) ([]entity.Product, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.ListProducts")
	defer span.End()

	var products []entity.Product
	err := r.reader.NewSelect().Model(&products).Order("internal_id ASC").Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return products, nil
}

// GetProduct fetches one product by primary key.
func (r *Repository) GetProduct(ctx context.Context, id int64) (*entity.Product, error) {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.GetProduct", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	product := new(entity.Product)
	err := r.reader.NewSelect().Model(product).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "not found")
		return nil, ErrNotFound
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return product, nil
}

// ProductsByIDs fetches the products matching ids. Missing ids are simply
// absent from the result; callers decide whether that is an error.
func (r *Repository) ProductsByIDs(ctx context.Context, ids []int64) ([]entity.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.ProductsByIDs", trace.WithAttributes(attribute.Int("product.count", len(ids))))
	defer span.End()

	var products []entity.Product
	err := r.reader.NewSelect().Model(&products).Where("id IN (?)", bun.In(ids)).Scan(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select failed")
		return nil, err
	}
	return products, nil
}

// CreateProduct allocates the next PRO code and inserts the product.
func (r *Repository) CreateProduct(ctx context.Context, product *entity.Product) error {
	if product == nil {
		return errors.New("nil product")
	}
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.CreateProduct")
	defer span.End()

	err := r.writer.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		max, err := maxCode(ctx, tx, (*entity.Product)(nil), "internal_id")
		if err != nil {
			return err
		}
		product.InternalID = sequence.Next(ProductPrefix, max)
		product.CreatedAt = time.Now().UTC()
		_, err = tx.NewInsert().Model(product).Exec(ctx)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
	}
	return err
}

// UpdateProduct rewrites the mutable product fields.
func (r *Repository) UpdateProduct(ctx context.Context, product *entity.Product) error {
	if product == nil {
		return errors.New("nil product")
	}
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.UpdateProduct", trace.WithAttributes(attribute.Int64("product.id", product.ID)))
	defer span.End()

	product.UpdatedAt = time.Now().UTC()
	res, err := r.writer.NewUpdate().Model(product).
		Column("descripcion", "editorial", "nro_serie", "autor", "anio_publicacion", "stock", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "update failed")
		return err
	}
	return requireAffected(res)
}

// DeleteProduct removes a product row.
func (r *Repository) DeleteProduct(ctx context.Context, id int64) error {
	ctx, span := repoTracer.Start(ctx, "CatalogRepository.DeleteProduct", trace.WithAttributes(attribute.Int64("product.id", id)))
	defer span.End()

	res, err := r.writer.NewDelete().Model((*entity.Product)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delete failed")
		return err
	}
	return requireAffected(res)
}

// maxCode reads the greatest sequence code for a model, locking the row so
// concurrent allocations serialize.
func maxCode(ctx context.Context, tx bun.Tx, model any, column string) (string, error) {
	var max string
	err := tx.NewSelect().Model(model).
		Column(column).
		OrderExpr("? DESC", bun.Ident(column)).
		Limit(1).
		For("UPDATE").
		Scan(ctx, &max)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return max, err
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
